package metrics

import (
	"time"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// Operation names a core operation for metric labels.
type Operation string

const (
	OpImport      Operation = "import"
	OpExport      Operation = "export"
	OpPaste       Operation = "paste"
	OpHTML        Operation = "html"
	OpLinkConfirm Operation = "link_confirm"
	OpLinkRemove  Operation = "link_remove"
	OpRoundTrip   Operation = "roundtrip"
	OpBlockType   Operation = "block_type"
	OpInlineStyle Operation = "inline_style"
	OpAdjustDepth Operation = "adjust_depth"
	OpUndo        Operation = "undo"
	OpRedo        Operation = "redo"
)

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultInvalid ResultLabel = "invalid"
	ResultError   ResultLabel = "error"
)

// Recorder defines observability hooks. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveOperationDuration(op Operation, d time.Duration)
	IncOperationResult(op Operation, result ResultLabel)
	IncPasteOutcome(handled bool, links int)
	ObserveHTTPRequest(route string, status int, d time.Duration)
	IncStoreOperation(op string, success bool)
	IncEventPublish(success bool)
	SetStoredDocuments(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveOperationDuration(Operation, time.Duration) {}
func (NoopRecorder) IncOperationResult(Operation, ResultLabel)         {}
func (NoopRecorder) IncPasteOutcome(bool, int)                         {}
func (NoopRecorder) ObserveHTTPRequest(string, int, time.Duration)     {}
func (NoopRecorder) IncStoreOperation(string, bool)                    {}
func (NoopRecorder) IncEventPublish(bool)                              {}
func (NoopRecorder) SetStoredDocuments(int)                            {}

// Observe records the duration and result of op. It is meant to be
// deferred:
//
//	defer metrics.Observe(rec, metrics.OpImport, time.Now(), &err)
func Observe(r Recorder, op Operation, start time.Time, errp *error) {
	r.ObserveOperationDuration(op, time.Since(start))
	r.IncOperationResult(op, ResultOf(errp))
}

// ResultOf maps an error pointer to a result label. Validation failures
// count as invalid input rather than errors.
func ResultOf(errp *error) ResultLabel {
	if errp == nil || *errp == nil {
		return ResultSuccess
	}
	if errors.HasCategory(*errp, errors.CategoryValidation) {
		return ResultInvalid
	}
	return ResultError
}
