package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/events"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/logfields"
	"git.home.luguber.info/inful/draftmd/internal/markdown"
	"git.home.luguber.info/inful/draftmd/internal/metrics"
	"git.home.luguber.info/inful/draftmd/internal/server/responses"
	"git.home.luguber.info/inful/draftmd/internal/store"
)

// publishTimeout bounds event publication after a save.
const publishTimeout = 5 * time.Second

// DocumentHandlers serve stored documents. Documents are kept as Markdown;
// responses carry both the Markdown and its imported raw form.
type DocumentHandlers struct {
	store        store.Store
	publisher    events.Publisher
	recorder     metrics.Recorder
	errorAdapter *errors.HTTPErrorAdapter
}

// NewDocumentHandlers creates the document handlers.
func NewDocumentHandlers(st store.Store, publisher events.Publisher, recorder metrics.Recorder) *DocumentHandlers {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &DocumentHandlers{
		store:        st,
		publisher:    publisher,
		recorder:     recorder,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleGet returns the latest revision with its fingerprint as ETag.
func (h *DocumentHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	stored, err := h.store.Get(r.Context(), r.PathValue("id"))
	h.recorder.IncStoreOperation("get", err == nil || errors.HasCategory(err, errors.CategoryNotFound))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	w.Header().Set("ETag", quoteETag(stored.Fingerprint))
	respond(w, r, h.errorAdapter, http.StatusOK, storedResponse(stored, markdown.Import(stored.Markdown)))
}

// HandleCreate stores a new document under a generated id.
func (h *DocumentHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, store.NewID())
}

// HandlePut stores the next revision of a document. An If-Match header
// makes the save conditional on the current fingerprint.
func (h *DocumentHandlers) HandlePut(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, r.PathValue("id"))
}

func (h *DocumentHandlers) save(w http.ResponseWriter, r *http.Request, id string) {
	var req responses.SaveDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	var body string
	switch {
	case req.Document != nil:
		body = markdown.Export(req.Document)
	case req.Markdown != nil:
		body = *req.Markdown
	default:
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.InputError("document or markdown is required").Build())
		return
	}

	stored, created, err := h.store.Save(r.Context(), id, body, unquoteETag(r.Header.Get("If-Match")))
	h.recorder.IncStoreOperation("save", err == nil || !errors.HasCategory(err, errors.CategoryStorage))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	doc := markdown.Import(stored.Markdown)
	if created {
		slog.Info("Document saved",
			logfields.DocumentID(stored.ID),
			slog.Int("revision", stored.Revision),
			logfields.Fingerprint(stored.Fingerprint))
		h.publish(r.Context(), events.NewDocumentSaved(stored, doc))
		if n, cerr := h.store.Count(r.Context()); cerr == nil {
			h.recorder.SetStoredDocuments(n)
		}
	}

	status := http.StatusOK
	if created && stored.Revision == 1 {
		status = http.StatusCreated
	}
	w.Header().Set("ETag", quoteETag(stored.Fingerprint))
	respond(w, r, h.errorAdapter, status, storedResponse(stored, doc))
}

// publish sends the saved event. Failures are logged and counted; the save
// itself already succeeded.
func (h *DocumentHandlers) publish(ctx context.Context, ev events.DocumentSaved) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := h.publisher.PublishSaved(ctx, ev)
	h.recorder.IncEventPublish(err == nil)
	if err != nil {
		slog.Warn("Failed to publish document event", logfields.DocumentID(ev.DocumentID), logfields.Error(err))
	}
}

// HandleRevisions lists kept revisions, newest first. Bodies are included
// only with ?full=true.
func (h *DocumentHandlers) HandleRevisions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	revs, err := h.store.Revisions(r.Context(), id)
	h.recorder.IncStoreOperation("revisions", err == nil || errors.HasCategory(err, errors.CategoryNotFound))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if full := r.URL.Query().Get("full"); full != "1" && full != "true" {
		for i := range revs {
			revs[i].Markdown = ""
		}
	}
	if revs == nil {
		revs = []store.Revision{}
	}
	respond(w, r, h.errorAdapter, http.StatusOK, responses.RevisionsResponse{ID: id, Revisions: revs})
}

func storedResponse(stored store.Document, doc *document.Document) responses.StoredDocumentResponse {
	return responses.StoredDocumentResponse{
		ID:          stored.ID,
		Revision:    stored.Revision,
		Fingerprint: stored.Fingerprint,
		Markdown:    stored.Markdown,
		Document:    doc,
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   stored.UpdatedAt,
	}
}

func quoteETag(fp string) string { return `"` + fp + `"` }

func unquoteETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}
