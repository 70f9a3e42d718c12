package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	var ok error
	Observe(pr, OpImport, time.Now().Add(-150*time.Millisecond), &ok)
	bad := error(errors.ValidationError("unknown block").Build())
	Observe(pr, OpPaste, time.Now(), &bad)
	pr.IncPasteOutcome(true, 2)
	pr.IncPasteOutcome(false, 0)
	pr.ObserveHTTPRequest("/api/v1/paste", 200, 5*time.Millisecond)
	pr.IncStoreOperation("save", true)
	pr.IncEventPublish(false)
	pr.SetStoredDocuments(4)

	require.InDelta(t, 1, testutil.ToFloat64(pr.operationResults.WithLabelValues("import", "success")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.operationResults.WithLabelValues("paste", "invalid")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(pr.pastedLinks), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.pastes.WithLabelValues("false")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.httpRequests.WithLabelValues("/api/v1/paste", "200")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.eventPublishes.WithLabelValues("failed")), 0)
	require.InDelta(t, 4, testutil.ToFloat64(pr.storedDocuments), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestNilPrometheusRecorder(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveOperationDuration(OpHTML, time.Second)
	pr.IncOperationResult(OpHTML, ResultError)
	pr.SetStoredDocuments(1)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncStoreOperation("load", false)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `draftmd_store_operations_total{operation="load",result="failed"} 1`))
}

func TestNewRegistryIncludesRuntimeCollectors(t *testing.T) {
	reg := NewRegistry()
	NewPrometheusRecorder(reg).SetStoredDocuments(2)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["go_goroutines"])
	require.True(t, names["draftmd_stored_documents"])
}
