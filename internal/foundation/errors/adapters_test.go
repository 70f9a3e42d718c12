package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCodeFor(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"validation", ValidationError("invalid selection").Build(), ExitInvalid},
		{"not found", NotFoundError("missing").Build(), ExitNotFound},
		{"conflict", NewError(CategoryConflict, "stale").Build(), ExitConflict},
		{"config", ConfigError("bad config").Build(), ExitConfig},
		{"network", NetworkError("down").Build(), ExitNetwork},
		{"filesystem", FileSystemError("missing file").Build(), ExitStorage},
		{"internal", InternalError("boom").Build(), ExitInternal},
		{"plain", stderrors.New("unknown"), ExitUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, a.ExitCodeFor(tt.err))
		})
	}
}

func TestFormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)

	require.Empty(t, quiet.FormatError(nil))
	require.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(InternalError("invariant broken").Build()))
	require.Contains(t, verbose.FormatError(InternalError("invariant broken").Build()), "invariant broken")
	require.Equal(t, "Error: bad config", quiet.FormatError(ConfigError("bad config").Build()))
	require.Equal(t, "Error: unknown", quiet.FormatError(stderrors.New("unknown")))
}

func TestHandleError(t *testing.T) {
	var logs, out bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	a.out = &out
	code := -1
	a.exit = func(c int) { code = c }

	a.HandleError(ConfigError("bad config").WithContext("file", "draftmd.yaml").Build())
	require.Equal(t, ExitConfig, code)
	require.Equal(t, "Error: bad config\n", out.String())
	require.Contains(t, logs.String(), "file=draftmd.yaml")

	logs.Reset()
	a.HandleError(NotFoundError("missing").Build())
	require.Equal(t, ExitNotFound, code)
	require.Empty(t, logs.String(), "non-fatal errors are only logged in verbose mode")
}

func TestStatusCodeFor(t *testing.T) {
	a := NewHTTPErrorAdapter(nil)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", InputError("bad").Build(), http.StatusBadRequest},
		{"config", ConfigError("bad").Build(), http.StatusBadRequest},
		{"not found", NotFoundError("missing").Build(), http.StatusNotFound},
		{"conflict", NewError(CategoryConflict, "stale").Build(), http.StatusConflict},
		{"network", NetworkError("down").Build(), http.StatusBadGateway},
		{"storage", StorageError("busy").Build(), http.StatusServiceUnavailable},
		{"internal", InternalError("boom").Build(), http.StatusInternalServerError},
		{"plain", stderrors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, a.StatusCodeFor(tt.err))
		})
	}
}

func TestWriteErrorResponse(t *testing.T) {
	a := NewHTTPErrorAdapter(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/x", nil)

	a.WriteErrorResponse(rec, req, StorageError("database is locked").WithContext("document_id", "x").Build())

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var payload HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, HTTPErrorResponse{
		Error:     "database is locked",
		Code:      "storage",
		Details:   map[string]any{"document_id": "x"},
		Retryable: true,
	}, payload)

	require.Equal(t, HTTPErrorResponse{Error: "plain"}, a.FormatErrorResponse(stderrors.New("plain")))
}
