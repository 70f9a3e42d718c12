// Package handlers implements the draftmd HTTP API.
package handlers

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/logfields"
)

// writeJSON encodes v before writing anything, so an encoding failure never
// leaves a partial response. ?pretty=1 indents the output.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if p := r.URL.Query().Get("pretty"); p == "1" || p == "true" {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("Failed to write response body", logfields.Path(r.URL.Path), logfields.Error(err))
	}
	return nil
}

// decodeJSON reads a single JSON value from the request body. Unknown
// fields are rejected. Raw documents are validated while decoding, so an
// invalid document surfaces here as a validation error.
func decodeJSON(r *http.Request, v any) error {
	return decodeBody(r, v, false)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(r *http.Request, v any) error {
	return decodeBody(r, v, true)
}

func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.InputError("request body too large").
				WithContext("limit", tooLarge.Limit).
				Build()
		}
		if stderrors.Is(err, io.EOF) {
			if allowEmpty {
				return nil
			}
			return errors.InputError("request body is empty").Build()
		}
		return errors.InputError("invalid request body").WithCause(err).Build()
	}
	return nil
}

// respond writes v or, when encoding fails, an internal error.
func respond(w http.ResponseWriter, r *http.Request, adapter *errors.HTTPErrorAdapter, status int, v any) {
	if err := writeJSON(w, r, status, v); err != nil {
		adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to write response").Build())
	}
}
