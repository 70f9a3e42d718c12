package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUnquoteETag(t *testing.T) {
	for in, want := range map[string]string{
		``:           ``,
		`"abc"`:      `abc`,
		`W/"abc"`:    `abc`,
		` abc `:      `abc`,
		`"a1b2c3d4"`: `a1b2c3d4`,
	} {
		require.Equal(t, want, unquoteETag(in), in)
	}
	require.Equal(t, `"abc"`, quoteETag("abc"))
}

func TestSessionExpire(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h := NewSessionHandlers(10, nil)
	h.now = func() time.Time { return now }

	for range 3 {
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	require.Equal(t, 3, h.Len())

	require.Zero(t, h.Expire(time.Hour))
	now = now.Add(2 * time.Hour)
	require.Equal(t, 3, h.Expire(time.Hour))
	require.Zero(t, h.Len())
}

func TestMentionsWithoutRegistry(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMentionHandlers(nil).HandleSuggest(rec, httptest.NewRequest(http.MethodGet, "/api/v1/mentions?q=a", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"suggestions":[]}`, rec.Body.String())
}
