package store

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	c := &clock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	s, err := NewSQLiteStore(":memory:", Options{Now: c.now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	doc, created, err := s.Save(ctx, "notes", "# Hi\n", "")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 1, doc.Revision)
	require.Equal(t, Fingerprint("# Hi\n"), doc.Fingerprint)
	require.NotEmpty(t, doc.Fingerprint)

	got, err := s.Get(ctx, "notes")
	require.NoError(t, err)
	require.Equal(t, doc, got)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestSaveUnchangedIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	first, _, err := s.Save(ctx, "a", "text\n", "")
	require.NoError(t, err)
	again, created, err := s.Save(ctx, "a", "text\n", first.Fingerprint)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first, again)

	revs, err := s.Revisions(ctx, "a")
	require.NoError(t, err)
	require.Len(t, revs, 1)
}

func TestSaveRevisions(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	first, _, err := s.Save(ctx, "a", "one\n", "")
	require.NoError(t, err)
	second, created, err := s.Save(ctx, "a", "two\n", first.Fingerprint)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 2, second.Revision)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.True(t, second.UpdatedAt.After(first.UpdatedAt))

	revs, err := s.Revisions(ctx, "a")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	require.Equal(t, 2, revs[0].Revision)
	require.Equal(t, "two\n", revs[0].Markdown)
	require.Equal(t, "one\n", revs[1].Markdown)
}

func TestSaveConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	first, _, err := s.Save(ctx, "a", "one\n", "")
	require.NoError(t, err)
	_, _, err = s.Save(ctx, "a", "two\n", first.Fingerprint)
	require.NoError(t, err)

	_, _, err = s.Save(ctx, "a", "three\n", first.Fingerprint)
	require.True(t, errors.HasCategory(err, errors.CategoryConflict))

	_, _, err = s.Save(ctx, "new", "x\n", "stale")
	require.True(t, errors.HasCategory(err, errors.CategoryConflict))
}

func TestNotFoundAndInvalidID(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	_, err := s.Get(ctx, "missing")
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	_, err = s.Revisions(ctx, "missing")
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	for _, id := range []string{"", "../x", "a b", "-lead"} {
		_, _, err = s.Save(ctx, id, "x", "")
		require.True(t, errors.HasCategory(err, errors.CategoryValidation), id)
	}
	require.NoError(t, ValidateID(NewID()))
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	for _, body := range []string{"1", "2", "3", "4"} {
		_, _, err := s.Save(ctx, "a", body, "")
		require.NoError(t, err)
	}
	_, _, err := s.Save(ctx, "b", "only", "")
	require.NoError(t, err)

	removed, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	revs, err := s.Revisions(ctx, "a")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	require.Equal(t, 4, revs[0].Revision)
	require.Equal(t, 3, revs[1].Revision)

	removed, err = s.Prune(ctx, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	doc, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "4", doc.Markdown)
}

func TestFilePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.db")
	s, err := NewSQLiteStore(path, Options{BusyTimeout: time.Second})
	require.NoError(t, err)
	_, _, err = s.Save(t.Context(), "a", "kept\n", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path, Options{})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	doc, err := s.Get(t.Context(), "a")
	require.NoError(t, err)
	require.Equal(t, "kept\n", doc.Markdown)
}
