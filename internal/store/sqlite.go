package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// Options configures NewSQLiteStore.
type Options struct {
	BusyTimeout time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite document store.
// Use ":memory:" for in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string, opts Options) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStorage, "open sqlite database").
			WithContext("path", dbPath).
			Build()
	}
	// One connection: an in-memory database exists per connection, and
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	store := &SQLiteStore{db: db, now: now}
	if err := store.initialize(opts.BusyTimeout); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.WrapError(err, errors.CategoryStorage, "initialize schema").
			WithContext("path", dbPath).
			Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize(busy time.Duration) error {
	pragmas := fmt.Sprintf("PRAGMA busy_timeout = %d; PRAGMA foreign_keys = ON;", busy.Milliseconds())
	if _, err := s.db.Exec(pragmas); err != nil {
		return err
	}
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		markdown TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		revision INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS revisions (
		document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		revision INTEGER NOT NULL,
		markdown TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (document_id, revision)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save stores markdown as the next revision of id. It reports whether a new
// revision was written; saving the current body again is a no-op.
func (s *SQLiteStore) Save(ctx context.Context, id, markdown, ifMatch string) (Document, bool, error) {
	if err := ValidateID(id); err != nil {
		return Document{}, false, err
	}
	fp := Fingerprint(markdown)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Document{}, false, storageError(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := getDocument(ctx, tx, id)
	exists := err == nil
	if err != nil && !errors.HasCategory(err, errors.CategoryNotFound) {
		return Document{}, false, err
	}
	if ifMatch != "" {
		have := ""
		if exists {
			have = cur.Fingerprint
		}
		if have != ifMatch {
			return Document{}, false, conflict(id, ifMatch, have)
		}
	}
	if exists && cur.Fingerprint == fp {
		return cur, false, nil
	}

	now := s.now().UTC()
	next := Document{ID: id, Markdown: markdown, Fingerprint: fp, Revision: 1, CreatedAt: now, UpdatedAt: now}
	if exists {
		next.Revision = cur.Revision + 1
		next.CreatedAt = cur.CreatedAt
		_, err = tx.ExecContext(ctx,
			"UPDATE documents SET markdown = ?, fingerprint = ?, revision = ?, updated_at = ? WHERE id = ?",
			markdown, fp, next.Revision, now.UnixMilli(), id)
	} else {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO documents (id, markdown, fingerprint, revision, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			id, markdown, fp, next.Revision, now.UnixMilli(), now.UnixMilli())
	}
	if err != nil {
		return Document{}, false, storageError(err, "save")
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO revisions (document_id, revision, markdown, fingerprint, created_at) VALUES (?, ?, ?, ?, ?)",
		id, next.Revision, markdown, fp, now.UnixMilli())
	if err != nil {
		return Document{}, false, storageError(err, "save")
	}
	if err := tx.Commit(); err != nil {
		return Document{}, false, storageError(err, "commit")
	}
	return next, true, nil
}

// Get returns the latest revision of id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Document, error) {
	if err := ValidateID(id); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getDocument(ctx, s.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getDocument(ctx context.Context, q queryer, id string) (Document, error) {
	var d Document
	var created, updated int64
	err := q.QueryRowContext(ctx,
		"SELECT id, markdown, fingerprint, revision, created_at, updated_at FROM documents WHERE id = ?", id,
	).Scan(&d.ID, &d.Markdown, &d.Fingerprint, &d.Revision, &created, &updated)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Document{}, notFound(id)
	}
	if err != nil {
		return Document{}, storageError(err, "get")
	}
	d.CreatedAt = time.UnixMilli(created).UTC()
	d.UpdatedAt = time.UnixMilli(updated).UTC()
	return d, nil
}

// Revisions lists the kept revisions of id, newest first.
func (s *SQLiteStore) Revisions(ctx context.Context, id string) ([]Revision, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := getDocument(ctx, s.db, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT document_id, revision, markdown, fingerprint, created_at FROM revisions WHERE document_id = ? ORDER BY revision DESC",
		id,
	)
	if err != nil {
		return nil, storageError(err, "query revisions")
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var r Revision
		var created int64
		if err := rows.Scan(&r.DocumentID, &r.Revision, &r.Markdown, &r.Fingerprint, &created); err != nil {
			return nil, storageError(err, "scan revision")
		}
		r.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(err, "iterate revisions")
	}
	return out, nil
}

// Prune keeps the newest keep revisions of every document. keep < 1 is
// treated as 1: the current revision is never removed.
func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int64, error) {
	keep = max(keep, 1)
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM revisions
		WHERE revision <= (SELECT d.revision FROM documents d WHERE d.id = revisions.document_id) - ?`,
		keep,
	)
	if err != nil {
		return 0, storageError(err, "prune")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageError(err, "prune")
	}
	return n, nil
}

// Count returns the number of stored documents.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, storageError(err, "count")
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
