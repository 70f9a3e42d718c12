// Package store persists documents as Markdown with a revision history.
//
// Every saved body is fingerprinted with mdfp. The fingerprint doubles as an
// ETag: a save may name the fingerprint it was based on and is rejected with
// a conflict when another save happened in between. Saving an unchanged body
// does not create a revision.
package store

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// Document is the latest revision of a stored document.
type Document struct {
	ID          string    `json:"id"`
	Markdown    string    `json:"markdown"`
	Fingerprint string    `json:"fingerprint"`
	Revision    int       `json:"revision"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Revision is one saved version of a document.
type Revision struct {
	DocumentID  string    `json:"documentId"`
	Revision    int       `json:"revision"`
	Fingerprint string    `json:"fingerprint"`
	Markdown    string    `json:"markdown,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store defines the interface for persisting and retrieving documents.
type Store interface {
	// Save stores markdown as the next revision of id. A non-empty ifMatch
	// must equal the current fingerprint.
	Save(ctx context.Context, id, markdown, ifMatch string) (Document, bool, error)

	// Get returns the latest revision of id.
	Get(ctx context.Context, id string) (Document, error)

	// Revisions lists the kept revisions of id, newest first.
	Revisions(ctx context.Context, id string) ([]Revision, error)

	// Prune keeps the newest keep revisions of every document and returns
	// the number of revisions removed.
	Prune(ctx context.Context, keep int) (int64, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close closes the store and releases resources.
	Close() error
}

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// NewID returns a fresh document id.
func NewID() string { return uuid.NewString() }

// ValidateID checks that id is usable as a document id.
func ValidateID(id string) error {
	if !validID.MatchString(id) {
		return errors.ValidationError("invalid document id").
			WithSeverity(errors.SeverityError).
			WithContext("document_id", id).
			Build()
	}
	return nil
}

// Fingerprint returns the content fingerprint of a Markdown body.
func Fingerprint(markdown string) string {
	return mdfp.CalculateFingerprintFromParts("", markdown)
}

func notFound(id string) error {
	return errors.NotFoundError("document not found").WithContext("document_id", id).Build()
}

func conflict(id, want, have string) error {
	return errors.NewError(errors.CategoryConflict, "document was modified").
		WithContext("document_id", id).
		WithContext("if_match", want).
		WithContext("fingerprint", have).
		Build()
}

func storageError(err error, op string) error {
	return errors.WrapError(err, errors.CategoryStorage, "document store "+op+" failed").
		Retryable().
		WithContext("operation", op).
		Build()
}
