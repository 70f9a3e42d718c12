// Package responses defines the request and response bodies of the draftmd HTTP API.
package responses

import (
	"time"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/htmlrender"
	"git.home.luguber.info/inful/draftmd/internal/mention"
	"git.home.luguber.info/inful/draftmd/internal/paste"
	"git.home.luguber.info/inful/draftmd/internal/store"
)

// ImportRequest is the body of POST /api/v1/markdown/import.
type ImportRequest struct {
	Markdown string `json:"markdown"`
}

// DocumentRequest carries a raw document.
type DocumentRequest struct {
	Document *document.Document `json:"document"`
}

// DocumentResponse returns a raw document.
type DocumentResponse struct {
	Document *document.Document `json:"document"`
}

// MarkdownResponse is the body returned by POST /api/v1/markdown/export.
type MarkdownResponse struct {
	Markdown string `json:"markdown"`
}

// PasteRequest is the body of POST /api/v1/paste.
type PasteRequest struct {
	Text      string             `json:"text"`
	Document  *document.Document `json:"document"`
	Selection document.Selection `json:"selection"`
}

// PasteResponse reports whether the paste was handled. Unhandled pastes
// carry no document: the editor inserts the text itself.
type PasteResponse struct {
	Handled   bool                `json:"handled"`
	Document  *document.Document  `json:"document,omitempty"`
	Selection *document.Selection `json:"selection,omitempty"`
	Changes   []paste.Change      `json:"changes,omitempty"`
}

// LinkRequest is the body of the link confirm and remove endpoints. URL is
// ignored by remove.
type LinkRequest struct {
	Document  *document.Document `json:"document"`
	Selection document.Selection `json:"selection"`
	URL       string             `json:"url,omitempty"`
}

// LinkResponse returns the edited document and, for confirm, the key of the
// new link entity (0 when the selection was collapsed).
type LinkResponse struct {
	Document  *document.Document `json:"document"`
	EntityKey int                `json:"entityKey,omitempty"`
}

// HTMLResponse is the body returned by POST /api/v1/html.
type HTMLResponse struct {
	HTML  string            `json:"html"`
	Links []htmlrender.Link `json:"links,omitempty"`
}

// MentionsResponse is the body returned by GET /api/v1/mentions.
type MentionsResponse struct {
	Suggestions []mention.Mention `json:"suggestions"`
}

// SaveDocumentRequest stores either a raw document or Markdown. Document
// wins when both are present.
type SaveDocumentRequest struct {
	Document *document.Document `json:"document,omitempty"`
	Markdown *string            `json:"markdown,omitempty"`
}

// StoredDocumentResponse describes the latest revision of a stored document.
type StoredDocumentResponse struct {
	ID          string             `json:"id"`
	Revision    int                `json:"revision"`
	Fingerprint string             `json:"fingerprint"`
	Markdown    string             `json:"markdown"`
	Document    *document.Document `json:"document"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// RevisionsResponse lists revisions, newest first.
type RevisionsResponse struct {
	ID        string           `json:"id"`
	Revisions []store.Revision `json:"revisions"`
}

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Store     string    `json:"store,omitempty"`
}

// BlockTypeRequest is the body of POST /api/v1/blocks/type.
type BlockTypeRequest struct {
	Document  *document.Document `json:"document"`
	Selection document.Selection `json:"selection"`
	BlockType string             `json:"blockType"`
}

// InlineStyleRequest is the body of POST /api/v1/styles/toggle.
type InlineStyleRequest struct {
	Document  *document.Document `json:"document"`
	Selection document.Selection `json:"selection"`
	Style     string             `json:"style"`
}

// DepthRequest is the body of POST /api/v1/blocks/depth. Delta is +1 for
// tab and -1 for shift-tab.
type DepthRequest struct {
	Document  *document.Document `json:"document"`
	Selection document.Selection `json:"selection"`
	Delta     int                `json:"delta"`
}

// CreateSessionRequest starts an editing session. Without a document the
// session starts empty; Markdown is imported when given.
type CreateSessionRequest struct {
	Document *document.Document `json:"document,omitempty"`
	Markdown *string            `json:"markdown,omitempty"`
}

// CommitRequest records an edited document in a session history.
type CommitRequest struct {
	Document   *document.Document  `json:"document"`
	ChangeType document.ChangeType `json:"changeType"`
}

// SessionResponse describes the current state of an editing session.
type SessionResponse struct {
	ID         string              `json:"id"`
	Document   *document.Document  `json:"document"`
	ChangeType document.ChangeType `json:"changeType,omitempty"`
	CanUndo    bool                `json:"canUndo"`
	CanRedo    bool                `json:"canRedo"`
}
