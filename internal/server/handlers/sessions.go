package handlers

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/history"
	"git.home.luguber.info/inful/draftmd/internal/markdown"
	"git.home.luguber.info/inful/draftmd/internal/metrics"
	"git.home.luguber.info/inful/draftmd/internal/server/responses"
	"github.com/google/uuid"
)

type session struct {
	stack    *history.Stack
	lastUsed time.Time
}

// SessionHandlers keep per-session undo histories in memory. Sessions are
// lost on restart; stored documents live in the document store.
type SessionHandlers struct {
	mu       sync.Mutex
	sessions map[string]*session
	limit    int
	now      func() time.Time

	recorder     metrics.Recorder
	errorAdapter *errors.HTTPErrorAdapter
}

// NewSessionHandlers creates the session handlers. limit bounds each undo
// history.
func NewSessionHandlers(limit int, recorder metrics.Recorder) *SessionHandlers {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &SessionHandlers{
		sessions:     map[string]*session{},
		limit:        limit,
		now:          time.Now,
		recorder:     recorder,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleCreate starts a session. The body is optional.
func (h *SessionHandlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req responses.CreateSessionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	doc := req.Document
	if doc == nil && req.Markdown != nil {
		doc = markdown.Import(*req.Markdown)
	}

	id := uuid.NewString()
	s := &session{stack: history.New(doc, h.limit), lastUsed: h.now()}
	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()

	respond(w, r, h.errorAdapter, http.StatusCreated, sessionResponse(id, s.stack))
}

// HandleGet returns the current document of a session.
func (h *SessionHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, s, err := h.lookup(r)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(w, r, h.errorAdapter, http.StatusOK, sessionResponse(id, s.stack))
}

// HandleCommit pushes an edited document onto the session history.
func (h *SessionHandlers) HandleCommit(w http.ResponseWriter, r *http.Request) {
	id, s, err := h.lookup(r)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	var req responses.CommitRequest
	if err := decodeDocumentRequest(r, &req, &req.Document); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if err := s.stack.Push(req.Document, req.ChangeType); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(w, r, h.errorAdapter, http.StatusOK, sessionResponse(id, s.stack))
}

// HandleUndo steps the session history back. Undo with an empty history
// returns the unchanged session.
func (h *SessionHandlers) HandleUndo(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, metrics.OpUndo, (*history.Stack).Undo)
}

// HandleRedo steps the session history forward.
func (h *SessionHandlers) HandleRedo(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, metrics.OpRedo, (*history.Stack).Redo)
}

func (h *SessionHandlers) step(w http.ResponseWriter, r *http.Request, op metrics.Operation, move func(*history.Stack) (*document.Document, bool)) {
	var err error
	defer metrics.Observe(h.recorder, op, time.Now(), &err)

	id, s, err := h.lookup(r)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	move(s.stack)
	respond(w, r, h.errorAdapter, http.StatusOK, sessionResponse(id, s.stack))
}

// HandleDelete ends a session.
func (h *SessionHandlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.mu.Lock()
	_, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if !ok {
		h.errorAdapter.WriteErrorResponse(w, r, sessionNotFound(id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Expire drops sessions unused for longer than idle and returns how many
// were removed.
func (h *SessionHandlers) Expire(idle time.Duration) int {
	cutoff := h.now().Add(-idle)
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, s := range h.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(h.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of open sessions.
func (h *SessionHandlers) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *SessionHandlers) lookup(r *http.Request) (string, *session, error) {
	id := r.PathValue("id")
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[id]
	if !ok {
		return id, nil, sessionNotFound(id)
	}
	s.lastUsed = h.now()
	return id, s, nil
}

func sessionNotFound(id string) error {
	return errors.NotFoundError("session not found").WithContext("session_id", id).Build()
}

func sessionResponse(id string, stack *history.Stack) responses.SessionResponse {
	doc, change := stack.Current()
	return responses.SessionResponse{
		ID:         id,
		Document:   doc,
		ChangeType: change,
		CanUndo:    stack.CanUndo(),
		CanRedo:    stack.CanRedo(),
	}
}
