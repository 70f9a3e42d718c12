// Package history keeps the undo and redo stacks of an editing session.
//
// Documents are immutable, so a stack entry is simply the document that was
// current before a change was pushed. Runs of typed characters are coalesced
// into one entry, matching how the browser engine groups keystrokes.
package history

import (
	"sync"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// DefaultLimit is the number of undo entries kept when no limit is given.
const DefaultLimit = 1000

type entry struct {
	doc    *document.Document
	change document.ChangeType
}

// Stack is a bounded undo/redo history. It is safe for concurrent use.
type Stack struct {
	mu      sync.Mutex
	limit   int
	current entry
	undo    []entry
	redo    []entry
}

// New returns a stack whose current document is doc. A limit <= 0 uses
// DefaultLimit.
func New(doc *document.Document, limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if doc == nil {
		doc = document.New()
	}
	return &Stack{limit: limit, current: entry{doc: doc}}
}

// Push makes doc the current document and records the previous one for
// undo. Consecutive insert-characters pushes replace the current document
// without adding an entry. Pushing clears the redo stack.
func (s *Stack) Push(doc *document.Document, change document.ChangeType) error {
	if doc == nil {
		return errors.ValidationError("history: nil document").Build()
	}
	if !change.Valid() {
		return errors.ValidationError("history: unknown change type").
			WithContext("change_type", string(change)).
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := entry{doc: doc, change: change}
	s.redo = nil
	if change == document.ChangeInsertCharacters && s.current.change == change {
		s.current = next
		return nil
	}
	s.undo = append(s.undo, s.current)
	if len(s.undo) > s.limit {
		s.undo = s.undo[len(s.undo)-s.limit:]
	}
	s.current = next
	return nil
}

// Undo restores the previous document. It reports false when there is
// nothing to undo.
func (s *Stack) Undo() (*document.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return s.current.doc, false
	}
	i := len(s.undo) - 1
	prev := s.undo[i]
	s.undo = s.undo[:i]
	s.redo = append(s.redo, s.current)
	s.current = prev
	return prev.doc, true
}

// Redo re-applies the most recently undone change.
func (s *Stack) Redo() (*document.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return s.current.doc, false
	}
	i := len(s.redo) - 1
	next := s.redo[i]
	s.redo = s.redo[:i]
	s.undo = append(s.undo, s.current)
	if len(s.undo) > s.limit {
		s.undo = s.undo[len(s.undo)-s.limit:]
	}
	s.current = next
	return next.doc, true
}

// Current returns the current document and the change that produced it.
// The change is empty for the initial document.
func (s *Stack) Current() (*document.Document, document.ChangeType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.doc, s.current.change
}

func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}
