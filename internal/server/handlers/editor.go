package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/htmlrender"
	"git.home.luguber.info/inful/draftmd/internal/logfields"
	"git.home.luguber.info/inful/draftmd/internal/markdown"
	"git.home.luguber.info/inful/draftmd/internal/metrics"
	"git.home.luguber.info/inful/draftmd/internal/paste"
	"git.home.luguber.info/inful/draftmd/internal/server/responses"
)

// EditorHandlers expose the stateless document operations used by the
// browser editor: conversion, paste handling, link editing and display.
type EditorHandlers struct {
	detector     *paste.Detector
	renderer     *htmlrender.Renderer
	recorder     metrics.Recorder
	maxDepth     int
	errorAdapter *errors.HTTPErrorAdapter
}

// NewEditorHandlers creates the editor handlers. maxDepth bounds list
// nesting for depth adjustments.
func NewEditorHandlers(detector *paste.Detector, renderer *htmlrender.Renderer, recorder metrics.Recorder, maxDepth int) *EditorHandlers {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &EditorHandlers{
		detector:     detector,
		renderer:     renderer,
		recorder:     recorder,
		maxDepth:     maxDepth,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleImport converts Markdown into a raw document. Import never fails
// on content, only on a malformed body.
func (h *EditorHandlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	var err error
	defer metrics.Observe(h.recorder, metrics.OpImport, time.Now(), &err)

	var req responses.ImportRequest
	if err = decodeJSON(r, &req); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	doc := markdown.Import(req.Markdown)
	respond(w, r, h.errorAdapter, http.StatusOK, responses.DocumentResponse{Document: doc})
}

// HandleExport converts a raw document into Markdown.
func (h *EditorHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	var err error
	defer metrics.Observe(h.recorder, metrics.OpExport, time.Now(), &err)

	var req responses.DocumentRequest
	if err = decodeDocumentRequest(r, &req, &req.Document); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(w, r, h.errorAdapter, http.StatusOK, responses.MarkdownResponse{Markdown: markdown.Export(req.Document)})
}

// HandlePaste runs the paste link detector.
func (h *EditorHandlers) HandlePaste(w http.ResponseWriter, r *http.Request) {
	var err error
	defer metrics.Observe(h.recorder, metrics.OpPaste, time.Now(), &err)

	var req responses.PasteRequest
	if err = decodeDocumentRequest(r, &req, &req.Document); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	res, err := h.detector.HandlePaste(req.Text, req.Document, req.Selection)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	links := 0
	for _, c := range res.Changes {
		if c.Type == document.ChangeInsertLink {
			links++
		}
	}
	h.recorder.IncPasteOutcome(res.Handled, links)

	out := responses.PasteResponse{Handled: res.Handled}
	if res.Handled {
		sel := res.Selection
		out.Document = res.Document
		out.Selection = &sel
		out.Changes = res.Changes
		slog.Debug("Paste handled", logfields.Segments(len(res.Changes)), slog.Int("links", links))
	}
	respond(w, r, h.errorAdapter, http.StatusOK, out)
}

// HandleLinkConfirm applies a link over the selection.
func (h *EditorHandlers) HandleLinkConfirm(w http.ResponseWriter, r *http.Request) {
	var err error
	defer metrics.Observe(h.recorder, metrics.OpLinkConfirm, time.Now(), &err)

	var req responses.LinkRequest
	if err = decodeDocumentRequest(r, &req, &req.Document); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	doc, key, err := req.Document.ApplyLink(req.Selection, req.URL)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(w, r, h.errorAdapter, http.StatusOK, responses.LinkResponse{Document: doc, EntityKey: int(key)})
}

// HandleLinkRemove clears links inside the selection.
func (h *EditorHandlers) HandleLinkRemove(w http.ResponseWriter, r *http.Request) {
	var err error
	defer metrics.Observe(h.recorder, metrics.OpLinkRemove, time.Now(), &err)

	var req responses.LinkRequest
	if err = decodeDocumentRequest(r, &req, &req.Document); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	doc, err := req.Document.RemoveLinks(req.Selection)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(w, r, h.errorAdapter, http.StatusOK, responses.LinkResponse{Document: doc})
}

// HandleHTML renders a raw document as sanitized HTML.
func (h *EditorHandlers) HandleHTML(w http.ResponseWriter, r *http.Request) {
	var err error
	defer metrics.Observe(h.recorder, metrics.OpHTML, time.Now(), &err)

	var req responses.DocumentRequest
	if err = decodeDocumentRequest(r, &req, &req.Document); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	html, err := h.renderer.Render(req.Document)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	links, err := htmlrender.ExtractLinks(html)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(w, r, h.errorAdapter, http.StatusOK, responses.HTMLResponse{HTML: html, Links: links})
}

// HandleBlockType sets or toggles the type of the selected blocks.
func (h *EditorHandlers) HandleBlockType(w http.ResponseWriter, r *http.Request) {
	var err error
	defer metrics.Observe(h.recorder, metrics.OpBlockType, time.Now(), &err)

	var req responses.BlockTypeRequest
	if err = decodeDocumentRequest(r, &req, &req.Document); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	t, err := document.ParseBlockType(req.BlockType)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	doc, err := req.Document.SetBlockType(req.Selection, t)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(w, r, h.errorAdapter, http.StatusOK, responses.DocumentResponse{Document: doc})
}

// HandleInlineStyle toggles an inline style over the selection.
func (h *EditorHandlers) HandleInlineStyle(w http.ResponseWriter, r *http.Request) {
	var err error
	defer metrics.Observe(h.recorder, metrics.OpInlineStyle, time.Now(), &err)

	var req responses.InlineStyleRequest
	if err = decodeDocumentRequest(r, &req, &req.Document); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	style, err := document.ParseStyle(req.Style)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	doc, err := req.Document.ToggleInlineStyle(req.Selection, style)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(w, r, h.errorAdapter, http.StatusOK, responses.DocumentResponse{Document: doc})
}

// HandleAdjustDepth indents or outdents the selected list items.
func (h *EditorHandlers) HandleAdjustDepth(w http.ResponseWriter, r *http.Request) {
	var err error
	defer metrics.Observe(h.recorder, metrics.OpAdjustDepth, time.Now(), &err)

	var req responses.DepthRequest
	if err = decodeDocumentRequest(r, &req, &req.Document); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if req.Delta == 0 {
		err = errors.InputError("delta must be non-zero").Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	doc, err := req.Document.AdjustDepth(req.Selection, req.Delta, h.maxDepth)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	respond(w, r, h.errorAdapter, http.StatusOK, responses.DocumentResponse{Document: doc})
}

// decodeDocumentRequest decodes v and requires *doc to be set afterwards.
func decodeDocumentRequest(r *http.Request, v any, doc **document.Document) error {
	if err := decodeJSON(r, v); err != nil {
		return err
	}
	if *doc == nil {
		return errors.InputError("document is required").Build()
	}
	return nil
}
