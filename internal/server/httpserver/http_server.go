// Package httpserver wires the draftmd HTTP API.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/draftmd/internal/config"
	"git.home.luguber.info/inful/draftmd/internal/events"
	derrors "git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/htmlrender"
	"git.home.luguber.info/inful/draftmd/internal/mention"
	"git.home.luguber.info/inful/draftmd/internal/metrics"
	"git.home.luguber.info/inful/draftmd/internal/paste"
	handlers "git.home.luguber.info/inful/draftmd/internal/server/handlers"
	smw "git.home.luguber.info/inful/draftmd/internal/server/middleware"
	"git.home.luguber.info/inful/draftmd/internal/store"
)

// Options carries the collaborators of the server. Nil fields disable the
// matching feature: no Store means no document routes.
type Options struct {
	Store     store.Store
	Publisher events.Publisher
	Mentions  *mention.Registry
	Recorder  metrics.Recorder
	// Registry serves /metrics when metrics are enabled. Nil uses the
	// default prometheus registry.
	Registry *prom.Registry
}

// Server manages the API endpoint.
type Server struct {
	cfg          *config.Config
	opts         Options
	httpServer   *http.Server
	errorAdapter *derrors.HTTPErrorAdapter
	started      time.Time

	// Handler modules
	editorHandlers     *handlers.EditorHandlers
	documentHandlers   *handlers.DocumentHandlers
	sessionHandlers    *handlers.SessionHandlers
	mentionHandlers    *handlers.MentionHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	// middleware chain
	mchain func(http.Handler) http.Handler
}

// New constructs a new HTTP server wiring instance.
func New(cfg *config.Config, opts Options) *Server {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	s := &Server{
		cfg:          cfg,
		opts:         opts,
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
		started:      time.Now(),
	}

	detector := paste.NewDetector(paste.Options{URLMode: cfg.Editor.PasteURLMode})
	renderer := htmlrender.New(htmlrender.Options{Mentions: opts.Mentions})

	s.editorHandlers = handlers.NewEditorHandlers(detector, renderer, opts.Recorder, cfg.Editor.MaxListDepth)
	s.sessionHandlers = handlers.NewSessionHandlers(cfg.Editor.HistoryLimit, opts.Recorder)
	s.mentionHandlers = handlers.NewMentionHandlers(opts.Mentions)
	s.monitoringHandlers = handlers.NewMonitoringHandlers(s.started, opts.Store)
	if opts.Store != nil {
		s.documentHandlers = handlers.NewDocumentHandlers(opts.Store, opts.Publisher, opts.Recorder)
	}

	s.mchain = smw.Chain(slog.Default(), s.errorAdapter, opts.Recorder, cfg.Server.MaxBodyBytes)
	return s
}

// Handler returns the routed API wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/markdown/import", s.editorHandlers.HandleImport)
	mux.HandleFunc("POST /api/v1/markdown/export", s.editorHandlers.HandleExport)
	mux.HandleFunc("POST /api/v1/paste", s.editorHandlers.HandlePaste)
	mux.HandleFunc("POST /api/v1/links/confirm", s.editorHandlers.HandleLinkConfirm)
	mux.HandleFunc("POST /api/v1/links/remove", s.editorHandlers.HandleLinkRemove)
	mux.HandleFunc("POST /api/v1/blocks/type", s.editorHandlers.HandleBlockType)
	mux.HandleFunc("POST /api/v1/blocks/depth", s.editorHandlers.HandleAdjustDepth)
	mux.HandleFunc("POST /api/v1/styles/toggle", s.editorHandlers.HandleInlineStyle)
	mux.HandleFunc("POST /api/v1/html", s.editorHandlers.HandleHTML)
	mux.HandleFunc("GET /api/v1/mentions", s.mentionHandlers.HandleSuggest)

	mux.HandleFunc("POST /api/v1/sessions", s.sessionHandlers.HandleCreate)
	mux.HandleFunc("GET /api/v1/sessions/{id}", s.sessionHandlers.HandleGet)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", s.sessionHandlers.HandleDelete)
	mux.HandleFunc("POST /api/v1/sessions/{id}/changes", s.sessionHandlers.HandleCommit)
	mux.HandleFunc("POST /api/v1/sessions/{id}/undo", s.sessionHandlers.HandleUndo)
	mux.HandleFunc("POST /api/v1/sessions/{id}/redo", s.sessionHandlers.HandleRedo)

	if s.documentHandlers != nil {
		mux.HandleFunc("POST /api/v1/documents", s.documentHandlers.HandleCreate)
		mux.HandleFunc("GET /api/v1/documents/{id}", s.documentHandlers.HandleGet)
		mux.HandleFunc("PUT /api/v1/documents/{id}", s.documentHandlers.HandlePut)
		mux.HandleFunc("GET /api/v1/documents/{id}/revisions", s.documentHandlers.HandleRevisions)
	}

	mux.HandleFunc("GET /healthz", s.monitoringHandlers.HandleHealthCheck)
	if s.cfg.Monitoring.Metrics.Enabled {
		mux.Handle("GET "+s.cfg.Monitoring.Metrics.Path, metrics.HTTPHandler(s.opts.Registry))
	}

	return s.mchain(mux)
}

// Sessions exposes the session handlers for idle expiry.
func (s *Server) Sessions() *handlers.SessionHandlers { return s.sessionHandlers }

// Start binds the configured address and serves in the background. Bind
// errors are returned before anything is served.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Server.Addr)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryNetwork, "http startup failed").
			WithContext("addr", s.cfg.Server.Addr).
			Build()
	}
	return s.StartWithListener(ln)
}

// StartWithListener serves on a pre-bound listener.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.Server.ReadTimeoutDuration(),
		ReadHeaderTimeout: s.cfg.Server.ReadTimeoutDuration(),
		WriteTimeout:      s.cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api server error", "error", err)
		}
	}()
	slog.Info("HTTP server started", slog.String("addr", ln.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}
