package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/draftmd/internal/config"
	"git.home.luguber.info/inful/draftmd/internal/events"
	"git.home.luguber.info/inful/draftmd/internal/logfields"
	"git.home.luguber.info/inful/draftmd/internal/metrics"
	"git.home.luguber.info/inful/draftmd/internal/scheduler"
	"git.home.luguber.info/inful/draftmd/internal/server/httpserver"
	"git.home.luguber.info/inful/draftmd/internal/store"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string `help:"Listen address (overrides server.addr)"`
	NoPrune bool   `name:"no-prune" help:"Disable scheduled revision pruning"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunServe(ctx, cfg, !s.NoPrune)
}

// RunServe starts the API and its maintenance jobs and blocks until ctx is
// done.
func RunServe(ctx context.Context, cfg *config.Config, prune bool) error {
	st, err := store.NewSQLiteStore(cfg.Store.Path, store.Options{
		BusyTimeout: time.Duration(cfg.Store.BusyTimeoutMS) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Warn("Failed to close store", logfields.Error(err))
		}
	}()

	mentions, err := loadMentions(cfg)
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		nats, err := events.NewNATSPublisher(cfg.Events.URL, cfg.Events.Subject)
		if err != nil {
			return err
		}
		publisher = events.NewRetryingPublisher(nats, cfg.Events.Retry.Policy())
		slog.Info("Publishing document events", logfields.Subject(cfg.Events.Subject))
	}
	defer func() { _ = publisher.Close() }()

	registry := metrics.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)
	if n, err := st.Count(ctx); err == nil {
		recorder.SetStoredDocuments(n)
	}

	srv := httpserver.New(cfg, httpserver.Options{
		Store:     st,
		Publisher: publisher,
		Mentions:  mentions,
		Recorder:  recorder,
		Registry:  registry,
	})

	sched, err := scheduler.New()
	if err != nil {
		return err
	}
	if prune {
		if _, err := sched.SchedulePrune(cfg.Store.PruneSchedule, st, cfg.Store.KeepRevisions); err != nil {
			return err
		}
	}
	idle := cfg.Editor.SessionIdleDuration()
	if _, err := sched.ScheduleSessionExpiry(max(idle/4, time.Minute), idle, srv.Sessions()); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			slog.Warn("Failed to stop scheduler", logfields.Error(err))
		}
	}()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping server...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	return srv.Stop(stopCtx)
}
