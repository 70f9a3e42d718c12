// Package scheduler runs the periodic maintenance jobs of the server.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/logfields"
)

// Pruner removes old document revisions.
type Pruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

// Expirer drops idle editing sessions.
type Expirer interface {
	Expire(idle time.Duration) int
}

// Scheduler wraps gocron scheduler for managing periodic tasks.
type Scheduler struct {
	scheduler gocron.Scheduler
	timeout   time.Duration
}

// New creates a new scheduler instance.
func New(opts ...gocron.SchedulerOption) (*Scheduler, error) {
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to create scheduler").Build()
	}
	return &Scheduler{scheduler: s, timeout: time.Minute}, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler", slog.Int("jobs", len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// SchedulePrune runs pruning on a five-field cron expression and returns the
// job ID.
func (s *Scheduler) SchedulePrune(cron string, p Pruner, keep int) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.CronJob(cron, false),
		gocron.NewTask(s.prune, p, keep),
		gocron.WithName("prune-revisions"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryConfig, "invalid prune schedule").
			WithContext("schedule", cron).
			Build()
	}
	return job.ID().String(), nil
}

// ScheduleSessionExpiry drops sessions idle for longer than idle, checking
// every interval.
func (s *Scheduler) ScheduleSessionExpiry(interval, idle time.Duration, e Expirer) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if n := e.Expire(idle); n > 0 {
				slog.Info("Expired idle sessions", slog.Int("sessions", n))
			}
		}),
		gocron.WithName("expire-sessions"),
	)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "failed to schedule session expiry").Build()
	}
	return job.ID().String(), nil
}

// prune is called by gocron to execute a scheduled prune.
func (s *Scheduler) prune(p Pruner, keep int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := p.Prune(ctx, keep)
	if err != nil {
		slog.Error("Scheduled prune failed", logfields.Error(err))
		return
	}
	slog.Info("Pruned document revisions",
		slog.Int64("removed", n),
		slog.Int("keep", keep),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}
