package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/server/responses"
	"git.home.luguber.info/inful/draftmd/internal/store"
	"git.home.luguber.info/inful/draftmd/internal/version"
)

// MonitoringHandlers contains monitoring-related HTTP handlers.
type MonitoringHandlers struct {
	started      time.Time
	store        store.Store
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance. st may
// be nil when no store is configured.
func NewMonitoringHandlers(started time.Time, st store.Store) *MonitoringHandlers {
	return &MonitoringHandlers{
		started:      started,
		store:        st,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealthCheck reports liveness and, when a store is configured,
// whether it answers queries.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Current(),
		Uptime:    time.Since(h.started).Seconds(),
	}
	status := http.StatusOK
	if h.store != nil {
		if _, err := h.store.Count(r.Context()); err != nil {
			health.Status = "degraded"
			health.Store = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			health.Store = "ok"
		}
	}
	respond(w, r, h.errorAdapter, status, health)
}
