package config

import (
	"git.home.luguber.info/inful/draftmd/internal/history"
	"git.home.luguber.info/inful/draftmd/internal/paste"
	"git.home.luguber.info/inful/draftmd/internal/retry"
)

// Default values.
const (
	DefaultAddr          = ":8080"
	DefaultReadTimeout   = "10s"
	DefaultWriteTimeout  = "30s"
	DefaultMaxBodyBytes  = 1 << 20
	DefaultMaxListDepth  = 4
	DefaultSessionIdle   = "1h"
	DefaultStorePath     = "draftmd.db"
	DefaultKeepRevisions = 20
	DefaultPruneSchedule = "0 3 * * *"
	DefaultBusyTimeoutMS = 5000
	DefaultEventsSubject = "draftmd.documents.saved"
	DefaultRetryInitial  = "500ms"
	DefaultRetryMax      = "5s"
	DefaultMaxRetries    = 2
	DefaultMetricsPath   = "/metrics"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config)
	Domain() string
}

var defaultAppliers = []DefaultApplier{
	serverDefaults{},
	editorDefaults{},
	storeDefaults{},
	eventsDefaults{},
	monitoringDefaults{},
}

func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	for _, a := range defaultAppliers {
		a.ApplyDefaults(cfg)
	}
}

type serverDefaults struct{}

func (serverDefaults) Domain() string { return "server" }

func (serverDefaults) ApplyDefaults(cfg *Config) {
	s := &cfg.Server
	if s.Addr == "" {
		s.Addr = DefaultAddr
	}
	if s.ReadTimeout == "" {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == "" {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

type editorDefaults struct{}

func (editorDefaults) Domain() string { return "editor" }

func (editorDefaults) ApplyDefaults(cfg *Config) {
	e := &cfg.Editor
	if e.PasteURLMode == "" {
		e.PasteURLMode = paste.URLModeMatch
	}
	if e.MaxListDepth == 0 {
		e.MaxListDepth = DefaultMaxListDepth
	}
	if e.HistoryLimit == 0 {
		e.HistoryLimit = history.DefaultLimit
	}
	if e.SessionIdle == "" {
		e.SessionIdle = DefaultSessionIdle
	}
}

type storeDefaults struct{}

func (storeDefaults) Domain() string { return "store" }

func (storeDefaults) ApplyDefaults(cfg *Config) {
	s := &cfg.Store
	if s.Path == "" {
		s.Path = DefaultStorePath
	}
	if s.KeepRevisions == 0 {
		s.KeepRevisions = DefaultKeepRevisions
	}
	if s.PruneSchedule == "" {
		s.PruneSchedule = DefaultPruneSchedule
	}
	if s.BusyTimeoutMS == 0 {
		s.BusyTimeoutMS = DefaultBusyTimeoutMS
	}
}

type eventsDefaults struct{}

func (eventsDefaults) Domain() string { return "events" }

func (eventsDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = DefaultEventsSubject
	}
	r := &cfg.Events.Retry
	if r.Backoff == "" {
		r.Backoff = retry.BackoffExponential
	}
	if r.Initial == "" {
		r.Initial = DefaultRetryInitial
	}
	if r.Max == "" {
		r.Max = DefaultRetryMax
	}
	if r.MaxRetries == 0 {
		r.MaxRetries = DefaultMaxRetries
	}
}

type monitoringDefaults struct{}

func (monitoringDefaults) Domain() string { return "monitoring" }

func (monitoringDefaults) ApplyDefaults(cfg *Config) {
	m := &cfg.Monitoring
	if m.Metrics.Path == "" {
		m.Metrics.Path = DefaultMetricsPath
	}
	if m.Logging.Level == "" {
		m.Logging.Level = LogLevelInfo
	}
	if m.Logging.Format == "" {
		m.Logging.Format = LogFormatText
	}
}
