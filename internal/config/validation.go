package config

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/draftmd/internal/foundation"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

var configValidators = foundation.NewValidatorChain(
	validateServer,
	validateEditor,
	validateEvents,
	validateMonitoring,
)

// ValidateConfig checks a normalized, defaulted config.
func ValidateConfig(cfg *Config) error {
	if err := configValidators.Validate(cfg).ToError(); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "configuration validation failed").Build()
	}
	return nil
}

func validateServer(cfg *Config) foundation.ValidationResult {
	res := foundation.Valid()
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		res = res.Combine(invalid("server.addr", "required", "address is required"))
	}
	res = res.Combine(validateDuration("server.read_timeout", cfg.Server.ReadTimeout))
	res = res.Combine(validateDuration("server.write_timeout", cfg.Server.WriteTimeout))
	return res
}

func validateEditor(cfg *Config) foundation.ValidationResult {
	res := foundation.Valid()
	if cfg.Editor.MaxListDepth < 1 {
		res = res.Combine(invalid("editor.max_list_depth", "range", "must be at least 1"))
	}
	return res.Combine(validateDuration("editor.session_idle", cfg.Editor.SessionIdle))
}

func validateEvents(cfg *Config) foundation.ValidationResult {
	if !cfg.Events.Enabled {
		return foundation.Valid()
	}
	res := foundation.Valid()
	if strings.TrimSpace(cfg.Events.URL) == "" {
		res = res.Combine(invalid("events.url", "required", "url is required when events are enabled"))
	}
	if strings.ContainsAny(cfg.Events.Subject, " \t*>") {
		res = res.Combine(invalid("events.subject", "format", "subject must be a literal NATS subject"))
	}
	res = res.Combine(validateDuration("events.retry.initial", cfg.Events.Retry.Initial))
	return res.Combine(validateDuration("events.retry.max", cfg.Events.Retry.Max))
}

func validateMonitoring(cfg *Config) foundation.ValidationResult {
	if !strings.HasPrefix(cfg.Monitoring.Metrics.Path, "/") {
		return invalid("monitoring.metrics.path", "format", "path must start with /")
	}
	return foundation.Valid()
}

func validateDuration(field, raw string) foundation.ValidationResult {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return invalid(field, "duration", "must be a positive duration")
	}
	return foundation.Valid()
}

func invalid(field, code, msg string) foundation.ValidationResult {
	return foundation.Invalid(foundation.NewValidationError(field, code, msg))
}

// ReadTimeoutDuration returns the parsed read timeout.
func (s ServerConfig) ReadTimeoutDuration() time.Duration { return mustDuration(s.ReadTimeout) }

// WriteTimeoutDuration returns the parsed write timeout.
func (s ServerConfig) WriteTimeoutDuration() time.Duration { return mustDuration(s.WriteTimeout) }

// SessionIdleDuration returns the parsed session idle timeout.
func (e EditorConfig) SessionIdleDuration() time.Duration { return mustDuration(e.SessionIdle) }

// mustDuration parses a validated duration; invalid input yields zero.
func mustDuration(raw string) time.Duration {
	d, _ := time.ParseDuration(raw)
	return d
}
