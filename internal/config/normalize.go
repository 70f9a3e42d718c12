package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/draftmd/internal/paste"
	"git.home.luguber.info/inful/draftmd/internal/retry"
)

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated and bounded fields before
// defaults are applied. Unknown enum values fall back to their default with
// a warning.
func NormalizeConfig(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	if c == nil {
		return res
	}
	normalizeEditor(&c.Editor, res)
	normalizeLogging(&c.Monitoring.Logging, res)
	normalizeStore(&c.Store, res)
	normalizeRetry(&c.Events.Retry, res)
	return res
}

func normalizeEditor(e *EditorConfig, res *NormalizationResult) {
	if raw := string(e.PasteURLMode); strings.TrimSpace(raw) != "" {
		mode, err := paste.ParseURLMode(raw)
		if err != nil {
			res.Warnings = append(res.Warnings, warnUnknown("editor.paste_url_mode", raw, string(paste.URLModeMatch)))
			mode = paste.URLModeMatch
		} else if string(mode) != raw {
			res.Warnings = append(res.Warnings, warnChanged("editor.paste_url_mode", raw, mode))
		}
		e.PasteURLMode = mode
	}
	if e.MaxListDepth < 0 {
		e.MaxListDepth = 0
	}
	if e.HistoryLimit < 0 {
		e.HistoryLimit = 0
	}
}

func normalizeLogging(l *MonitoringLogging, res *NormalizationResult) {
	if raw := string(l.Level); strings.TrimSpace(raw) != "" {
		if !logLevelNormalizer.Known(raw) {
			res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.level", raw, string(LogLevelInfo)))
		} else if lvl := NormalizeLogLevel(raw); string(lvl) != raw {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.level", raw, lvl))
		}
		l.Level = NormalizeLogLevel(raw)
	}
	if raw := string(l.Format); strings.TrimSpace(raw) != "" {
		if !logFormatNormalizer.Known(raw) {
			res.Warnings = append(res.Warnings, warnUnknown("monitoring.logging.format", raw, string(LogFormatText)))
		} else if f := NormalizeLogFormat(raw); string(f) != raw {
			res.Warnings = append(res.Warnings, warnChanged("monitoring.logging.format", raw, f))
		}
		l.Format = NormalizeLogFormat(raw)
	}
}

func normalizeStore(s *StoreConfig, _ *NormalizationResult) {
	s.Path = strings.TrimSpace(s.Path)
	s.PruneSchedule = strings.TrimSpace(s.PruneSchedule)
	if s.KeepRevisions < 0 {
		s.KeepRevisions = 0
	}
	if s.BusyTimeoutMS < 0 {
		s.BusyTimeoutMS = 0
	}
}

func normalizeRetry(r *EventsRetry, res *NormalizationResult) {
	if raw := string(r.Backoff); strings.TrimSpace(raw) != "" {
		mode, err := retry.ParseBackoffMode(raw)
		if err != nil {
			res.Warnings = append(res.Warnings, warnUnknown("events.retry.backoff", raw, string(retry.BackoffExponential)))
			mode = retry.BackoffExponential
		} else if string(mode) != raw {
			res.Warnings = append(res.Warnings, warnChanged("events.retry.backoff", raw, mode))
		}
		r.Backoff = mode
	}
	if r.MaxRetries < 0 {
		r.MaxRetries = 0
	}
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}

func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
