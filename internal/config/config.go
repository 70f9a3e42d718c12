// Package config loads the draftmd configuration file.
//
// The file is YAML with ${VAR} expansion. Variables from .env and .env.local
// are loaded first without overriding the process environment. Loading runs
// normalization (enum case folding, bounds), then defaults, then validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/paste"
	"git.home.luguber.info/inful/draftmd/internal/retry"
)

// CurrentVersion is the only supported configuration file version.
const CurrentVersion = "1"

// Config is the root configuration.
type Config struct {
	Version    string           `yaml:"version"`
	Server     ServerConfig     `yaml:"server"`
	Editor     EditorConfig     `yaml:"editor"`
	Mentions   MentionsConfig   `yaml:"mentions"`
	Store      StoreConfig      `yaml:"store"`
	Events     EventsConfig     `yaml:"events"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`  // Go duration
	WriteTimeout string `yaml:"write_timeout"` // Go duration
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// EditorConfig holds editing behavior shared by the CLI and the server.
type EditorConfig struct {
	PasteURLMode paste.URLMode `yaml:"paste_url_mode"` // match|pasted-text
	MaxListDepth int           `yaml:"max_list_depth"`
	HistoryLimit int           `yaml:"history_limit"`
	SessionIdle  string        `yaml:"session_idle"` // Go duration; idle server sessions are dropped
}

// MentionsConfig points at the mention registry file.
type MentionsConfig struct {
	File string `yaml:"file"`
}

// StoreConfig configures document persistence.
type StoreConfig struct {
	Path          string `yaml:"path"`            // SQLite database file
	KeepRevisions int    `yaml:"keep_revisions"`  // revisions kept per document by pruning
	PruneSchedule string `yaml:"prune_schedule"`  // cron expression
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"` // sqlite busy_timeout
}

// EventsConfig configures NATS publication of document events.
type EventsConfig struct {
	Enabled bool        `yaml:"enabled"`
	URL     string      `yaml:"url"`
	Subject string      `yaml:"subject"`
	Retry   EventsRetry `yaml:"retry"`
}

// EventsRetry configures retries of failed publishes.
type EventsRetry struct {
	Backoff    retry.BackoffMode `yaml:"backoff"`     // fixed|linear|exponential
	Initial    string            `yaml:"initial"`     // Go duration
	Max        string            `yaml:"max"`         // Go duration
	MaxRetries int               `yaml:"max_retries"` // zero means the default
}

// Policy returns the retry policy for a validated config.
func (r EventsRetry) Policy() retry.Policy {
	return retry.NewPolicy(r.Backoff, mustDuration(r.Initial), mustDuration(r.Max), r.MaxRetries)
}

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads, normalizes, defaults and validates a configuration file.
// Normalization warnings are returned alongside the config.
func Load(configPath string) (*Config, []string, error) {
	loadEnvFiles()

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}
	return Parse(data)
}

// Parse decodes configuration YAML after expanding environment variables.
func Parse(data []byte) (*Config, []string, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Build()
	}
	if cfg.Version != "" && cfg.Version != CurrentVersion {
		return nil, nil, errors.ConfigError(fmt.Sprintf("unsupported configuration version: %s (expected %s)", cfg.Version, CurrentVersion)).Build()
	}

	res := NormalizeConfig(&cfg)
	applyDefaults(&cfg)
	if err := ValidateConfig(&cfg); err != nil {
		return nil, res.Warnings, err
	}
	return &cfg, res.Warnings, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Default()
	example.Mentions.File = "./mentions.yaml"
	example.Events.URL = "${NATS_URL}"

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
