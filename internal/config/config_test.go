package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/paste"
	"git.home.luguber.info/inful/draftmd/internal/retry"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, CurrentVersion, cfg.Version)
	require.Equal(t, DefaultAddr, cfg.Server.Addr)
	require.Equal(t, 10*time.Second, cfg.Server.ReadTimeoutDuration())
	require.Equal(t, 30*time.Second, cfg.Server.WriteTimeoutDuration())
	require.EqualValues(t, DefaultMaxBodyBytes, cfg.Server.MaxBodyBytes)
	require.Equal(t, paste.URLModeMatch, cfg.Editor.PasteURLMode)
	require.Equal(t, 4, cfg.Editor.MaxListDepth)
	require.Equal(t, 1000, cfg.Editor.HistoryLimit)
	require.Equal(t, time.Hour, cfg.Editor.SessionIdleDuration())
	require.Equal(t, DefaultStorePath, cfg.Store.Path)
	require.Equal(t, DefaultEventsSubject, cfg.Events.Subject)
	require.Equal(t, LogLevelInfo, cfg.Monitoring.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Monitoring.Logging.Format)
	require.NoError(t, ValidateConfig(cfg))
}

func TestParseExpandsEnv(t *testing.T) {
	t.Setenv("DRAFTMD_TEST_ADDR", "127.0.0.1:9999")
	cfg, warnings, err := Parse([]byte(`
version: "1"
server:
  addr: ${DRAFTMD_TEST_ADDR}
editor:
  paste_url_mode: pasted-text
  max_list_depth: 6
store:
  keep_revisions: 3
`))
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	require.Equal(t, paste.URLModePastedText, cfg.Editor.PasteURLMode)
	require.Equal(t, 6, cfg.Editor.MaxListDepth)
	require.Equal(t, 3, cfg.Store.KeepRevisions)
}

func TestParseNormalizes(t *testing.T) {
	cfg, warnings, err := Parse([]byte(`
editor:
  paste_url_mode: whole-text
monitoring:
  logging:
    level: WARNING
    format: Json
`))
	require.NoError(t, err)
	require.Equal(t, paste.URLModeMatch, cfg.Editor.PasteURLMode)
	require.Equal(t, LogLevelWarn, cfg.Monitoring.Logging.Level)
	require.Equal(t, LogFormatJSON, cfg.Monitoring.Logging.Format)
	require.Len(t, warnings, 3)
	require.Contains(t, warnings[0], "unknown editor.paste_url_mode")
}

func TestEventsRetry(t *testing.T) {
	cfg, warnings, err := Parse([]byte(`
events:
  enabled: true
  url: nats://localhost:4222
  retry:
    backoff: Fixed
    initial: 250ms
    max_retries: 4
`))
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Equal(t, retry.Policy{Mode: retry.BackoffFixed, Initial: 250 * time.Millisecond, Max: 5 * time.Second, MaxRetries: 4}, cfg.Events.Retry.Policy())

	def := Default().Events.Retry.Policy()
	require.Equal(t, retry.BackoffExponential, def.Mode)
	require.Equal(t, 500*time.Millisecond, def.Initial)
	require.Equal(t, DefaultMaxRetries, def.MaxRetries)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad version", `version: "2.0"`},
		{"bad yaml", "server: ["},
		{"bad timeout", "server:\n  read_timeout: soon\n"},
		{"events without url", "events:\n  enabled: true\n"},
		{"wildcard subject", "events:\n  enabled: true\n  url: nats://localhost:4222\n  subject: docs.>\n"},
		{"bad retry delay", "events:\n  enabled: true\n  url: nats://localhost:4222\n  retry:\n    initial: later\n"},
		{"metrics path", "monitoring:\n  metrics:\n    path: metrics\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "draftmd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  path: /tmp/x.db\n"), 0o600))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/x.db", cfg.Store.Path)

	_, _, err = Load(filepath.Join(dir, "missing.yaml"))
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestInitWritesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draftmd.yaml")
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./mentions.yaml", cfg.Mentions.File)
}

func TestLoadEnvFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, os.WriteFile(".env", []byte("DRAFTMD_ENV_A=from-env\nDRAFTMD_ENV_B=from-env\n"), 0o600))
	require.NoError(t, os.WriteFile(".env.local", []byte("DRAFTMD_ENV_B=from-local\n"), 0o600))
	t.Setenv("DRAFTMD_ENV_A", "")
	t.Setenv("DRAFTMD_ENV_B", "")
	require.NoError(t, os.Unsetenv("DRAFTMD_ENV_A"))
	require.NoError(t, os.Unsetenv("DRAFTMD_ENV_B"))

	loaded := loadEnvFiles()
	require.Equal(t, []string{".env.local", ".env"}, loaded)
	require.Equal(t, "from-env", os.Getenv("DRAFTMD_ENV_A"))
	require.Equal(t, "from-local", os.Getenv("DRAFTMD_ENV_B"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := MonitoringLogging{Level: LogLevelWarn, Format: LogFormatJSON}.NewLogger(&buf, false)
	l.Info("hidden")
	l.Warn("shown")
	require.False(t, strings.Contains(buf.String(), "hidden"))
	require.True(t, strings.Contains(buf.String(), `"msg":"shown"`))

	buf.Reset()
	l = MonitoringLogging{Level: LogLevelError}.NewLogger(&buf, true)
	require.True(t, l.Enabled(t.Context(), slog.LevelDebug))
}
