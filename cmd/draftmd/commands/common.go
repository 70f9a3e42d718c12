// Package commands implements the draftmd command line.
package commands

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/draftmd/internal/config"
	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/logfields"
	"git.home.luguber.info/inful/draftmd/internal/mention"
)

// stdio names standard input or output in path arguments.
const stdio = "-"

// Global carries the streams commands read from and write to.
type Global struct {
	In  io.Reader
	Out io.Writer
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"draftmd.yaml" env:"DRAFTMD_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Import    ImportCmd    `cmd:"" help:"Convert Markdown into a raw document (JSON)"`
	Export    ExportCmd    `cmd:"" help:"Convert a raw document (JSON) into Markdown"`
	Paste     PasteCmd     `cmd:"" help:"Paste text into a document, turning URLs into links"`
	HTML      HTMLCmd      `cmd:"" name:"html" help:"Render Markdown or a raw document as sanitized HTML"`
	Roundtrip RoundtripCmd `cmd:"" help:"Check that Markdown survives import and export unchanged"`
	Watch     WatchCmd     `cmd:"" help:"Re-render a Markdown file whenever it changes"`
	Serve     ServeCmd     `cmd:"" help:"Start the HTTP API"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`

	cfg *config.Config
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	setLogger(config.MonitoringLogging{}, c.Verbose)
	return nil
}

// LoadConfig loads the configuration file once. A missing file yields the
// defaults; a present but invalid file is an error. Logging is reconfigured
// from the loaded file.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	if _, err := os.Stat(c.Config); os.IsNotExist(err) {
		slog.Debug("No configuration file, using defaults", logfields.Path(c.Config))
		c.cfg = config.Default()
		return c.cfg, nil
	}
	cfg, warnings, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	setLogger(cfg.Monitoring.Logging, c.Verbose)
	for _, w := range warnings {
		slog.Warn("Configuration normalized", slog.String("detail", w))
	}
	c.cfg = cfg
	return cfg, nil
}

func setLogger(l config.MonitoringLogging, verbose bool) {
	slog.SetDefault(l.NewLogger(os.Stderr, verbose))
}

// loadMentions loads the configured mention registry, or nil when none is
// configured.
func loadMentions(cfg *config.Config) (*mention.Registry, error) {
	if cfg.Mentions.File == "" {
		return nil, nil
	}
	reg, err := mention.Load(cfg.Mentions.File)
	if err != nil {
		return nil, err
	}
	slog.Debug("Loaded mentions", logfields.Path(cfg.Mentions.File), slog.Int("mentions", reg.Len()))
	return reg, nil
}

// readInput reads a file argument; "-" reads the global input.
func readInput(g *Global, path string) ([]byte, error) {
	if path == "" || path == stdio {
		data, err := io.ReadAll(g.In)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read standard input").Build()
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read input").
			WithContext("path", path).
			Build()
	}
	return data, nil
}

// writeOutput writes data to a file, or to the global output for "" and "-".
func writeOutput(g *Global, path string, data []byte) error {
	if path == "" || path == stdio {
		if _, err := g.Out.Write(data); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").Build()
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").
			WithContext("path", path).
			Build()
	}
	return nil
}

// readDocument decodes a raw document file.
func readDocument(g *Global, path string) (*document.Document, error) {
	data, err := readInput(g, path)
	if err != nil {
		return nil, err
	}
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid raw document").
			WithContext("path", path).
			Build()
	}
	return &doc, nil
}

// encodeJSON renders v as indented JSON, or compact JSON when compact is set.
func encodeJSON(v any, compact bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if compact {
		data, err = json.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to encode JSON").Build()
	}
	return append(data, '\n'), nil
}
