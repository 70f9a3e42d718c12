package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/htmlrender"
	"git.home.luguber.info/inful/draftmd/internal/logfields"
	"git.home.luguber.info/inful/draftmd/internal/markdown"
	"git.home.luguber.info/inful/draftmd/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	File     string        `arg:"" help:"Markdown file to watch"`
	Format   string        `short:"f" enum:"html,markdown,json" default:"html" help:"Output format (html, markdown, json)"`
	Output   string        `short:"o" help:"Output file, rewritten on every change (default stdout)"`
	Debounce time.Duration `default:"200ms" help:"Quiet period before re-rendering"`
}

func (c *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	mentions, err := loadMentions(cfg)
	if err != nil {
		return err
	}
	render := c.renderer(htmlrender.New(htmlrender.Options{Mentions: mentions}))

	w, err := watch.New(c.File, c.Debounce, func(doc *document.Document) error {
		data, err := render(doc)
		if err != nil {
			return err
		}
		if err := writeOutput(g, c.Output, data); err != nil {
			return err
		}
		slog.Info("Rendered", logfields.Path(c.File), slog.String("format", c.Format), logfields.Blocks(doc.BlockCount()))
		return nil
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	slog.Info("Watching for changes", logfields.Path(c.File))
	return w.Run(ctx)
}

func (c *WatchCmd) renderer(r *htmlrender.Renderer) func(*document.Document) ([]byte, error) {
	switch c.Format {
	case "markdown":
		return func(doc *document.Document) ([]byte, error) { return []byte(markdown.Export(doc)), nil }
	case "json":
		return func(doc *document.Document) ([]byte, error) { return encodeJSON(doc, false) }
	default:
		return func(doc *document.Document) ([]byte, error) {
			out, err := r.Render(doc)
			return []byte(out), err
		}
	}
}
