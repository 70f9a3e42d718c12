package commands

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/htmlrender"
	"git.home.luguber.info/inful/draftmd/internal/logfields"
	"git.home.luguber.info/inful/draftmd/internal/markdown"
)

// ImportCmd implements the 'import' command.
type ImportCmd struct {
	Input   string `arg:"" optional:"" default:"-" help:"Markdown file (- for stdin)"`
	Output  string `short:"o" help:"Output file (default stdout)"`
	Compact bool   `help:"Write compact JSON"`
}

func (c *ImportCmd) Run(g *Global, _ *CLI) error {
	src, err := readInput(g, c.Input)
	if err != nil {
		return err
	}
	doc := markdown.Import(string(src))
	slog.Debug("Imported Markdown", logfields.Blocks(doc.BlockCount()), logfields.Entities(len(doc.EntityKeys())))
	data, err := encodeJSON(doc, c.Compact)
	if err != nil {
		return err
	}
	return writeOutput(g, c.Output, data)
}

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Input  string `arg:"" optional:"" default:"-" help:"Raw document JSON file (- for stdin)"`
	Output string `short:"o" help:"Output file (default stdout)"`
}

func (c *ExportCmd) Run(g *Global, _ *CLI) error {
	doc, err := readDocument(g, c.Input)
	if err != nil {
		return err
	}
	return writeOutput(g, c.Output, []byte(markdown.Export(doc)))
}

// HTMLCmd implements the 'html' command.
type HTMLCmd struct {
	Input  string `arg:"" optional:"" default:"-" help:"Markdown file, or raw document with --raw (- for stdin)"`
	Output string `short:"o" help:"Output file (default stdout)"`
	Raw    bool   `help:"Input is a raw document (JSON)"`
	Links  bool   `help:"Print the links and mentions of the rendered HTML as JSON instead"`
}

func (c *HTMLCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	mentions, err := loadMentions(cfg)
	if err != nil {
		return err
	}
	r := htmlrender.New(htmlrender.Options{Mentions: mentions})

	var out string
	if c.Raw {
		doc, err := readDocument(g, c.Input)
		if err != nil {
			return err
		}
		out, err = r.Render(doc)
		if err != nil {
			return err
		}
	} else {
		src, err := readInput(g, c.Input)
		if err != nil {
			return err
		}
		// Markdown goes through the document model so output matches the API.
		out, err = r.Render(markdown.Import(string(src)))
		if err != nil {
			return err
		}
	}

	if !c.Links {
		return writeOutput(g, c.Output, []byte(out))
	}
	links, err := htmlrender.ExtractLinks(out)
	if err != nil {
		return err
	}
	data, err := encodeJSON(links, false)
	if err != nil {
		return err
	}
	return writeOutput(g, c.Output, data)
}

// RoundtripCmd implements the 'roundtrip' command. It prints the normalized
// Markdown and fails when a second pass changes it or the text differs.
type RoundtripCmd struct {
	Input  string `arg:"" optional:"" default:"-" help:"Markdown file (- for stdin)"`
	Output string `short:"o" help:"Write the normalized Markdown here (default stdout)"`
	Quiet  bool   `short:"q" help:"Only report failures"`
}

func (c *RoundtripCmd) Run(g *Global, _ *CLI) error {
	src, err := readInput(g, c.Input)
	if err != nil {
		return err
	}
	doc := markdown.Import(string(src))
	first := markdown.Export(doc)
	again := markdown.Import(first)
	second := markdown.Export(again)

	if doc.PlainText() != again.PlainText() {
		return errors.ValidationError("round trip changed the document text").
			WithContext("before", doc.PlainText()).
			WithContext("after", again.PlainText()).
			Build()
	}
	if first != second {
		return errors.ValidationError("export is not stable").
			WithContext("line", firstDifferentLine(first, second)).
			Build()
	}
	slog.Debug("Round trip stable", logfields.Blocks(doc.BlockCount()))
	if c.Quiet {
		return nil
	}
	return writeOutput(g, c.Output, []byte(first))
}

// firstDifferentLine returns the 1-based number of the first differing line.
func firstDifferentLine(a, b string) int {
	al, bl := strings.Split(a, "\n"), strings.Split(b, "\n")
	for i := range min(len(al), len(bl)) {
		if al[i] != bl[i] {
			return i + 1
		}
	}
	return min(len(al), len(bl)) + 1
}
