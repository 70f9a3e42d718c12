package commands

import (
	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/markdown"
	"git.home.luguber.info/inful/draftmd/internal/paste"
	"git.home.luguber.info/inful/draftmd/internal/server/responses"
)

// PasteCmd implements the 'paste' command.
type PasteCmd struct {
	Text     string `arg:"" help:"Pasted text"`
	Document string `short:"d" help:"Raw document JSON file to paste into" xor:"source"`
	Markdown string `short:"m" help:"Markdown file to paste into" xor:"source"`
	Block    string `help:"Block key of the caret (default: last block)"`
	Offset   int    `default:"-1" help:"UTF-16 caret offset in the block (default: end of block)"`
	Format   string `short:"f" enum:"json,markdown" default:"json" help:"Output format (json, markdown)"`
	URLMode  string `name:"url-mode" help:"Link URL source: match or pasted-text (default from config)"`
	Output   string `short:"o" help:"Output file (default stdout)"`
}

func (c *PasteCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	mode := cfg.Editor.PasteURLMode
	if c.URLMode != "" {
		if mode, err = paste.ParseURLMode(c.URLMode); err != nil {
			return err
		}
	}

	doc, err := c.load(g)
	if err != nil {
		return err
	}
	sel, err := c.caret(doc)
	if err != nil {
		return err
	}

	res, err := paste.NewDetector(paste.Options{URLMode: mode}).HandlePaste(c.Text, doc, sel)
	if err != nil {
		return err
	}
	out := responses.PasteResponse{Handled: res.Handled}
	if res.Handled {
		out.Document, out.Selection, out.Changes = res.Document, &res.Selection, res.Changes
	} else {
		// Unhandled pastes are inserted as plain text, as the editor would.
		next, after, err := doc.InsertText(sel, c.Text, nil, 0)
		if err != nil {
			return err
		}
		out.Document, out.Selection = next, &after
	}

	if c.Format == "markdown" {
		return writeOutput(g, c.Output, []byte(markdown.Export(out.Document)))
	}
	data, err := encodeJSON(out, false)
	if err != nil {
		return err
	}
	return writeOutput(g, c.Output, data)
}

func (c *PasteCmd) load(g *Global) (*document.Document, error) {
	switch {
	case c.Document != "":
		return readDocument(g, c.Document)
	case c.Markdown != "":
		src, err := readInput(g, c.Markdown)
		if err != nil {
			return nil, err
		}
		return markdown.Import(string(src)), nil
	default:
		return document.New(), nil
	}
}

func (c *PasteCmd) caret(doc *document.Document) (document.Selection, error) {
	if c.Block == "" {
		sel := doc.End()
		if c.Offset >= 0 {
			sel.AnchorOffset, sel.FocusOffset = c.Offset, c.Offset
		}
		return sel, nil
	}
	b, ok := doc.Block(c.Block)
	if !ok {
		return document.Selection{}, errors.ValidationError("unknown block").
			WithContext("block_key", c.Block).
			Build()
	}
	offset := c.Offset
	if offset < 0 {
		offset = b.Len()
	}
	return document.Caret(c.Block, offset), nil
}
