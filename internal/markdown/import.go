package markdown

import (
	"bufio"
	"bytes"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/entity"
	gmast "github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	xhtml "golang.org/x/net/html"
)

// Import parses Markdown into a document. It never fails: anything the parser
// does not model degrades to literal text, and in the worst case the whole
// input becomes one plain paragraph.
func Import(src string) (doc *document.Document) {
	src = strings.ToValidUTF8(src, "\uFFFD")
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Markdown import failed, falling back to plain text", slog.Any("panic", r))
			doc = plainDocument(src)
		}
	}()

	source := []byte(src)
	root := newParser().Parser().Parse(text.NewReader(source))

	im := &importer{source: source, b: document.NewBuilder(), listDepth: -1}
	im.blocks(root, container{listDepth: -1})

	built, err := im.b.Build()
	if err != nil {
		slog.Warn("Markdown import produced an invalid document, falling back to plain text", slog.String("error", err.Error()))
		return plainDocument(src)
	}
	return built
}

func plainDocument(src string) *document.Document {
	b := document.NewBuilder()
	if src != "" {
		b.AppendBlock(document.Block{Type: document.Unstyled, Text: src})
	}
	doc, err := b.Build()
	if err != nil {
		return document.New()
	}
	return doc
}

// container describes where a block sits: inside a quote, inside a list item,
// or at the top level. The innermost container decides the block type.
type container struct {
	quote     bool
	listType  document.BlockType
	listDepth int
}

func (c container) paragraphType() (document.BlockType, int) {
	switch {
	case c.quote:
		return document.Blockquote, 0
	case c.listType != "":
		return c.listType, c.listDepth
	default:
		return document.Unstyled, 0
	}
}

type importer struct {
	source []byte
	b      *document.Builder
	// listDepth is the depth of the last appended block when it is a list
	// item, and -1 otherwise.
	listDepth int
}

// append adds a block the way Export would read it back: empty paragraphs
// are dropped and a list item sits at most one level below the item before
// it.
func (im *importer) append(b document.Block) {
	if (b.Type == "" || b.Type == document.Unstyled) && b.Text == "" {
		return
	}
	if !b.Type.IsListItem() {
		im.listDepth = -1
		im.b.AppendBlock(b)
		return
	}
	b.Depth = min(b.Depth, im.listDepth+1)
	im.listDepth = b.Depth
	im.b.AppendBlock(b)
}

func (im *importer) blocks(parent gmast.Node, c container) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		im.block(n, c)
	}
}

func (im *importer) block(n gmast.Node, c container) {
	switch node := n.(type) {
	case *gmast.Heading:
		im.appendInline(node, document.Heading(node.Level), 0)
	case *gmast.Paragraph, *gmast.TextBlock:
		t, depth := c.paragraphType()
		im.appendInline(node, t, depth)
	case *gmast.Blockquote:
		inner := container{quote: true, listDepth: c.listDepth}
		if node.ChildCount() == 0 {
			im.append(document.Block{Type: document.Blockquote})
			return
		}
		im.blocks(node, inner)
	case *gmast.List:
		inner := container{listType: document.UnorderedListItem, listDepth: c.listDepth + 1}
		if node.IsOrdered() {
			inner.listType = document.OrderedListItem
		}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			// An item that opens with a nested list has no text of its own.
			if _, nested := item.FirstChild().(*gmast.List); item.ChildCount() == 0 || nested {
				im.append(document.Block{Type: inner.listType, Depth: inner.listDepth})
			}
			im.blocks(item, inner)
		}
	case *gmast.FencedCodeBlock:
		var data map[string]string
		if lang := string(node.Language(im.source)); lang != "" {
			data = map[string]string{document.DataLanguage: lang}
		}
		im.append(document.Block{Type: document.CodeBlock, Text: im.lines(node, nil), Data: data})
	case *gmast.CodeBlock:
		im.append(document.Block{Type: document.CodeBlock, Text: im.lines(node, nil)})
	case *gmast.HTMLBlock:
		var closure *text.Segment
		if node.HasClosure() {
			closure = &node.ClosureLine
		}
		t, depth := c.paragraphType()
		im.append(document.Block{Type: t, Depth: depth, Text: im.lines(node, closure)})
	case *gmast.ThematicBreak:
		t, depth := c.paragraphType()
		im.append(document.Block{Type: t, Depth: depth, Text: "---"})
	default:
		im.blocks(n, c)
	}
}

// lines joins the raw lines of a leaf block without the final newline.
func (im *importer) lines(n gmast.Node, closure *text.Segment) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(im.source))
	}
	if closure != nil {
		buf.Write(closure.Value(im.source))
	}
	return strings.TrimSuffix(strings.ReplaceAll(buf.String(), "\r\n", "\n"), "\n")
}

func (im *importer) appendInline(n gmast.Node, t document.BlockType, depth int) {
	in := &inlineBuilder{im: im, depth: map[document.Style]int{}, start: map[document.Style]int{}}
	in.children(n)
	txt := in.text.String()
	if t.HeadingLevel() > 0 {
		// Headings are one line in Markdown.
		txt = strings.ReplaceAll(txt, "\n", " ")
	}
	im.append(document.Block{
		Type:         t,
		Depth:        depth,
		Text:         txt,
		StyleRanges:  in.styles,
		EntityRanges: in.entities,
	})
}

// inlineBuilder flattens inline nodes into text plus ranges. Nested emphasis
// of the same kind produces a single range.
type inlineBuilder struct {
	im       *importer
	text     strings.Builder
	n        int
	depth    map[document.Style]int
	start    map[document.Style]int
	styles   []document.StyleRange
	entities []document.EntityRange
	inEntity bool
}

func (in *inlineBuilder) write(s string) {
	in.text.WriteString(s)
	in.n += document.Len16(s)
}

func (in *inlineBuilder) open(s document.Style) {
	if in.depth[s] == 0 {
		in.start[s] = in.n
	}
	in.depth[s]++
}

func (in *inlineBuilder) close(s document.Style) {
	in.depth[s]--
	if in.depth[s] == 0 && in.n > in.start[s] {
		in.styles = append(in.styles, document.StyleRange{Start: in.start[s], End: in.n, Style: s})
	}
}

func (in *inlineBuilder) children(n gmast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		in.inline(c)
	}
}

func (in *inlineBuilder) inline(n gmast.Node) {
	source := in.im.source
	switch node := n.(type) {
	case *gmast.Text:
		value := node.Segment.Value(source)
		if node.IsRaw() {
			in.write(string(value))
		} else {
			in.write(unescape(value))
		}
		if node.SoftLineBreak() || node.HardLineBreak() {
			in.write("\n")
		}
	case *gmast.String:
		if node.IsRaw() || node.IsCode() {
			in.write(string(node.Value))
		} else {
			in.write(unescape(node.Value))
		}
	case *gmast.CodeSpan:
		in.open(document.Code)
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *gmast.Text:
				value := string(t.Segment.Value(source))
				if strings.HasSuffix(value, "\n") {
					value = strings.TrimSuffix(value, "\n") + " "
				}
				in.write(value)
			case *gmast.String:
				in.write(string(t.Value))
			}
		}
		in.close(document.Code)
	case *gmast.Emphasis:
		style := document.Italic
		if node.Level >= 2 {
			style = document.Bold
		}
		in.open(style)
		in.children(node)
		in.close(style)
	case *extast.Strikethrough:
		in.open(document.Strikethrough)
		in.children(node)
		in.close(document.Strikethrough)
	case *gmast.Link:
		in.link(unescape(node.Destination), func() { in.children(node) })
	case *gmast.AutoLink:
		url := string(node.URL(source))
		label := string(node.Label(source))
		in.link(url, func() { in.write(label) })
	case *gmast.RawHTML:
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			in.write(string(seg.Value(source)))
		}
	default:
		in.children(n)
	}
}

// link writes the label and attaches a mention or link entity over it. Links
// nested in an entity label contribute only their text.
func (in *inlineBuilder) link(dest string, label func()) {
	if in.inEntity {
		label()
		return
	}
	in.inEntity = true
	start := in.n
	label()
	in.inEntity = false
	if in.n == start {
		return
	}

	e := entity.NewLink(dest)
	if id, ok := ParseMentionURL(dest); ok {
		e = entity.NewMention(id)
	}
	key := in.im.b.RegisterEntity(e)
	in.entities = append(in.entities, document.EntityRange{Start: start, End: in.n, Key: key})
}

// unescape resolves backslash escapes and character references the same way
// the HTML renderer does, then decodes the resulting HTML text.
func unescape(raw []byte) string {
	if !bytes.ContainsAny(raw, `\&`) {
		return string(raw)
	}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	gmhtml.DefaultWriter.Write(w, raw)
	_ = w.Flush()
	return xhtml.UnescapeString(buf.String())
}
