package markdown

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/draftmd/internal/document"
)

// Export serializes doc to Markdown. Blocks are separated by a blank line,
// consecutive list items by a single newline. Empty unstyled blocks have no
// Markdown form and are skipped.
func Export(doc *document.Document) string {
	e := &exporter{doc: doc}
	for _, b := range doc.Blocks() {
		e.block(b)
	}
	if e.out.Len() == 0 {
		return ""
	}
	e.out.WriteString("\n")
	return e.out.String()
}

type exporter struct {
	doc      *document.Document
	out      strings.Builder
	list     listState
	wrote    bool
	lastList bool
	// lastText is set when the previous list item had content.
	lastText bool
}

func (e *exporter) block(b document.Block) {
	isList := b.Type.IsListItem()
	if !isList && b.Type.HeadingLevel() == 0 && b.Type != document.Blockquote && b.Type != document.CodeBlock && b.Text == "" {
		return
	}
	if e.wrote {
		if isList && e.lastList {
			e.out.WriteString("\n")
		} else {
			e.out.WriteString("\n\n")
		}
	}
	if !isList {
		e.list.reset()
		e.lastText = false
	}
	e.wrote, e.lastList = true, isList

	switch {
	case isList:
		e.listItem(b)
	case b.Type.HeadingLevel() > 0:
		marker := strings.Repeat("#", b.Type.HeadingLevel())
		b.Text = strings.ReplaceAll(b.Text, "\n", " ")
		content := renderInline(e.doc, b)
		if content == "" {
			e.out.WriteString(marker)
			return
		}
		e.out.WriteString(marker + " " + content)
	case b.Type == document.Blockquote:
		lines := strings.Split(renderInline(e.doc, b), "\n")
		for i, line := range lines {
			if i > 0 {
				e.out.WriteString("\n")
			}
			if line == "" {
				e.out.WriteString(">")
				continue
			}
			e.out.WriteString("> " + line)
		}
	case b.Type == document.CodeBlock:
		e.codeBlock(b)
	default:
		e.out.WriteString(renderInline(e.doc, b))
	}
}

// listItem writes one item. An empty item cannot interrupt a paragraph and a
// bare "-" under text is a heading underline, so an empty item that starts a
// new list right after an item with text is set off by a blank line.
func (e *exporter) listItem(b document.Block) {
	indent, marker, fresh := e.list.next(b)
	content := renderInline(e.doc, b)
	defer func() { e.lastText = content != "" }()
	if content == "" {
		if fresh && e.lastText {
			e.out.WriteString("\n")
		}
		e.out.WriteString(indent + strings.TrimSuffix(marker, " "))
		return
	}
	continuation := "\n" + strings.Repeat(" ", len(indent)+len(marker))
	e.out.WriteString(indent + marker + strings.ReplaceAll(content, "\n", continuation))
}

func (e *exporter) codeBlock(b document.Block) {
	fence := strings.Repeat("`", max(3, longestRun(b.Text, '`')+1))
	lang := b.Data[document.DataLanguage]
	if strings.ContainsAny(lang, "`\n\r") {
		lang = ""
	}
	e.out.WriteString(fence + lang + "\n")
	if b.Text != "" {
		e.out.WriteString(b.Text + "\n")
	}
	e.out.WriteString(fence)
}

// listState numbers ordered items per list run and nesting level, and tracks
// the content column of each level so nested items indent under their parent.
type listState struct {
	cols  []int
	nums  []int
	types []document.BlockType
}

func (s *listState) reset() {
	s.cols, s.nums, s.types = s.cols[:0], s.nums[:0], s.types[:0]
}

// next returns the indentation and marker for b, and whether b starts a new
// list rather than continuing one. Depths deeper than one level below the
// current list are clamped.
func (s *listState) next(b document.Block) (indent, marker string, fresh bool) {
	depth := min(max(b.Depth, 0), len(s.cols))
	num := 1
	fresh = true
	if depth < len(s.cols) && s.types[depth] == b.Type {
		num = s.nums[depth] + 1
		fresh = false
	}
	s.cols, s.nums, s.types = s.cols[:depth], s.nums[:depth], s.types[:depth]

	if depth > 0 {
		indent = strings.Repeat(" ", s.cols[depth-1])
	}
	marker = "- "
	if b.Type == document.OrderedListItem {
		marker = fmt.Sprintf("%d. ", num)
	}
	s.cols = append(s.cols, len(indent)+len(marker))
	s.nums = append(s.nums, num)
	s.types = append(s.types, b.Type)
	return indent, marker, fresh
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}
