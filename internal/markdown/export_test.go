package markdown

import (
	"testing"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/entity"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, fn func(b *document.Builder)) *document.Document {
	t.Helper()
	b := document.NewBuilder()
	fn(b)
	doc, err := b.Build()
	require.NoError(t, err)
	return doc
}

func TestExport_Mention(t *testing.T) {
	doc := build(t, func(b *document.Builder) {
		k := b.RegisterEntity(entity.NewMention(42))
		b.AppendBlock(document.Block{Text: "Hi Alice", EntityRanges: []document.EntityRange{{Start: 3, End: 8, Key: k}}})
	})
	out := Export(doc)
	require.Contains(t, out, "[Alice](_user_:42)")
	require.Equal(t, "Hi [Alice](_user_:42)\n", out)
}

func TestExport_CanonicalDocument(t *testing.T) {
	src := "# Title\n\n" +
		"Hello **bold** and *italic* and `code`.\n\n" +
		"- one\n- two\n  - nested\n- three\n\n" +
		"Between\n\n" +
		"1. first\n   - sub\n2. second\n\n" +
		"> quoted\n\n" +
		"```go\nfmt.Println(\"hi\")\n```\n"
	require.Equal(t, src, Export(Import(src)))
}

func TestExport_EmptyDocument(t *testing.T) {
	require.Empty(t, Export(document.New()))
}

func TestExport_Links(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "plain", url: "http://example.com", want: "[t](http://example.com)\n"},
		{name: "empty", url: "", want: "[t]()\n"},
		{name: "space", url: "http://x.io/a b", want: "[t](<http://x.io/a b>)\n"},
		{name: "parens", url: "http://x.io/(a)", want: "[t](http://x.io/\\(a\\))\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := build(t, func(b *document.Builder) {
				k := b.RegisterEntity(entity.NewLink(tt.url))
				b.AppendBlock(document.Block{Text: "t", EntityRanges: []document.EntityRange{{Start: 0, End: 1, Key: k}}})
			})
			out := Export(doc)
			require.Equal(t, tt.want, out)

			back := Import(out)
			e, ok := back.Entity(back.BlockAt(0).EntityRanges[0].Key)
			require.True(t, ok)
			link, _ := e.Link()
			require.Equal(t, tt.url, link.URL)
		})
	}
}

func TestExport_StyleBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		styles []document.StyleRange
		want   string
	}{
		{
			name:   "whitespace moves outside emphasis",
			text:   "a bold b",
			styles: []document.StyleRange{{Start: 1, End: 7, Style: document.Bold}},
			want:   "a **bold** b\n",
		},
		{
			name: "nested emphasis reuses the open delimiter",
			text: "a b c",
			styles: []document.StyleRange{
				{Start: 0, End: 5, Style: document.Bold},
				{Start: 2, End: 3, Style: document.Italic},
			},
			want: "**a *b* c**\n",
		},
		{
			name:   "code with backticks",
			text:   "a`b",
			styles: []document.StyleRange{{Start: 0, End: 3, Style: document.Code}},
			want:   "``a`b``\n",
		},
		{
			name:   "underline has no markdown form",
			text:   "under",
			styles: []document.StyleRange{{Start: 0, End: 5, Style: document.Underline}},
			want:   "under\n",
		},
		{
			name:   "strikethrough",
			text:   "gone",
			styles: []document.StyleRange{{Start: 0, End: 4, Style: document.Strikethrough}},
			want:   "~~gone~~\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := build(t, func(b *document.Builder) {
				b.AppendBlock(document.Block{Text: tt.text, StyleRanges: tt.styles})
			})
			require.Equal(t, tt.want, Export(doc))
		})
	}
}

func TestExport_EntityIsOutermost(t *testing.T) {
	doc := build(t, func(b *document.Builder) {
		k := b.RegisterEntity(entity.NewLink("http://x.io"))
		b.AppendBlock(document.Block{
			Text:         "bold link end",
			StyleRanges:  []document.StyleRange{{Start: 0, End: 13, Style: document.Bold}},
			EntityRanges: []document.EntityRange{{Start: 5, End: 9, Key: k}},
		})
	})
	require.Equal(t, "**bold** [**link**](http://x.io) **end**\n", Export(doc))
}

func TestExport_LiteralTextSurvivesRoundTrip(t *testing.T) {
	texts := []string{
		"*not bold* # 1. [x] <b> a_b ~x~ \\ `tick` Tom & Jerry &amp;",
		"- item\n# head\n1. one\n+ plus\n> quote\n  indented",
		"trailing space ",
		"=====",
		"_lead and trail_",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			doc := build(t, func(b *document.Builder) {
				b.AppendBlock(document.Block{Text: text})
			})
			back := Import(Export(doc))
			require.Equal(t, 1, back.BlockCount())
			require.Equal(t, text, back.BlockAt(0).Text)
			require.Empty(t, back.BlockAt(0).StyleRanges)
		})
	}
}

func TestExport_Blocks(t *testing.T) {
	doc := build(t, func(b *document.Builder) {
		b.AppendBlock(document.Block{Type: document.HeaderTwo, Text: "multi\nline"})
		b.AppendBlock(document.Block{Type: document.Unstyled})
		b.AppendBlock(document.Block{Type: document.Blockquote, Text: "one\n\ntwo"})
		b.AppendBlock(document.Block{Type: document.UnorderedListItem, Depth: 2, Text: "deep"})
		b.AppendBlock(document.Block{Type: document.OrderedListItem, Depth: 1, Text: "a\nb"})
		b.AppendBlock(document.Block{Type: document.OrderedListItem, Depth: 1, Text: "c"})
		b.AppendBlock(document.Block{Type: document.CodeBlock, Text: "x ``` y", Data: map[string]string{"language": "sh"}})
	})
	want := "## multi line\n\n" +
		"> one\n> &#10;two\n\n" +
		"- deep\n" +
		"  1. a\n     b\n" +
		"  2. c\n\n" +
		"````sh\nx ``` y\n````\n"
	require.Equal(t, want, Export(doc))
}

func TestExport_BangBeforeEntity(t *testing.T) {
	tests := []struct {
		name string
		e    entity.Entity
		want string
	}{
		{name: "link", e: entity.NewLink("http://x.io"), want: "Wow\\![site](http://x.io)\n"},
		{name: "mention", e: entity.NewMention(7), want: "Wow\\![site](_user_:7)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := build(t, func(b *document.Builder) {
				k := b.RegisterEntity(tt.e)
				b.AppendBlock(document.Block{Text: "Wow!site", EntityRanges: []document.EntityRange{{Start: 4, End: 8, Key: k}}})
			})
			out := Export(doc)
			require.Equal(t, tt.want, out)

			back := Import(out)
			require.Equal(t, summarize(doc), summarize(back))
		})
	}

	doc := build(t, func(b *document.Builder) {
		k := b.RegisterEntity(entity.NewLink("http://x.io"))
		b.AppendBlock(document.Block{Text: "!site", EntityRanges: []document.EntityRange{{Start: 1, End: 5, Key: k}}})
	})
	require.Equal(t, summarize(doc), summarize(Import(Export(doc))))
}

func TestExport_EmptyListItems(t *testing.T) {
	ul, ol := document.UnorderedListItem, document.OrderedListItem
	tests := []struct {
		name   string
		blocks []document.Block
		want   string
	}{
		{
			name:   "nested under text",
			blocks: []document.Block{{Type: ul, Text: "a"}, {Type: ul, Depth: 1}},
			want:   "- a\n\n  -\n",
		},
		{
			name:   "nested ordered under text",
			blocks: []document.Block{{Type: ol, Text: "a"}, {Type: ol, Depth: 1}},
			want:   "1. a\n\n   1.\n",
		},
		{
			name:   "sibling",
			blocks: []document.Block{{Type: ul, Text: "a"}, {Type: ul}, {Type: ul, Text: "b"}},
			want:   "- a\n-\n- b\n",
		},
		{
			name:   "new list of another type",
			blocks: []document.Block{{Type: ul, Text: "a"}, {Type: ol}},
			want:   "- a\n\n1.\n",
		},
		{
			name:   "parent of a nested item",
			blocks: []document.Block{{Type: ul}, {Type: ul, Depth: 1, Text: "b"}},
			want:   "-\n  - b\n",
		},
		{
			name:   "empty under empty",
			blocks: []document.Block{{Type: ul, Text: "a"}, {Type: ul, Depth: 1}, {Type: ul, Depth: 2}},
			want:   "- a\n\n  -\n    -\n",
		},
		{
			name:   "after a shallower sibling list",
			blocks: []document.Block{{Type: ol, Text: "x"}, {Type: ul, Depth: 1, Text: "y"}, {Type: ul}},
			want:   "1. x\n   - y\n\n-\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := build(t, func(b *document.Builder) {
				for _, blk := range tt.blocks {
					b.AppendBlock(blk)
				}
			})
			out := Export(doc)
			require.Equal(t, tt.want, out)
			require.Equal(t, summarize(doc), summarize(Import(out)))
		})
	}
}

func TestExport_LineBreaksAtParagraphEdges(t *testing.T) {
	texts := []string{"\nlead", "trail\n", "a\n\nb", "\n", "x\r\ny"}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			doc := build(t, func(b *document.Builder) {
				b.AppendBlock(document.Block{Text: text})
			})
			back := Import(Export(doc))
			require.Equal(t, 1, back.BlockCount())
			require.Equal(t, text, back.BlockAt(0).Text)
		})
	}
}

func TestExport_EmphasisThatCannotPairIsDropped(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		styles []document.StyleRange
		want   string
	}{
		{
			name: "adjacent runs between punctuation and a word",
			text: "#a",
			styles: []document.StyleRange{
				{Start: 0, End: 1, Style: document.Bold},
				{Start: 1, End: 2, Style: document.Italic},
			},
			want: "\\#a\n",
		},
		{
			name:   "closing after punctuation before a word",
			text:   "x)y",
			styles: []document.StyleRange{{Start: 0, End: 2, Style: document.Bold}},
			want:   "x)y\n",
		},
		{
			name: "adjacent runs between words",
			text: "ab",
			styles: []document.StyleRange{
				{Start: 0, End: 1, Style: document.Bold},
				{Start: 1, End: 2, Style: document.Italic},
			},
			want: "**a***b*\n",
		},
		{
			name: "longer run opens outside",
			text: "a b",
			styles: []document.StyleRange{
				{Start: 0, End: 1, Style: document.Bold},
				{Start: 0, End: 3, Style: document.Italic},
			},
			want: "***a** b*\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := build(t, func(b *document.Builder) {
				b.AppendBlock(document.Block{Text: tt.text, StyleRanges: tt.styles})
			})
			out := Export(doc)
			require.Equal(t, tt.want, out)
			require.Equal(t, out, Export(Import(out)))
		})
	}
}
