package paste

import (
	"testing"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/entity"
	"github.com/stretchr/testify/require"
)

func linkURL(t *testing.T, doc *document.Document, k entity.Key) string {
	t.Helper()
	e, ok := doc.Entity(k)
	require.True(t, ok)
	link, ok := e.Link()
	require.True(t, ok)
	return link.URL
}

func TestHandlePaste_NoURLIsNotHandled(t *testing.T) {
	doc := document.New()
	res, err := NewDetector(Options{}).HandlePaste("hello world", doc, doc.Start())
	require.NoError(t, err)
	require.False(t, res.Handled)
	require.Nil(t, res.Document)
}

func TestHandlePaste_OneURL(t *testing.T) {
	doc := document.New()
	res, err := NewDetector(Options{}).HandlePaste("see http://x.io now", doc, doc.Start())
	require.NoError(t, err)
	require.True(t, res.Handled)

	b := res.Document.BlockAt(0)
	require.Equal(t, "see http://x.io now", b.Text)
	require.Len(t, b.EntityRanges, 1)
	r := b.EntityRanges[0]
	require.Equal(t, "http://x.io", b.Slice(r.Start, r.End))
	require.Equal(t, "http://x.io", linkURL(t, res.Document, r.Key))
	require.Empty(t, b.StyleRanges)

	require.Equal(t, document.Caret(b.Key, 19), res.Selection)
	require.Equal(t, []Change{
		{Type: document.ChangeInsertText, Text: "see "},
		{Type: document.ChangeInsertLink, Text: "http://x.io", URL: "http://x.io"},
		{Type: document.ChangeInsertText, Text: " now"},
	}, res.Changes)

	// The input document is untouched.
	require.Empty(t, doc.BlockAt(0).Text)
}

func TestHandlePaste_PastedTextMode(t *testing.T) {
	doc := document.New()
	text := "a http://one.io b www.two.io"
	res, err := NewDetector(Options{URLMode: URLModePastedText}).HandlePaste(text, doc, doc.Start())
	require.NoError(t, err)

	b := res.Document.BlockAt(0)
	require.Len(t, b.EntityRanges, 2)
	require.NotEqual(t, b.EntityRanges[0].Key, b.EntityRanges[1].Key)
	for _, r := range b.EntityRanges {
		require.Equal(t, text, linkURL(t, res.Document, r.Key))
	}
}

func TestHandlePaste_ReplacesSelectionAndKeepsSurroundings(t *testing.T) {
	b := document.NewBuilder()
	b.AppendBlock(document.Block{Key: "k", Text: "before XXX after", StyleRanges: []document.StyleRange{{Start: 0, End: 6, Style: document.Bold}}})
	doc, err := b.Build()
	require.NoError(t, err)

	sel := document.Selection{AnchorKey: "k", AnchorOffset: 7, FocusKey: "k", FocusOffset: 10}
	res, err := NewDetector(Options{}).HandlePaste("http://x.io", doc, sel)
	require.NoError(t, err)

	got := res.Document.BlockAt(0)
	require.Equal(t, "before http://x.io after", got.Text)
	require.Equal(t, []document.StyleRange{{Start: 0, End: 6, Style: document.Bold}}, got.StyleRanges)
	require.Equal(t, 7, got.EntityRanges[0].Start)
	require.Equal(t, 18, got.EntityRanges[0].End)
	require.Equal(t, document.Caret("k", 18), res.Selection)
}

func TestHandlePaste_UTF16Offsets(t *testing.T) {
	doc := document.New()
	res, err := NewDetector(Options{}).HandlePaste("😀 http://x.io", doc, doc.Start())
	require.NoError(t, err)
	r := res.Document.BlockAt(0).EntityRanges[0]
	require.Equal(t, 3, r.Start)
	require.Equal(t, 14, r.End)
	require.Equal(t, 14, res.Selection.FocusOffset)
}

func TestHandlePaste_NormalizesLineEndings(t *testing.T) {
	doc := document.New()
	res, err := NewDetector(Options{}).HandlePaste("line\r\nhttp://x.io", doc, doc.Start())
	require.NoError(t, err)
	require.Equal(t, 1, res.Document.BlockCount())
	require.Equal(t, "line\nhttp://x.io", res.Document.BlockAt(0).Text)
}

func TestHandlePaste_NeverSplitsMentions(t *testing.T) {
	b := document.NewBuilder()
	k := b.RegisterEntity(entity.NewMention(42))
	b.AppendBlock(document.Block{Key: "k", Text: "hi Alice", EntityRanges: []document.EntityRange{{Start: 3, End: 8, Key: k}}})
	doc, err := b.Build()
	require.NoError(t, err)

	res, err := NewDetector(Options{}).HandlePaste(" http://x.io", doc, document.Caret("k", 5))
	require.NoError(t, err)
	got := res.Document.BlockAt(0)
	require.Equal(t, "hi Alice http://x.io", got.Text)
	require.Equal(t, document.EntityRange{Start: 3, End: 8, Key: k}, got.EntityRanges[0])
	require.NoError(t, res.Document.Validate())
}

func TestHandlePaste_UnknownBlock(t *testing.T) {
	_, err := NewDetector(Options{}).HandlePaste("http://x.io", document.New(), document.Caret("nope", 0))
	require.Error(t, err)
}

func TestParseURLMode(t *testing.T) {
	mode, err := ParseURLMode(" Pasted-Text ")
	require.NoError(t, err)
	require.Equal(t, URLModePastedText, mode)

	_, err = ParseURLMode("whole")
	require.Error(t, err)
}
