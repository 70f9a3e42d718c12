package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func listDoc(t *testing.T) *Document {
	t.Helper()
	b := NewBuilder()
	b.AppendBlock(Block{Key: "p", Text: "intro"})
	b.AppendBlock(Block{Key: "l1", Type: UnorderedListItem, Text: "one"})
	b.AppendBlock(Block{Key: "l2", Type: UnorderedListItem, Text: "two", Depth: 1})
	return mustBuild(t, b)
}

func TestSetBlockType(t *testing.T) {
	doc := listDoc(t)

	next, err := doc.SetBlockType(Selection{AnchorKey: "p", FocusKey: "l1", FocusOffset: 1}, HeaderTwo)
	require.NoError(t, err)
	require.Equal(t, HeaderTwo, next.BlockAt(0).Type)
	require.Equal(t, HeaderTwo, next.BlockAt(1).Type)
	require.Equal(t, UnorderedListItem, next.BlockAt(2).Type)

	back, err := next.SetBlockType(Caret("p", 0), HeaderTwo)
	require.NoError(t, err)
	require.Equal(t, Unstyled, back.BlockAt(0).Type)
}

func TestSetBlockType_ResetsDepthOutsideLists(t *testing.T) {
	doc := listDoc(t)
	next, err := doc.SetBlockType(Caret("l2", 0), Blockquote)
	require.NoError(t, err)
	require.Equal(t, 0, next.BlockAt(2).Depth)
	require.Equal(t, 1, doc.BlockAt(2).Depth)
}

func TestToggleInlineStyle(t *testing.T) {
	b := NewBuilder()
	b.AppendBlock(Block{Key: "a", Text: "hello world", StyleRanges: []StyleRange{{Start: 0, End: 5, Style: Bold}}})
	doc := mustBuild(t, b)

	added, err := doc.ToggleInlineStyle(Selection{AnchorKey: "a", AnchorOffset: 3, FocusKey: "a", FocusOffset: 8}, Bold)
	require.NoError(t, err)
	require.Equal(t, []StyleRange{{Start: 0, End: 8, Style: Bold}}, added.BlockAt(0).StyleRanges)

	removed, err := added.ToggleInlineStyle(Selection{AnchorKey: "a", AnchorOffset: 2, FocusKey: "a", FocusOffset: 4}, Bold)
	require.NoError(t, err)
	require.Equal(t, []StyleRange{{Start: 0, End: 2, Style: Bold}, {Start: 4, End: 8, Style: Bold}}, removed.BlockAt(0).StyleRanges)

	same, err := doc.ToggleInlineStyle(Caret("a", 1), Italic)
	require.NoError(t, err)
	require.Same(t, doc, same)
}

func TestAdjustDepth(t *testing.T) {
	doc := listDoc(t)

	deeper, err := doc.AdjustDepth(Caret("l2", 0), 1, 4)
	require.NoError(t, err)
	require.Equal(t, 2, deeper.BlockAt(2).Depth)

	shallower, err := doc.AdjustDepth(Selection{AnchorKey: "l1", FocusKey: "l2"}, -1, 4)
	require.NoError(t, err)
	require.Equal(t, 0, shallower.BlockAt(1).Depth)
	require.Equal(t, 0, shallower.BlockAt(2).Depth)

	capped, err := doc.AdjustDepth(Caret("l2", 0), 1, 1)
	require.NoError(t, err)
	require.Same(t, doc, capped)

	notList, err := doc.AdjustDepth(Caret("p", 0), 1, 4)
	require.NoError(t, err)
	require.Same(t, doc, notList)
}

func TestAdjustDepth_MovesEveryListItemInSelection(t *testing.T) {
	b := NewBuilder()
	b.AppendBlock(Block{Key: "l1", Type: UnorderedListItem, Text: "one"})
	b.AppendBlock(Block{Key: "p", Text: "between"})
	b.AppendBlock(Block{Key: "l2", Type: OrderedListItem, Text: "two", Depth: 2})
	b.AppendBlock(Block{Key: "l3", Type: UnorderedListItem, Text: "three", Depth: 1})
	doc := mustBuild(t, b)

	deeper, err := doc.AdjustDepth(Selection{AnchorKey: "l3", AnchorOffset: 2, FocusKey: "l1", FocusOffset: 1}, 1, 2)
	require.NoError(t, err)
	require.Equal(t, 1, deeper.BlockAt(0).Depth)
	require.Equal(t, 0, deeper.BlockAt(1).Depth)
	require.Equal(t, 2, deeper.BlockAt(2).Depth)
	require.Equal(t, 2, deeper.BlockAt(3).Depth)

	fromTop, err := deeper.AdjustDepth(Selection{AnchorKey: "l2", FocusKey: "l3"}, 1, 2)
	require.NoError(t, err)
	require.Same(t, deeper, fromTop)
}
