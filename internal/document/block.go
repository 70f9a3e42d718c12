package document

import (
	"sort"

	"git.home.luguber.info/inful/draftmd/internal/entity"
	"github.com/google/uuid"
)

// BlockType is the structural kind of a block.
type BlockType string

const (
	Unstyled          BlockType = "unstyled"
	HeaderOne         BlockType = "header-one"
	HeaderTwo         BlockType = "header-two"
	HeaderThree       BlockType = "header-three"
	HeaderFour        BlockType = "header-four"
	HeaderFive        BlockType = "header-five"
	HeaderSix         BlockType = "header-six"
	Blockquote        BlockType = "blockquote"
	UnorderedListItem BlockType = "unordered-list-item"
	OrderedListItem   BlockType = "ordered-list-item"
	CodeBlock         BlockType = "code-block"
)

var headings = []BlockType{HeaderOne, HeaderTwo, HeaderThree, HeaderFour, HeaderFive, HeaderSix}

// Heading returns the block type for heading level 1..6, or Unstyled.
func Heading(level int) BlockType {
	if level < 1 || level > len(headings) {
		return Unstyled
	}
	return headings[level-1]
}

// HeadingLevel returns 1..6 for heading types and 0 otherwise.
func (t BlockType) HeadingLevel() int {
	for i, h := range headings {
		if h == t {
			return i + 1
		}
	}
	return 0
}

// IsListItem reports whether t is one of the list item types.
func (t BlockType) IsListItem() bool {
	return t == UnorderedListItem || t == OrderedListItem
}

// Style names an inline style. The set is open; the exporter knows the
// constants below.
type Style string

const (
	Bold          Style = "BOLD"
	Italic        Style = "ITALIC"
	Underline     Style = "UNDERLINE"
	Code          Style = "CODE"
	Strikethrough Style = "STRIKETHROUGH"
)

// StyleRange applies Style to the UTF-16 range [Start, End).
type StyleRange struct {
	Start int
	End   int
	Style Style
}

// EntityRange attaches the entity Key to the UTF-16 range [Start, End).
type EntityRange struct {
	Start int
	End   int
	Key   entity.Key
}

// DataLanguage is the block data key holding a code block's info string.
const DataLanguage = "language"

// Block is one paragraph-level unit of a document.
type Block struct {
	Key          string
	Type         BlockType
	Text         string
	Depth        int
	StyleRanges  []StyleRange
	EntityRanges []EntityRange
	Data         map[string]string
}

// NewBlockKey returns a fresh opaque block key.
func NewBlockKey() string {
	return uuid.NewString()
}

// Len returns the text length in UTF-16 code units.
func (b Block) Len() int { return Len16(b.Text) }

// Slice returns the text between two UTF-16 offsets.
func (b Block) Slice(start, end int) string { return Slice16(b.Text, start, end) }

// EntityAt returns the entity key covering offset, or 0.
func (b Block) EntityAt(offset int) entity.Key {
	for _, r := range b.EntityRanges {
		if offset >= r.Start && offset < r.End {
			return r.Key
		}
	}
	return 0
}

// StylesAt returns the styles applied at offset in a stable order.
func (b Block) StylesAt(offset int) []Style {
	var out []Style
	for _, r := range b.StyleRanges {
		if offset >= r.Start && offset < r.End {
			out = append(out, r.Style)
		}
	}
	sortStyles(out)
	return out
}

// FindEntityRanges returns the entity ranges whose key satisfies match, in
// text order. It is the lookup behind link decorators.
func (b Block) FindEntityRanges(match func(entity.Key) bool) []EntityRange {
	var out []EntityRange
	for _, r := range b.EntityRanges {
		if match(r.Key) {
			out = append(out, r)
		}
	}
	return out
}

func (b Block) clone() Block {
	out := b
	out.StyleRanges = append([]StyleRange(nil), b.StyleRanges...)
	out.EntityRanges = append([]EntityRange(nil), b.EntityRanges...)
	if b.Data != nil {
		out.Data = make(map[string]string, len(b.Data))
		for k, v := range b.Data {
			out.Data[k] = v
		}
	}
	return out
}

func sortStyles(styles []Style) {
	sort.Slice(styles, func(i, j int) bool { return styles[i] < styles[j] })
}
