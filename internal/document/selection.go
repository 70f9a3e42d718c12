package document

import (
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// Selection is an anchor/focus pair of block positions. Offsets are UTF-16.
type Selection struct {
	AnchorKey    string `json:"anchorKey"`
	AnchorOffset int    `json:"anchorOffset"`
	FocusKey     string `json:"focusKey"`
	FocusOffset  int    `json:"focusOffset"`
}

// Point is one position inside a document.
type Point struct {
	Key    string
	Offset int
}

// Caret returns a collapsed selection at key/offset.
func Caret(key string, offset int) Selection {
	return Selection{AnchorKey: key, AnchorOffset: offset, FocusKey: key, FocusOffset: offset}
}

// Range returns a selection from one point to another.
func Range(from, to Point) Selection {
	return Selection{AnchorKey: from.Key, AnchorOffset: from.Offset, FocusKey: to.Key, FocusOffset: to.Offset}
}

// IsCollapsed reports whether anchor and focus coincide.
func (s Selection) IsCollapsed() bool {
	return s.AnchorKey == s.FocusKey && s.AnchorOffset == s.FocusOffset
}

// Start returns a caret at the beginning of the document.
func (d *Document) Start() Selection {
	return Caret(d.blocks[0].Key, 0)
}

// End returns a caret at the end of the document.
func (d *Document) End() Selection {
	last := d.blocks[len(d.blocks)-1]
	return Caret(last.Key, last.Len())
}

// Bounds orders the selection endpoints in document order. Offsets are
// clamped to the block text; unknown block keys are an error.
func (d *Document) Bounds(sel Selection) (start, end Point, err error) {
	a, err := d.locate(sel.AnchorKey, sel.AnchorOffset)
	if err != nil {
		return Point{}, Point{}, err
	}
	f, err := d.locate(sel.FocusKey, sel.FocusOffset)
	if err != nil {
		return Point{}, Point{}, err
	}
	if a.index > f.index || (a.index == f.index && a.offset > f.offset) {
		a, f = f, a
	}
	return a.point(d), f.point(d), nil
}

type position struct {
	index  int
	offset int
}

func (p position) point(d *Document) Point {
	return Point{Key: d.blocks[p.index].Key, Offset: p.offset}
}

func (d *Document) locate(key string, offset int) (position, error) {
	i := d.indexOf(key)
	if i < 0 {
		return position{}, errors.ValidationError("selection references unknown block").
			WithContext("block_key", key).
			Build()
	}
	return position{index: i, offset: clamp(offset, 0, d.blocks[i].Len())}, nil
}

func (d *Document) bounds(sel Selection) (start, end position, err error) {
	s, e, err := d.Bounds(sel)
	if err != nil {
		return position{}, position{}, err
	}
	return position{index: d.indexOf(s.Key), offset: s.Offset}, position{index: d.indexOf(e.Key), offset: e.Offset}, nil
}
