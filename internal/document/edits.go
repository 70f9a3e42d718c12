package document

import (
	"git.home.luguber.info/inful/draftmd/internal/entity"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// RemoveRange deletes the selected content and returns the new document with
// a caret where the selection started. A selection spanning blocks merges the
// first and last block; the merged block keeps the first block's type.
//
// Segmented and immutable entity spans touched by the selection are removed
// as a whole.
func (d *Document) RemoveRange(sel Selection) (*Document, Selection, error) {
	start, end, err := d.bounds(sel)
	if err != nil {
		return nil, Selection{}, err
	}
	if start == end {
		return d, Caret(d.blocks[start.index].Key, start.offset), nil
	}

	head := explode(d.blocks[start.index])
	tail := head
	if end.index != start.index {
		tail = explode(d.blocks[end.index])
	}
	from := d.atomicStart(head, start.offset)
	to := d.atomicEnd(tail, end.offset)

	merged := make([]unit, 0, from+len(tail)-to)
	merged = append(merged, head[:from]...)
	merged = append(merged, tail[to:]...)

	out := d.shallow()
	block := implode(d.blocks[start.index], merged)
	out.blocks = append(append(out.blocks[:start.index:start.index], block), d.blocks[end.index+1:]...)
	return out, Caret(block.Key, from), nil
}

// InsertText replaces the selection with text. The inserted units carry the
// given styles and, when key is non-zero, the entity key. An insertion point
// strictly inside a segmented span moves to the end of that span. The
// returned caret sits after the inserted text.
//
// Newlines are kept inside the block.
func (d *Document) InsertText(sel Selection, text string, styles []Style, key entity.Key) (*Document, Selection, error) {
	if key != 0 {
		if _, ok := d.entities[key]; !ok {
			return nil, Selection{}, errors.ValidationError("entity key is not registered").
				WithContext("entity_key", int(key)).
				Build()
		}
	}
	next, caret, err := d.RemoveRange(sel)
	if err != nil {
		return nil, Selection{}, err
	}
	if text == "" {
		return next, caret, nil
	}

	i := next.indexOf(caret.AnchorKey)
	units := explode(next.blocks[i])
	at := next.atomicEnd(units, caret.AnchorOffset)
	inserted := textUnits(text, styles, key)

	spliced := make([]unit, 0, len(units)+len(inserted))
	spliced = append(spliced, units[:at]...)
	spliced = append(spliced, inserted...)
	spliced = append(spliced, units[at:]...)

	out := next.shallow()
	out.blocks[i] = implode(next.blocks[i], spliced)
	return out, Caret(out.blocks[i].Key, at+len(inserted)), nil
}

// atomicStart moves offset left to the start of an atomic span it cuts.
func (d *Document) atomicStart(units []unit, offset int) int {
	for offset > 0 && offset < len(units) && d.splits(units, offset) {
		offset--
	}
	return offset
}

// atomicEnd moves offset right to the end of an atomic span it cuts.
func (d *Document) atomicEnd(units []unit, offset int) int {
	for offset > 0 && offset < len(units) && d.splits(units, offset) {
		offset++
	}
	return offset
}

// splits reports whether a cut before units[offset] lands inside one atomic
// entity span.
func (d *Document) splits(units []unit, offset int) bool {
	k := units[offset].key
	if k == 0 || units[offset-1].key != k {
		return false
	}
	return d.isAtomic(k)
}

func (d *Document) isAtomic(k entity.Key) bool {
	if k == 0 {
		return false
	}
	e, ok := d.entities[k]
	return ok && e.Mutability().Atomic()
}
