package document

import (
	"git.home.luguber.info/inful/draftmd/internal/entity"
)

// LinkAt returns the URL of the link entity at the start of the selection.
// It is used to prefill a link prompt.
func (d *Document) LinkAt(sel Selection) (string, bool, error) {
	start, _, err := d.bounds(sel)
	if err != nil {
		return "", false, err
	}
	k := d.blocks[start.index].EntityAt(start.offset)
	if k == 0 {
		return "", false, nil
	}
	link, ok := d.entities[k].Link()
	if !ok {
		return "", false, nil
	}
	return link.URL, true, nil
}

// ApplyLink registers a new link entity for url and applies it to every
// character of a non-collapsed selection, across blocks. Characters that
// belong to a segmented span keep their entity. A collapsed selection leaves
// the document unchanged and returns key 0.
func (d *Document) ApplyLink(sel Selection, url string) (*Document, entity.Key, error) {
	start, end, err := d.bounds(sel)
	if err != nil {
		return nil, 0, err
	}
	if start == end {
		return d, 0, nil
	}
	out, key := d.WithEntity(entity.NewLink(url))
	out.mapUnits(start, end, func(u unit) unit {
		if !out.isAtomic(u.key) {
			u.key = key
		}
		return u
	})
	return out, key, nil
}

// RemoveLinks clears link entities from the selected characters. Mentions
// are left alone and a collapsed selection changes nothing. The unreferenced
// link entities stay registered.
func (d *Document) RemoveLinks(sel Selection) (*Document, error) {
	start, end, err := d.bounds(sel)
	if err != nil {
		return nil, err
	}
	if start == end {
		return d, nil
	}
	out := d.shallow()
	out.mapUnits(start, end, func(u unit) unit {
		if e, ok := out.entities[u.key]; ok && e.Type() == entity.TypeLink {
			u.key = 0
		}
		return u
	})
	return out, nil
}

// LinkRanges returns the link entity ranges of block in text order.
func (d *Document) LinkRanges(b Block) []EntityRange {
	return b.FindEntityRanges(func(k entity.Key) bool {
		e, ok := d.entities[k]
		return ok && e.Type() == entity.TypeLink
	})
}

func (d *Document) scanUnits(start, end position, fn func(unit)) {
	for i := start.index; i <= end.index; i++ {
		units := explode(d.blocks[i])
		from, to := unitSpan(i, start, end, len(units))
		for _, u := range units[from:to] {
			fn(u)
		}
	}
}

// mapUnits rewrites the units between start and end in place on d, which must
// be a fresh shallow copy.
func (d *Document) mapUnits(start, end position, fn func(unit) unit) {
	for i := start.index; i <= end.index; i++ {
		units := explode(d.blocks[i])
		from, to := unitSpan(i, start, end, len(units))
		for j := from; j < to; j++ {
			units[j] = fn(units[j])
		}
		d.blocks[i] = implode(d.blocks[i], units)
	}
}

func unitSpan(i int, start, end position, n int) (from, to int) {
	from, to = 0, n
	if i == start.index {
		from = start.offset
	}
	if i == end.index {
		to = end.offset
	}
	return from, to
}
