package document

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// Validate checks the document invariants: at least one block, unique
// non-empty block keys, ranges inside the text, no overlapping ranges of the
// same style, sorted non-overlapping entity ranges referring to registered
// entities.
func (d *Document) Validate() error {
	if len(d.blocks) == 0 {
		return invalidDocument("document has no blocks", "")
	}
	seen := make(map[string]struct{}, len(d.blocks))
	for _, b := range d.blocks {
		if b.Key == "" {
			return invalidDocument("block key is empty", "")
		}
		if _, dup := seen[b.Key]; dup {
			return invalidDocument("duplicate block key", b.Key)
		}
		seen[b.Key] = struct{}{}
		if b.Depth < 0 {
			return invalidDocument("negative block depth", b.Key)
		}
		if err := d.validateRanges(b); err != nil {
			return err
		}
	}
	for k := range d.entities {
		if k <= 0 || k >= d.nextKey {
			return invalidDocument(fmt.Sprintf("entity key %d outside [1,%d)", k, d.nextKey), "")
		}
	}
	return nil
}

func (d *Document) validateRanges(b Block) error {
	n := b.Len()

	byStyle := map[Style][]StyleRange{}
	for _, r := range b.StyleRanges {
		if r.Start < 0 || r.End > n || r.Start >= r.End {
			return invalidDocument(fmt.Sprintf("style range [%d,%d) outside text of length %d", r.Start, r.End, n), b.Key)
		}
		byStyle[r.Style] = append(byStyle[r.Style], r)
	}
	for style, ranges := range byStyle {
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
		for i := 1; i < len(ranges); i++ {
			if ranges[i].Start < ranges[i-1].End {
				return invalidDocument(fmt.Sprintf("overlapping %s ranges", style), b.Key)
			}
		}
	}

	prevEnd := 0
	for i, r := range b.EntityRanges {
		if r.Start < 0 || r.End > n || r.Start >= r.End {
			return invalidDocument(fmt.Sprintf("entity range [%d,%d) outside text of length %d", r.Start, r.End, n), b.Key)
		}
		if i > 0 && r.Start < prevEnd {
			return invalidDocument("entity ranges overlap or are unsorted", b.Key)
		}
		prevEnd = r.End
		if _, ok := d.entities[r.Key]; !ok {
			return invalidDocument(fmt.Sprintf("entity key %d is not registered", r.Key), b.Key)
		}
	}
	return nil
}

func invalidDocument(reason, blockKey string) error {
	b := errors.ValidationError("invalid document").WithContext("reason", reason)
	if blockKey != "" {
		b = b.WithContext("block_key", blockKey)
	}
	return b.Build()
}
