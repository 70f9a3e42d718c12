package document

import (
	"sort"
	"unicode/utf16"

	"git.home.luguber.info/inful/draftmd/internal/entity"
)

// unit is one UTF-16 code unit of block text with its inline metadata. Edits
// explode a block into units, splice them, and rebuild the ranges.
type unit struct {
	c      uint16
	styles []Style
	key    entity.Key
}

func explode(b Block) []unit {
	text := encode16(b.Text)
	units := make([]unit, len(text))
	for i, c := range text {
		units[i].c = c
	}
	for _, r := range b.StyleRanges {
		for i := clamp(r.Start, 0, len(units)); i < clamp(r.End, 0, len(units)); i++ {
			units[i].styles = withStyle(units[i].styles, r.Style)
		}
	}
	for _, r := range b.EntityRanges {
		for i := clamp(r.Start, 0, len(units)); i < clamp(r.End, 0, len(units)); i++ {
			units[i].key = r.Key
		}
	}
	return units
}

func textUnits(text string, styles []Style, key entity.Key) []unit {
	encoded := encode16(text)
	set := append([]Style(nil), styles...)
	sortStyles(set)
	units := make([]unit, len(encoded))
	for i, c := range encoded {
		units[i] = unit{c: c, styles: set, key: key}
	}
	return units
}

// implode returns meta with text and ranges rebuilt from units.
func implode(meta Block, units []unit) Block {
	out := meta.clone()
	text := make([]uint16, len(units))
	for i, u := range units {
		text[i] = u.c
	}
	out.Text = string(utf16.Decode(text))
	out.StyleRanges = nil
	out.EntityRanges = nil

	open := map[Style]int{}
	closeStyle := func(s Style, end int) {
		out.StyleRanges = append(out.StyleRanges, StyleRange{Start: open[s], End: end, Style: s})
		delete(open, s)
	}
	for i, u := range units {
		for s := range open {
			if !hasStyle(u.styles, s) {
				closeStyle(s, i)
			}
		}
		for _, s := range u.styles {
			if _, ok := open[s]; !ok {
				open[s] = i
			}
		}
	}
	for s := range open {
		closeStyle(s, len(units))
	}
	sortStyleRanges(out.StyleRanges)

	for i := 0; i < len(units); {
		k := units[i].key
		j := i + 1
		for j < len(units) && units[j].key == k {
			j++
		}
		if k != 0 {
			out.EntityRanges = append(out.EntityRanges, EntityRange{Start: i, End: j, Key: k})
		}
		i = j
	}
	return out
}

func hasStyle(styles []Style, s Style) bool {
	for _, have := range styles {
		if have == s {
			return true
		}
	}
	return false
}

// withStyle returns a new sorted set containing s.
func withStyle(styles []Style, s Style) []Style {
	if hasStyle(styles, s) {
		return styles
	}
	out := make([]Style, 0, len(styles)+1)
	out = append(out, styles...)
	out = append(out, s)
	sortStyles(out)
	return out
}

// withoutStyle returns a new set without s.
func withoutStyle(styles []Style, s Style) []Style {
	if !hasStyle(styles, s) {
		return styles
	}
	out := make([]Style, 0, len(styles))
	for _, have := range styles {
		if have != s {
			out = append(out, have)
		}
	}
	return out
}

func sortStyleRanges(ranges []StyleRange) {
	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].Start != ranges[j].Start {
			return ranges[i].Start < ranges[j].Start
		}
		return ranges[i].Style < ranges[j].Style
	})
}

func sortEntityRanges(ranges []EntityRange) {
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
}
