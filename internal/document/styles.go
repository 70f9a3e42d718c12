package document

// SetBlockType changes the type of every block touched by the selection. When
// the first selected block already has the type, the blocks revert to
// unstyled. Blocks that stop being list items lose their depth.
func (d *Document) SetBlockType(sel Selection, t BlockType) (*Document, error) {
	start, end, err := d.bounds(sel)
	if err != nil {
		return nil, err
	}
	if d.blocks[start.index].Type == t {
		t = Unstyled
	}
	out := d.shallow()
	for i := start.index; i <= end.index; i++ {
		b := out.blocks[i].clone()
		b.Type = t
		if !t.IsListItem() {
			b.Depth = 0
		}
		if t != CodeBlock {
			delete(b.Data, DataLanguage)
		}
		out.blocks[i] = b
	}
	return out, nil
}

// ToggleInlineStyle removes style from the selection when every selected
// character already has it and adds it otherwise. A collapsed selection
// changes nothing.
func (d *Document) ToggleInlineStyle(sel Selection, style Style) (*Document, error) {
	start, end, err := d.bounds(sel)
	if err != nil {
		return nil, err
	}
	if start == end {
		return d, nil
	}

	all := true
	d.scanUnits(start, end, func(u unit) {
		if !hasStyle(u.styles, style) {
			all = false
		}
	})

	out := d.shallow()
	out.mapUnits(start, end, func(u unit) unit {
		if all {
			u.styles = withoutStyle(u.styles, style)
		} else {
			u.styles = withStyle(u.styles, style)
		}
		return u
	})
	return out, nil
}

// AdjustDepth changes the nesting depth of the selected list items by delta,
// keeping it within [0, maxDepth]. A selection spanning several blocks moves
// every list item in it, not only the one holding the caret. The first
// selected block decides whether anything happens: if it is not a list item,
// or indenting would push it past maxDepth, the document is returned
// unchanged. Blocks that are not list items are never touched.
func (d *Document) AdjustDepth(sel Selection, delta, maxDepth int) (*Document, error) {
	start, end, err := d.bounds(sel)
	if err != nil {
		return nil, err
	}
	first := d.blocks[start.index]
	if !first.Type.IsListItem() || (delta > 0 && first.Depth >= maxDepth) {
		return d, nil
	}
	out := d.shallow()
	for i := start.index; i <= end.index; i++ {
		b := out.blocks[i]
		if !b.Type.IsListItem() {
			continue
		}
		b = b.clone()
		b.Depth = clamp(b.Depth+delta, 0, maxDepth)
		out.blocks[i] = b
	}
	return out, nil
}
