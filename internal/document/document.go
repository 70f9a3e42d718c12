package document

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/draftmd/internal/entity"
)

// Document is an immutable rich-text document.
type Document struct {
	blocks   []Block
	entities map[entity.Key]entity.Entity
	nextKey  entity.Key
}

// New returns an empty document: one unstyled block without text.
func New() *Document {
	return &Document{
		blocks:   []Block{{Key: NewBlockKey(), Type: Unstyled}},
		entities: map[entity.Key]entity.Entity{},
		nextKey:  1,
	}
}

// Blocks returns a copy of the blocks in document order.
func (d *Document) Blocks() []Block {
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b.clone()
	}
	return out
}

// BlockCount returns the number of blocks. It is never zero.
func (d *Document) BlockCount() int { return len(d.blocks) }

// BlockAt returns a copy of the i-th block.
func (d *Document) BlockAt(i int) Block { return d.blocks[i].clone() }

// Block returns a copy of the block with the given key.
func (d *Document) Block(key string) (Block, bool) {
	i := d.indexOf(key)
	if i < 0 {
		return Block{}, false
	}
	return d.blocks[i].clone(), true
}

// Entity returns the entity registered under key.
func (d *Document) Entity(key entity.Key) (entity.Entity, bool) {
	e, ok := d.entities[key]
	return e, ok
}

// EntityKeys returns all registered keys in ascending order, including keys
// no block references any more.
func (d *Document) EntityKeys() []entity.Key {
	keys := make([]entity.Key, 0, len(d.entities))
	for k := range d.entities {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// NextEntityKey is the key the next registered entity will receive.
func (d *Document) NextEntityKey() entity.Key { return d.nextKey }

// WithEntity registers e and returns the new document and the assigned key.
func (d *Document) WithEntity(e entity.Entity) (*Document, entity.Key) {
	out := d.shallow()
	out.entities = make(map[entity.Key]entity.Entity, len(d.entities)+1)
	for k, v := range d.entities {
		out.entities[k] = v
	}
	key := out.nextKey
	out.entities[key] = e
	out.nextKey++
	return out, key
}

// HasText reports whether the document holds any content. A document with
// more than one block counts as having text.
func (d *Document) HasText() bool {
	if len(d.blocks) > 1 {
		return true
	}
	return strings.ReplaceAll(d.blocks[0].Text, "\u200b", "") != ""
}

// HidePlaceholder reports whether an editor should hide its placeholder: the
// document is empty but its first block was already given a type.
func (d *Document) HidePlaceholder() bool {
	return !d.HasText() && d.blocks[0].Type != Unstyled
}

// PlainText joins the block texts with newlines.
func (d *Document) PlainText() string {
	texts := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		texts[i] = b.Text
	}
	return strings.Join(texts, "\n")
}

func (d *Document) indexOf(key string) int {
	for i, b := range d.blocks {
		if b.Key == key {
			return i
		}
	}
	return -1
}

// shallow copies the block slice; blocks themselves are replaced, never
// mutated, so sharing their range slices is safe.
func (d *Document) shallow() *Document {
	return &Document{
		blocks:   append([]Block(nil), d.blocks...),
		entities: d.entities,
		nextKey:  d.nextKey,
	}
}
