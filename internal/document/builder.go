package document

import (
	"git.home.luguber.info/inful/draftmd/internal/entity"
)

// Builder assembles a document block by block. The importer and the raw
// decoder use it; the result is validated by Build.
type Builder struct {
	blocks   []Block
	entities map[entity.Key]entity.Entity
	next     entity.Key
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{entities: map[entity.Key]entity.Entity{}, next: 1}
}

// RegisterEntity adds e to the entity table and returns its key.
func (b *Builder) RegisterEntity(e entity.Entity) entity.Key {
	key := b.next
	b.entities[key] = e
	b.next++
	return key
}

// AppendBlock adds a block at the end. A missing key is generated.
func (b *Builder) AppendBlock(block Block) {
	block = block.clone()
	if block.Key == "" {
		block.Key = NewBlockKey()
	}
	if block.Type == "" {
		block.Type = Unstyled
	}
	b.blocks = append(b.blocks, block)
}

// Len returns the number of appended blocks.
func (b *Builder) Len() int { return len(b.blocks) }

// Build validates and returns the document. Without blocks it returns the
// empty document.
func (b *Builder) Build() (*Document, error) {
	blocks := b.blocks
	if len(blocks) == 0 {
		blocks = []Block{{Key: NewBlockKey(), Type: Unstyled}}
	}
	entities := make(map[entity.Key]entity.Entity, len(b.entities))
	for k, v := range b.entities {
		entities[k] = v
	}
	doc := &Document{
		blocks:   append([]Block(nil), blocks...),
		entities: entities,
		nextKey:  b.next,
	}
	for i := range doc.blocks {
		normalizeRanges(&doc.blocks[i])
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalizeRanges sorts ranges into canonical order.
func normalizeRanges(b *Block) {
	sortStyleRanges(b.StyleRanges)
	sortEntityRanges(b.EntityRanges)
}
