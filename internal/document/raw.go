package document

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"git.home.luguber.info/inful/draftmd/internal/entity"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// Raw is the JSON form exchanged with the browser engine (its convertToRaw
// layout).
type Raw struct {
	Blocks    []RawBlock           `json:"blocks"`
	EntityMap map[string]RawEntity `json:"entityMap"`
}

type RawBlock struct {
	Key               string           `json:"key"`
	Text              string           `json:"text"`
	Type              string           `json:"type"`
	Depth             int              `json:"depth"`
	InlineStyleRanges []RawStyleRange  `json:"inlineStyleRanges"`
	EntityRanges      []RawEntityRange `json:"entityRanges"`
	Data              map[string]any   `json:"data"`
}

type RawStyleRange struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Style  string `json:"style"`
}

type RawEntityRange struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
	Key    int `json:"key"`
}

type RawEntity struct {
	Type       string         `json:"type"`
	Mutability string         `json:"mutability"`
	Data       map[string]any `json:"data"`
}

// ToRaw converts d to its raw form. Every registered entity is included.
func (d *Document) ToRaw() Raw {
	raw := Raw{
		Blocks:    make([]RawBlock, 0, len(d.blocks)),
		EntityMap: make(map[string]RawEntity, len(d.entities)),
	}
	for _, b := range d.blocks {
		rb := RawBlock{
			Key:               b.Key,
			Text:              b.Text,
			Type:              string(b.Type),
			Depth:             b.Depth,
			InlineStyleRanges: make([]RawStyleRange, 0, len(b.StyleRanges)),
			EntityRanges:      make([]RawEntityRange, 0, len(b.EntityRanges)),
			Data:              map[string]any{},
		}
		for _, r := range b.StyleRanges {
			rb.InlineStyleRanges = append(rb.InlineStyleRanges, RawStyleRange{Offset: r.Start, Length: r.End - r.Start, Style: string(r.Style)})
		}
		for _, r := range b.EntityRanges {
			rb.EntityRanges = append(rb.EntityRanges, RawEntityRange{Offset: r.Start, Length: r.End - r.Start, Key: int(r.Key)})
		}
		for k, v := range b.Data {
			rb.Data[k] = v
		}
		raw.Blocks = append(raw.Blocks, rb)
	}
	for k, e := range d.entities {
		raw.EntityMap[k.String()] = RawEntity{
			Type:       string(e.Type()),
			Mutability: string(e.Mutability()),
			Data:       e.Encode(),
		}
	}
	return raw
}

// FromRaw decodes and validates a raw document. Raw entity keys are
// renumbered from 1 in ascending order, so raw forms produced by ToRaw keep
// their keys. Non-string block data values are dropped.
func FromRaw(raw Raw) (*Document, error) {
	rawKeys := make([]int, 0, len(raw.EntityMap))
	for k := range raw.EntityMap {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, errors.ValidationError("invalid raw document").
				WithContext("reason", fmt.Sprintf("entity key %q is not an integer", k)).
				Build()
		}
		rawKeys = append(rawKeys, n)
	}
	sort.Ints(rawKeys)

	b := NewBuilder()
	keys := make(map[int]entity.Key, len(rawKeys))
	for _, n := range rawKeys {
		re := raw.EntityMap[strconv.Itoa(n)]
		e, err := entity.Decode(re.Type, re.Mutability, re.Data)
		if err != nil {
			return nil, err
		}
		keys[n] = b.RegisterEntity(e)
	}

	for _, rb := range raw.Blocks {
		block := Block{
			Key:   rb.Key,
			Type:  BlockType(rb.Type),
			Text:  rb.Text,
			Depth: rb.Depth,
		}
		for _, r := range rb.InlineStyleRanges {
			block.StyleRanges = append(block.StyleRanges, StyleRange{Start: r.Offset, End: r.Offset + r.Length, Style: Style(r.Style)})
		}
		for _, r := range rb.EntityRanges {
			k, ok := keys[r.Key]
			if !ok {
				return nil, errors.ValidationError("invalid raw document").
					WithContext("reason", fmt.Sprintf("entity key %d is not in the entity map", r.Key)).
					WithContext("block_key", rb.Key).
					Build()
			}
			block.EntityRanges = append(block.EntityRanges, EntityRange{Start: r.Offset, End: r.Offset + r.Length, Key: k})
		}
		for k, v := range rb.Data {
			if s, ok := v.(string); ok {
				if block.Data == nil {
					block.Data = map[string]string{}
				}
				block.Data[k] = s
			}
		}
		if block.Key == "" {
			return nil, errors.ValidationError("invalid raw document").
				WithContext("reason", "block key is empty").
				Build()
		}
		b.AppendBlock(block)
	}
	return b.Build()
}

// MarshalJSON encodes the document in its raw form.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToRaw())
}

// UnmarshalJSON decodes a raw form into d.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid raw document").Build()
	}
	doc, err := FromRaw(raw)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}
