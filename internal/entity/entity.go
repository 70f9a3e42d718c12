// Package entity defines the typed annotations that documents attach to text
// ranges: links and user mentions.
//
// Entity data is a tagged union: each entity type has its own data struct and
// New checks that the two agree, so callers never look data up by string key.
package entity

import (
	stderrors "errors"
	"fmt"
	"strconv"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// ErrInvalidEntityData is matched (errors.Is) by every schema violation.
var ErrInvalidEntityData = stderrors.New("invalid entity data")

// Type names the kind of an entity. The values are the wire names used by the
// editor engine's raw content.
type Type string

const (
	TypeLink    Type = "LINK"
	TypeMention Type = "mention"
)

// Mutability is the edit discipline of an entity span.
type Mutability string

const (
	// Mutable spans may grow and shrink character by character.
	Mutable Mutability = "MUTABLE"
	// Segmented spans are kept or removed as a whole; they are never split.
	Segmented Mutability = "SEGMENTED"
	// Immutable is part of the schema but unused by the current entity types.
	Immutable Mutability = "IMMUTABLE"
)

// Valid reports whether m is one of the known mutabilities.
func (m Mutability) Valid() bool {
	switch m {
	case Mutable, Segmented, Immutable:
		return true
	}
	return false
}

// Atomic reports whether spans with this mutability must never be split.
func (m Mutability) Atomic() bool {
	return m == Segmented || m == Immutable
}

// Key identifies an entity inside one document. Keys start at 1.
type Key int

func (k Key) String() string { return strconv.Itoa(int(k)) }

// Data is the payload of an entity. It is implemented by LinkData and MentionData.
type Data interface {
	entityType() Type
}

// LinkData carries the destination of a link. URL may be empty.
type LinkData struct {
	URL string
}

func (LinkData) entityType() Type { return TypeLink }

// MentionData references a user by id.
type MentionData struct {
	MentionID int64
}

func (MentionData) entityType() Type { return TypeMention }

// Entity is an immutable, schema-checked annotation.
type Entity struct {
	typ        Type
	mutability Mutability
	data       Data
}

// New validates data against typ and returns the entity. Inputs are built
// internally, so a failure here is a programming error.
func New(typ Type, mutability Mutability, data Data) (Entity, error) {
	if !mutability.Valid() {
		return Entity{}, invalid(typ, fmt.Sprintf("unknown mutability %q", mutability))
	}
	switch typ {
	case TypeLink:
		if _, ok := data.(LinkData); !ok {
			return Entity{}, invalid(typ, fmt.Sprintf("expected link data, got %T", data))
		}
	case TypeMention:
		if _, ok := data.(MentionData); !ok {
			return Entity{}, invalid(typ, fmt.Sprintf("expected mention data, got %T", data))
		}
	default:
		return Entity{}, invalid(typ, "unknown entity type")
	}
	return Entity{typ: typ, mutability: mutability, data: data}, nil
}

// NewLink returns a mutable link entity.
func NewLink(url string) Entity {
	return Entity{typ: TypeLink, mutability: Mutable, data: LinkData{URL: url}}
}

// NewMention returns a segmented mention entity.
func NewMention(id int64) Entity {
	return Entity{typ: TypeMention, mutability: Segmented, data: MentionData{MentionID: id}}
}

func (e Entity) Type() Type             { return e.typ }
func (e Entity) Mutability() Mutability { return e.mutability }
func (e Entity) Data() Data             { return e.data }

// IsZero reports whether e was never constructed.
func (e Entity) IsZero() bool { return e.typ == "" }

// Link returns the link payload when e is a link.
func (e Entity) Link() (LinkData, bool) {
	d, ok := e.data.(LinkData)
	return d, ok
}

// Mention returns the mention payload when e is a mention.
func (e Entity) Mention() (MentionData, bool) {
	d, ok := e.data.(MentionData)
	return d, ok
}

func invalid(typ Type, reason string) error {
	return errors.WrapError(ErrInvalidEntityData, errors.CategoryValidation, "invalid entity data").
		Fatal().
		WithContext("entity_type", string(typ)).
		WithContext("reason", reason).
		Build()
}
