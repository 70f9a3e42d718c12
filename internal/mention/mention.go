// Package mention provides the users that can be mentioned in a document.
//
// A Registry is loaded from YAML and answers two questions: who is user N
// (when rendering a `_user_:N` link) and which users match what was typed
// after the mention trigger.
package mention

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// DefaultSuggestLimit is the number of suggestions returned when the caller
// passes a limit <= 0.
const DefaultSuggestLimit = 5

// Mention is one user that can be mentioned.
type Mention struct {
	ID          int64  `yaml:"id" json:"id"`
	DisplayName string `yaml:"displayName" json:"displayName"`
	Link        string `yaml:"link,omitempty" json:"link,omitempty"`
	Avatar      string `yaml:"avatar,omitempty" json:"avatar,omitempty"`
}

type file struct {
	Mentions []Mention `yaml:"mentions"`
}

// Registry is an immutable set of mentions kept in load order.
type Registry struct {
	list   []Mention
	byID   map[int64]int
	folded []string
}

// New validates entries and builds a registry. IDs must be positive and
// unique; display names must be non-empty.
func New(entries []Mention) (*Registry, error) {
	r := &Registry{
		list: make([]Mention, 0, len(entries)),
		byID: make(map[int64]int, len(entries)),
	}
	caser := cases.Fold()
	for i, m := range entries {
		m.DisplayName = strings.TrimSpace(m.DisplayName)
		switch {
		case m.ID <= 0:
			return nil, invalidEntry(i, "id must be positive")
		case m.DisplayName == "":
			return nil, invalidEntry(i, "displayName is required")
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, invalidEntry(i, "duplicate id").WithContext("mention_id", m.ID)
		}
		r.byID[m.ID] = len(r.list)
		r.list = append(r.list, m)
		r.folded = append(r.folded, caser.String(m.DisplayName))
	}
	return r, nil
}

// Parse decodes a YAML registry:
//
//	mentions:
//	  - id: 42
//	    displayName: Alice
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse mention registry").Build()
	}
	return New(f.Mentions)
}

// Load reads a registry file. Environment variables in the file are
// expanded before parsing.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read mention registry").
			WithContext("path", path).
			Build()
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Len returns the number of mentions.
func (r *Registry) Len() int { return len(r.list) }

// All returns every mention in load order.
func (r *Registry) All() []Mention { return slices.Clone(r.list) }

// Lookup returns the mention with the given id.
func (r *Registry) Lookup(id int64) (Mention, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Mention{}, false
	}
	return r.list[i], true
}

// Suggest returns up to limit mentions whose display name contains query,
// compared case-insensitively, in load order. An empty query matches every
// mention.
func (r *Registry) Suggest(query string, limit int) []Mention {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	// Casers keep state, so each call gets its own.
	q := cases.Fold().String(strings.TrimSpace(query))
	out := make([]Mention, 0, min(limit, len(r.list)))
	for i, name := range r.folded {
		if len(out) == limit {
			break
		}
		if strings.Contains(name, q) {
			out = append(out, r.list[i])
		}
	}
	return out
}

func invalidEntry(index int, reason string) *errors.ClassifiedError {
	return errors.ConfigError("invalid mention entry").
		WithContext("index", index).
		WithContext("reason", reason).
		Build()
}
