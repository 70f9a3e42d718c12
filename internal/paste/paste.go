package paste

import (
	"strings"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/entity"
	"git.home.luguber.info/inful/draftmd/internal/foundation"
)

// URLMode selects the URL stored in the link entity of a URL segment.
type URLMode string

const (
	// URLModeMatch stores the matched URL.
	URLModeMatch URLMode = "match"
	// URLModePastedText stores the whole pasted text for every link, as the
	// first editor release did.
	URLModePastedText URLMode = "pasted-text"
)

var urlModes = foundation.NewNormalizer(map[string]URLMode{
	"match":       URLModeMatch,
	"pasted-text": URLModePastedText,
	"pasted_text": URLModePastedText,
}, URLModeMatch)

// ParseURLMode normalizes a configured mode name. Unknown names are an error.
func ParseURLMode(raw string) (URLMode, error) {
	return urlModes.NormalizeWithError(raw)
}

// Options configures a Detector.
type Options struct {
	URLMode URLMode
}

// Detector handles paste events.
type Detector struct {
	mode URLMode
}

// NewDetector returns a detector. The zero Options use URLModeMatch.
func NewDetector(opts Options) *Detector {
	mode := opts.URLMode
	if mode == "" {
		mode = URLModeMatch
	}
	return &Detector{mode: mode}
}

// Change describes one insertion performed by a paste.
type Change struct {
	Type document.ChangeType `json:"type"`
	Text string              `json:"text"`
	URL  string              `json:"url,omitempty"`
}

// Result is the outcome of HandlePaste. When Handled is false the caller
// inserts the text itself and Document is nil.
type Result struct {
	Handled   bool
	Document  *document.Document
	Selection document.Selection
	Changes   []Change
}

// HandlePaste inserts text at sel when it contains at least one URL. A
// non-collapsed selection is replaced. Segments are inserted in order at a
// running caret; URL segments get a new link entity, plain segments are
// inserted without styles or entities. Line breaks stay inside the block.
//
// The only error is a selection that references an unknown block.
func (d *Detector) HandlePaste(text string, doc *document.Document, sel document.Selection) (Result, error) {
	if _, _, err := doc.Bounds(sel); err != nil {
		return Result{}, err
	}
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	segments := Scan(normalized)
	if !HasURL(segments) {
		return Result{Handled: false}, nil
	}

	next, caret, err := doc.RemoveRange(sel)
	if err != nil {
		return Result{}, err
	}
	changes := make([]Change, 0, len(segments))
	for _, seg := range segments {
		var key entity.Key
		change := Change{Type: document.ChangeInsertText, Text: seg.Text}
		if seg.Kind == URLSegment {
			change.Type = document.ChangeInsertLink
			change.URL = seg.Text
			if d.mode == URLModePastedText {
				change.URL = text
			}
			next, key = next.WithEntity(entity.NewLink(change.URL))
		}
		next, caret, err = next.InsertText(caret, seg.Text, nil, key)
		if err != nil {
			return Result{}, err
		}
		changes = append(changes, change)
	}
	return Result{Handled: true, Document: next, Selection: caret, Changes: changes}, nil
}
