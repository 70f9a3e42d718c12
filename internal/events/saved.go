package events

import (
	"slices"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/entity"
	"git.home.luguber.info/inful/draftmd/internal/store"
)

// NewDocumentSaved describes a stored revision. Only entities referenced
// by some block are counted; mention ids are sorted and unique.
func NewDocumentSaved(saved store.Document, doc *document.Document) DocumentSaved {
	ev := DocumentSaved{
		DocumentID:  saved.ID,
		Revision:    saved.Revision,
		Fingerprint: saved.Fingerprint,
		Blocks:      doc.BlockCount(),
		SavedAt:     saved.UpdatedAt,
	}
	seen := map[entity.Key]bool{}
	for _, b := range doc.Blocks() {
		for _, r := range b.EntityRanges {
			if seen[r.Key] {
				continue
			}
			seen[r.Key] = true
			e, ok := doc.Entity(r.Key)
			if !ok {
				continue
			}
			if _, ok := e.Link(); ok {
				ev.Links++
			}
			if m, ok := e.Mention(); ok && !slices.Contains(ev.Mentions, m.MentionID) {
				ev.Mentions = append(ev.Mentions, m.MentionID)
			}
		}
	}
	slices.Sort(ev.Mentions)
	return ev
}
