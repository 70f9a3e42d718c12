package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/mention"
	"git.home.luguber.info/inful/draftmd/internal/server/responses"
)

// maxSuggestLimit caps the limit query parameter.
const maxSuggestLimit = 50

// MentionHandlers serve mention suggestions.
type MentionHandlers struct {
	registry     *mention.Registry
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMentionHandlers creates the mention handlers. A nil registry serves
// no suggestions.
func NewMentionHandlers(registry *mention.Registry) *MentionHandlers {
	if registry == nil {
		registry, _ = mention.New(nil)
	}
	return &MentionHandlers{registry: registry, errorAdapter: errors.NewHTTPErrorAdapter(slog.Default())}
}

// HandleSuggest returns mentions matching ?q=, at most ?limit= of them.
func (h *MentionHandlers) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.errorAdapter.WriteErrorResponse(w, r, errors.InputError("invalid limit").
				WithContext("limit", raw).
				Build())
			return
		}
		limit = min(n, maxSuggestLimit)
	}
	respond(w, r, h.errorAdapter, http.StatusOK, responses.MentionsResponse{Suggestions: h.registry.Suggest(q.Get("q"), limit)})
}
