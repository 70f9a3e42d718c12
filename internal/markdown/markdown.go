// Package markdown converts documents to Markdown and back.
//
// User mentions travel as ordinary inline links whose destination uses the
// private scheme "_user_:<id>", for example [Alice](_user_:42). Everything
// else that looks like a link becomes a LINK entity.
package markdown

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MentionScheme prefixes the destination of mention links.
const MentionScheme = "_user_:"

var mentionDestination = regexp.MustCompile(`^_user_:(\d+)$`)

// MentionURL returns the link destination encoding a mention of id.
func MentionURL(id int64) string {
	return fmt.Sprintf("%s%d", MentionScheme, id)
}

// ParseMentionURL extracts the mention id from a link destination. The scheme
// is case-sensitive and the id must be a plain decimal integer.
func ParseMentionURL(dest string) (int64, bool) {
	m := mentionDestination.FindStringSubmatch(dest)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func newParser() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
}
