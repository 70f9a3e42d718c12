package htmlrender

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

// LinkKind tells links and mentions apart in rendered HTML.
type LinkKind string

const (
	KindLink    LinkKind = "link"
	KindMention LinkKind = "mention"
)

// Link is a link or mention found in rendered HTML.
type Link struct {
	Kind      LinkKind `json:"kind"`
	Href      string   `json:"href,omitempty"`
	MentionID int64    `json:"mentionId,omitempty"`
	Text      string   `json:"text"`
}

// ExtractLinks lists the anchors and mention spans of rendered HTML in
// document order.
func ExtractLinks(src string) ([]Link, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if l, ok := linkOf(n); ok {
				links = append(links, l)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return links, nil
}

func linkOf(n *html.Node) (Link, bool) {
	if n.Data != "a" && n.Data != "span" {
		return Link{}, false
	}
	if attr(n, "class") == MentionClass {
		id, err := strconv.ParseInt(attr(n, "data-mention-id"), 10, 64)
		if err == nil {
			return Link{Kind: KindMention, Href: attr(n, "href"), MentionID: id, Text: text(n)}, true
		}
	}
	if n.Data == "a" {
		return Link{Kind: KindLink, Href: attr(n, "href"), Text: text(n)}, true
	}
	return Link{}, false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
