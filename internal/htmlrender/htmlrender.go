// Package htmlrender displays documents as sanitized HTML.
//
// A document is exported to Markdown and rendered with goldmark. Mention
// links are rendered as <span class="mention"> elements (or anchors when the
// registry knows a profile link) instead of links to the private scheme. The
// result always passes through a bluemonday UGC policy.
package htmlrender

import (
	"bytes"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/markdown"
	"git.home.luguber.info/inful/draftmd/internal/mention"
)

// MentionClass is the class attribute of rendered mentions.
const MentionClass = "mention"

// Options configures a Renderer.
type Options struct {
	// Mentions resolves mention ids to profile links. Optional.
	Mentions *mention.Registry
}

// Renderer turns documents into HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New returns a renderer.
func New(opts Options) *Renderer {
	links := &linkRenderer{mentions: opts.Mentions}
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(links, 100)),
		),
	)
	return &Renderer{md: md, policy: newPolicy()}
}

// Render returns the sanitized HTML of doc.
func (r *Renderer) Render(doc *document.Document) (string, error) {
	return r.RenderMarkdown(markdown.Export(doc))
}

// RenderMarkdown renders Markdown source that uses the mention link scheme.
func (r *Renderer) RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "failed to render markdown").Build()
	}
	return r.policy.Sanitize(buf.String()), nil
}

// Render renders doc without a mention registry.
func Render(doc *document.Document) (string, error) {
	return New(Options{}).Render(doc)
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^`+MentionClass+`$`)).OnElements("span", "a")
	p.AllowAttrs("data-mention-id").Matching(regexp.MustCompile(`^\d+$`)).OnElements("span", "a")
	return p
}
