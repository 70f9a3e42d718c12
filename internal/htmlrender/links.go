package htmlrender

import (
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/draftmd/internal/markdown"
	"git.home.luguber.info/inful/draftmd/internal/mention"
)

// linkRenderer replaces goldmark's link rendering so mention destinations
// never reach the output as hrefs.
type linkRenderer struct {
	mentions *mention.Registry
}

func (r *linkRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindLink, r.renderLink)
}

func (r *linkRenderer) renderLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if id, ok := markdown.ParseMentionURL(string(n.Destination)); ok {
		r.renderMention(w, id, entering)
		return ast.WalkContinue, nil
	}
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<a href="`)
	if !html.IsDangerousURL(n.Destination) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	}
	_ = w.WriteByte('"')
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	return ast.WalkContinue, nil
}

func (r *linkRenderer) renderMention(w util.BufWriter, id int64, entering bool) {
	href := r.mentionHref(id)
	if !entering {
		if href != nil {
			_, _ = w.WriteString("</a>")
		} else {
			_, _ = w.WriteString("</span>")
		}
		return
	}
	attrs := ` class="` + MentionClass + `" data-mention-id="` + strconv.FormatInt(id, 10) + `"`
	if href != nil {
		_, _ = w.WriteString(`<a href="`)
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(href, true)))
		_, _ = w.WriteString(`"` + attrs + `>`)
		return
	}
	_, _ = w.WriteString(`<span` + attrs + `>`)
}

// mentionHref returns the profile link of a registered mention, or nil.
func (r *linkRenderer) mentionHref(id int64) []byte {
	if r.mentions == nil {
		return nil
	}
	m, ok := r.mentions.Lookup(id)
	if !ok || m.Link == "" || html.IsDangerousURL([]byte(m.Link)) {
		return nil
	}
	return []byte(m.Link)
}
