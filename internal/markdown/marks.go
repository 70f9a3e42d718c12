package markdown

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/entity"
)

// mark is the set of inline styles that have a Markdown form.
type mark uint8

const (
	markBold mark = 1 << iota
	markItalic
	markStrike
	markCode
)

// emphasis lists the nestable marks from outermost to innermost. Code is
// always innermost and literal, so it is not part of the stack.
var emphasis = []struct {
	mark      mark
	delimiter string
}{
	{markBold, "**"},
	{markItalic, "*"},
	{markStrike, "~~"},
}

func markOf(s document.Style) mark {
	switch s {
	case document.Bold:
		return markBold
	case document.Italic:
		return markItalic
	case document.Strikethrough:
		return markStrike
	case document.Code:
		return markCode
	}
	return 0
}

// renderInline writes the text of b with its styles and entities as Markdown.
//
// The block is cut at every point where the set of marks or the entity
// changes. Entities are outermost: emphasis is closed before an entity
// boundary and reopened inside it. Between cuts, marks still open are kept
// open when possible so that runs like **a *b* c** nest instead of being
// closed and reopened.
//
// Emphasis the parser would pair differently than written is dropped, span by
// span, until every delimiter pairs as intended. The result is then parsed
// back; if text, marks or entities still differ, emphasis is given up for the
// whole block, and code after it.
func renderInline(doc *document.Document, b document.Block) string {
	units := utf16.Encode([]rune(b.Text))
	if len(units) == 0 {
		return ""
	}
	marks := make([]mark, len(units))
	for _, r := range b.StyleRanges {
		m := markOf(r.Style)
		for i := max(r.Start, 0); i < min(r.End, len(units)); i++ {
			marks[i] |= m
		}
	}
	keys := make([]entity.Key, len(units))
	for _, r := range b.EntityRanges {
		if _, ok := doc.Entity(r.Key); !ok {
			continue
		}
		for i := max(r.Start, 0); i < min(r.End, len(units)); i++ {
			keys[i] = r.Key
		}
	}

	w := &markWriter{doc: doc, units: units, marks: marks, keys: keys, escapes: escapes(units, keys)}
	for start := 0; start < len(units); {
		end := start + 1
		for end < len(units) && keys[end] == keys[start] {
			end++
		}
		w.groups = append(w.groups, span{start, end})
		w.normalize(start, end)
		start = end
	}

	out := w.render()
	for bad := w.misparsed(out); len(bad) > 0; bad = w.misparsed(out) {
		for _, d := range bad {
			for i := d.from; i < d.to; i++ {
				w.marks[i] &^= d.mark
			}
		}
		out = w.render()
	}
	if w.faithful(out) {
		return out
	}
	w.clear(markBold | markItalic | markStrike)
	if out = w.render(); w.faithful(out) {
		return out
	}
	w.clear(markCode)
	return w.render()
}

func entityDestination(e entity.Entity) string {
	if m, ok := e.Mention(); ok {
		return MentionURL(m.MentionID)
	}
	link, _ := e.Link()
	return destination(link.URL)
}

type span struct{ start, end int }

// delim is one emphasis delimiter as written. from and to bound the units it
// delimits; on an opening delimiter to is known once it is closed.
type delim struct {
	mark       mark
	open       bool
	start, end int
	from, to   int
	pair       int
}

type openMark struct {
	mark  mark
	delim int
}

type markWriter struct {
	doc     *document.Document
	units   []uint16
	marks   []mark
	keys    []entity.Key
	groups  []span
	escapes map[int]string
	stack   []openMark
	delims  []delim
	out     strings.Builder
}

func (w *markWriter) render() string {
	w.out.Reset()
	w.stack = w.stack[:0]
	w.delims = w.delims[:0]
	for _, g := range w.groups {
		if w.keys[g.start] == 0 {
			w.content(g.start, g.end)
			continue
		}
		e, _ := w.doc.Entity(w.keys[g.start])
		w.out.WriteString("[")
		w.content(g.start, g.end)
		w.out.WriteString("](" + entityDestination(e) + ")")
	}
	return w.out.String()
}

func (w *markWriter) clear(m mark) {
	for i := range w.marks {
		w.marks[i] &^= m
	}
}

// normalize adjusts the marks of one entity group: emphasis never starts or
// ends on whitespace, and a code span carries only the emphasis shared by all
// of its characters.
func (w *markWriter) normalize(start, end int) {
	for _, em := range emphasis {
		for i := start; i < end; {
			if w.marks[i]&em.mark == 0 {
				i++
				continue
			}
			j := i
			for j < end && w.marks[j]&em.mark != 0 {
				j++
			}
			for k := i; k < j && w.blank(k); k++ {
				w.marks[k] &^= em.mark
			}
			for k := j - 1; k >= i && w.blank(k); k-- {
				w.marks[k] &^= em.mark
			}
			i = j
		}
	}

	for i := start; i < end; {
		if w.marks[i]&markCode == 0 {
			i++
			continue
		}
		j := i
		shared := w.marks[i]
		for j < end && w.marks[j]&markCode != 0 {
			shared &= w.marks[j]
			j++
		}
		for k := i; k < j; k++ {
			w.marks[k] = shared
		}
		i = j
	}
}

func (w *markWriter) blank(i int) bool {
	if w.marks[i]&markCode != 0 {
		return false
	}
	switch w.units[i] {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// content writes units [start,end) and closes every mark at the end.
func (w *markWriter) content(start, end int) {
	for i := start; i < end; {
		j := i + 1
		for j < end && w.marks[j] == w.marks[i] {
			j++
		}
		w.sync(i, end, w.marks[i]&^markCode)
		if w.marks[i]&markCode != 0 {
			w.out.WriteString(codeSpan(string(utf16.Decode(w.units[i:j]))))
		} else {
			w.plain(i, j)
		}
		i = j
	}
	w.sync(end, end, 0)
}

// sync closes and opens delimiters at unit at so that exactly the marks in
// want are open. The longest prefix of the open stack that is still wanted
// stays open. Marks are opened outermost first in order of how far they
// reach, so the longest one is closed last.
func (w *markWriter) sync(at, limit int, want mark) {
	keep := 0
	for keep < len(w.stack) && want&w.stack[keep].mark != 0 {
		keep++
	}
	for i := len(w.stack) - 1; i >= keep; i-- {
		o := w.stack[i]
		w.delims[o.delim].to = at
		w.write(delim{mark: o.mark, from: w.delims[o.delim].from, to: at, pair: o.delim})
	}
	w.stack = w.stack[:keep]

	var open mark
	for _, o := range w.stack {
		open |= o.mark
	}
	var missing []mark
	for _, em := range emphasis {
		if want&em.mark != 0 && open&em.mark == 0 {
			missing = append(missing, em.mark)
		}
	}
	slices.SortStableFunc(missing, func(a, b mark) int {
		return cmp.Compare(w.reach(at, limit, b), w.reach(at, limit, a))
	})
	for _, m := range missing {
		w.stack = append(w.stack, openMark{mark: m, delim: len(w.delims)})
		w.write(delim{mark: m, open: true, from: at, pair: -1})
	}
}

// reach returns the first unit at or after at, but before limit, that does
// not carry m.
func (w *markWriter) reach(at, limit int, m mark) int {
	for at < limit && w.marks[at]&m != 0 {
		at++
	}
	return at
}

func (w *markWriter) write(d delim) {
	d.start = w.out.Len()
	w.out.WriteString(delimiter(d.mark))
	d.end = w.out.Len()
	if !d.open {
		w.delims[d.pair].pair = len(w.delims)
	}
	w.delims = append(w.delims, d)
}

func (w *markWriter) plain(start, end int) {
	var pending []uint16
	flush := func() {
		if len(pending) > 0 {
			w.out.WriteString(string(utf16.Decode(pending)))
			pending = pending[:0]
		}
	}
	for i := start; i < end; i++ {
		esc, ok := w.escapes[i]
		if !ok && w.units[i] == '_' && (!isWord(runeBefore(w.units, start, i)) || !isWord(runeAt(w.units, i+1, end))) {
			esc, ok = `\_`, true
		}
		if ok {
			flush()
			w.out.WriteString(esc)
			continue
		}
		pending = append(pending, w.units[i])
	}
	flush()
}

// delimiterRun is a maximal sequence of adjacent delimiters of one character,
// which the parser treats as a single run.
type delimiterRun struct {
	first, last int
	char        byte
	length      int
	left, right flank
}

// flank records whether a run is left- or right-flanking under some and
// under every reading of its neighbours.
type flank struct{ possible, certain bool }

func flanking(before, after rune) (left, right flank) {
	left.certain, right.certain = true, true
	for _, b := range []uint8{classSpace, classPunct, classOther} {
		if classes(before)&b == 0 {
			continue
		}
		for _, a := range []uint8{classSpace, classPunct, classOther} {
			if classes(after)&a == 0 {
				continue
			}
			l := a != classSpace && (a != classPunct || b == classSpace || b == classPunct)
			r := b != classSpace && (b != classPunct || a == classSpace || a == classPunct)
			left.possible, left.certain = left.possible || l, left.certain && l
			right.possible, right.certain = right.possible || r, right.certain && r
		}
	}
	return left, right
}

func (w *markWriter) runs(out string) ([]delimiterRun, []int) {
	var runs []delimiterRun
	runOf := make([]int, len(w.delims))
	for i, d := range w.delims {
		c := delimiter(d.mark)[0]
		if n := len(runs); n > 0 && runs[n-1].char == c && w.delims[runs[n-1].last].end == d.start {
			runs[n-1].last = i
			runs[n-1].length += d.end - d.start
		} else {
			runs = append(runs, delimiterRun{first: i, last: i, char: c, length: d.end - d.start})
		}
		runOf[i] = len(runs) - 1
	}
	for i := range runs {
		r := &runs[i]
		before, n := utf8.DecodeLastRuneInString(out[:w.delims[r.first].start])
		if n == 0 {
			before = 0
		}
		after, n := utf8.DecodeRuneInString(out[w.delims[r.last].end:])
		if n == 0 {
			after = 0
		}
		r.left, r.right = flanking(before, after)
	}
	return runs, runOf
}

// misparsed replays the delimiter runs of out the way a CommonMark parser
// pairs them and returns the delimiters of every run that would not pair as
// written. The check is conservative: a run is accepted only if it pairs as
// intended under every reading of its neighbours.
func (w *markWriter) misparsed(out string) []delim {
	runs, runOf := w.runs(out)
	open := map[byte]int{}
	var bad []delim
	for _, r := range runs {
		var closers, openers int
		ok := r.char != '~' || r.length == 2
		for i := r.first; i <= r.last; i++ {
			d := w.delims[i]
			if d.open {
				openers++
				continue
			}
			closers++
			// The rule of three: runs that may both open and close cannot
			// pair when their lengths add up to a multiple of three.
			opener := runs[runOf[d.pair]]
			if (opener.right.possible || r.left.possible) && (opener.length+r.length)%3 == 0 && r.length%3 != 0 {
				ok = false
			}
		}
		switch {
		case closers > 0 && !r.right.certain, openers > 0 && !r.left.certain:
			ok = false
		case closers > 0 && openers > 0 && open[r.char] != closers:
			ok = false
		case closers == 0 && open[r.char] > 0 && r.right.possible:
			ok = false
		}
		if !ok {
			bad = append(bad, w.delims[r.first:r.last+1]...)
		}
		open[r.char] += openers - closers
	}
	return bad
}

// faithful reports whether out parses back to exactly the text, marks and
// entities being written.
func (w *markWriter) faithful(out string) bool {
	back := Import(out)
	if back.BlockCount() != 1 {
		return false
	}
	b := back.BlockAt(0)
	if b.Type != document.Unstyled || b.Text != string(utf16.Decode(w.units)) {
		return false
	}
	marks := make([]mark, len(w.units))
	for _, r := range b.StyleRanges {
		for i := max(r.Start, 0); i < min(r.End, len(marks)); i++ {
			marks[i] |= markOf(r.Style)
		}
	}
	if !slices.Equal(marks, w.marks) {
		return false
	}

	var want []document.EntityRange
	for _, g := range w.groups {
		if w.keys[g.start] != 0 {
			want = append(want, document.EntityRange{Start: g.start, End: g.end, Key: w.keys[g.start]})
		}
	}
	if len(want) != len(b.EntityRanges) {
		return false
	}
	for i, r := range b.EntityRanges {
		e, _ := w.doc.Entity(want[i].Key)
		got, _ := back.Entity(r.Key)
		if r.Start != want[i].Start || r.End != want[i].End || e.Type() != got.Type() || e.Data() != got.Data() {
			return false
		}
	}
	return true
}

func delimiter(m mark) string {
	for _, em := range emphasis {
		if em.mark == m {
			return em.delimiter
		}
	}
	return ""
}

// codeSpan wraps s in a backtick string longer than any run inside it,
// padding with spaces where the parser would otherwise eat characters.
func codeSpan(s string) string {
	fence := strings.Repeat("`", longestRun(s, '`')+1)
	pad := ""
	switch {
	case strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`"):
		pad = " "
	case strings.HasPrefix(s, " ") && strings.HasSuffix(s, " ") && strings.Trim(s, " ") != "":
		pad = " "
	}
	return fence + pad + s + pad + fence
}
