package markdown

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"git.home.luguber.info/inful/draftmd/internal/entity"
)

// characterReference matches the HTML entity and numeric references the
// parser would decode.
var characterReference = regexp.MustCompile(`^&(?:#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6}|[A-Za-z][A-Za-z0-9]{1,31});`)

// escapes returns, for every UTF-16 unit of a block's text that needs it, the
// Markdown that reproduces the character literally. Escaping is decided on the
// whole block so that line-start rules see real line starts. Underscores
// depend on the surrounding delimiters and are decided while writing.
func escapes(units []uint16, keys []entity.Key) map[int]string {
	out := map[int]string{}
	at := func(i int) uint16 {
		if i < 0 || i >= len(units) {
			return 0
		}
		return units[i]
	}

	for i, c := range units {
		switch c {
		case '\\', '`', '*', '[', ']', '<', '~':
			out[i] = `\` + string(rune(c))
		case '!':
			if i+1 < len(keys) && keys[i+1] != 0 && keys[i+1] != keys[i] {
				out[i] = `\!`
			}
		case '#':
			if p := at(i - 1); p == 0 || p == ' ' || p == '\t' || p == '\n' {
				out[i] = `\#`
			}
		case '&':
			if characterReference.MatchString(string(utf16Tail(units[i:], 40))) {
				out[i] = `\&`
			}
		case '\r':
			out[i] = "&#13;"
		case '\n':
			// A line break that would leave an empty line ends the paragraph.
			if i == 0 || i == len(units)-1 || units[i-1] == '\n' {
				out[i] = "&#10;"
			}
		}
	}

	for start := 0; start <= len(units); {
		end := start
		for end < len(units) && units[end] != '\n' {
			end++
		}
		i := start
		for i < end && (units[i] == ' ' || units[i] == '\t') {
			out[i] = blankReference(units[i])
			i++
		}
		if i < end {
			switch units[i] {
			case '-', '+', '=', '>':
				out[i] = `\` + string(rune(units[i]))
			default:
				j := i
				for j < end && units[j] >= '0' && units[j] <= '9' {
					j++
				}
				if j > i && j-i <= 9 && j < end && (units[j] == '.' || units[j] == ')') {
					out[j] = `\` + string(rune(units[j]))
				}
			}
		}
		for k := end - 1; k >= i && (units[k] == ' ' || units[k] == '\t'); k-- {
			out[k] = blankReference(units[k])
		}
		start = end + 1
	}
	return out
}

func blankReference(c uint16) string {
	if c == '\t' {
		return "&#9;"
	}
	return "&#32;"
}

// Character classes as the emphasis rules see them. Non-ASCII symbols and
// some spaces are classified differently across CommonMark versions, so a
// rune may belong to more than one class.
const (
	classSpace uint8 = 1 << iota
	classPunct
	classOther
)

func classes(r rune) uint8 {
	switch {
	case r == 0:
		return classSpace
	case r < utf8.RuneSelf:
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\v' || r == '\f' || r == '\r':
			return classSpace
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			return classPunct
		}
		return classOther
	case unicode.Is(unicode.Zs, r):
		return classSpace
	case unicode.IsSpace(r):
		return classSpace | classOther
	case unicode.IsPunct(r):
		return classPunct
	case unicode.IsSymbol(r):
		return classPunct | classOther
	}
	return classOther
}

// isWord reports whether r is neither space nor punctuation under any
// reading of the rules.
func isWord(r rune) bool {
	return classes(r) == classOther
}

// runeBefore decodes the character ending just before unit i, never looking
// before unit from. It returns 0 at the edge.
func runeBefore(units []uint16, from, i int) rune {
	if i <= from {
		return 0
	}
	if i-2 >= from && utf16.IsSurrogate(rune(units[i-1])) {
		if r := utf16.DecodeRune(rune(units[i-2]), rune(units[i-1])); r != utf8.RuneError {
			return r
		}
	}
	return rune(units[i-1])
}

// runeAt decodes the character starting at unit i, never reading at or past
// unit to. It returns 0 at the edge.
func runeAt(units []uint16, i, to int) rune {
	if i >= to {
		return 0
	}
	if i+1 < to && utf16.IsSurrogate(rune(units[i])) {
		if r := utf16.DecodeRune(rune(units[i]), rune(units[i+1])); r != utf8.RuneError {
			return r
		}
	}
	return rune(units[i])
}

func utf16Tail(units []uint16, n int) []rune {
	if len(units) > n {
		units = units[:n]
	}
	out := make([]rune, 0, len(units))
	for _, u := range units {
		if u >= 0x80 {
			break
		}
		out = append(out, rune(u))
	}
	return out
}

// destination formats a link destination. URLs with spaces or control
// characters use the angle-bracket form; line breaks cannot be represented
// and are percent-encoded.
func destination(url string) string {
	url = strings.NewReplacer("\n", "%0A", "\r", "%0D").Replace(url)
	angle := strings.IndexFunc(url, func(r rune) bool { return r == ' ' || unicode.IsControl(r) }) >= 0

	var b strings.Builder
	if angle {
		b.WriteString("<")
	}
	for i, r := range url {
		switch {
		case r == '\\' || r == '<' || r == '>':
			b.WriteString(`\` + string(r))
		case !angle && (r == '(' || r == ')'):
			b.WriteString(`\` + string(r))
		case r == '&' && characterReference.MatchString(url[i:]):
			b.WriteString(`\&`)
		default:
			b.WriteRune(r)
		}
	}
	if angle {
		b.WriteString(">")
	}
	return b.String()
}
