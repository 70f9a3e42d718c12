// Package paste turns pasted plain text into document edits, attaching a
// link entity to every URL found in the text.
//
// Segmentation and mutation are separate steps: Scan cuts the text into
// plain and URL segments, and Detector.HandlePaste inserts them.
package paste

import (
	"regexp"
	"strings"
)

// SegmentKind tells plain text from a URL.
type SegmentKind int

const (
	PlainSegment SegmentKind = iota
	URLSegment
)

func (k SegmentKind) String() string {
	if k == URLSegment {
		return "url"
	}
	return "plain"
}

// Segment is a piece of pasted text. Start and End are byte offsets into the
// scanned text.
type Segment struct {
	Kind  SegmentKind
	Text  string
	Start int
	End   int
}

const urlPattern = `[a-z][a-z0-9+.\-]*://[^\s<>"]+` +
	`|www\.[^\s<>"]+` +
	`|[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}(?:[/?#][^\s<>"]*)?`

var (
	urlCandidate = regexp.MustCompile(`(?i)\b(?:` + urlPattern + `)`)
	urlExact     = regexp.MustCompile(`(?i)^(?:` + urlPattern + `)$`)
)

// Scan cuts text at every URL boundary. The segments are in order, non-empty
// and cover the whole text. A URL never ends in sentence punctuation or in a
// closing bracket without a matching opener.
func Scan(text string) []Segment {
	var segments []Segment
	pos := 0
	for _, m := range urlCandidate.FindAllStringIndex(text, -1) {
		start, end := m[0], m[0]+len(trimURL(text[m[0]:m[1]]))
		if start < pos || !urlExact.MatchString(text[start:end]) {
			continue
		}
		if start > pos {
			segments = append(segments, Segment{Kind: PlainSegment, Text: text[pos:start], Start: pos, End: start})
		}
		segments = append(segments, Segment{Kind: URLSegment, Text: text[start:end], Start: start, End: end})
		pos = end
	}
	if pos < len(text) {
		segments = append(segments, Segment{Kind: PlainSegment, Text: text[pos:], Start: pos, End: len(text)})
	}
	return segments
}

// HasURL reports whether any segment is a URL.
func HasURL(segments []Segment) bool {
	for _, s := range segments {
		if s.Kind == URLSegment {
			return true
		}
	}
	return false
}

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

func trimURL(s string) string {
	for len(s) > 0 {
		last := s[len(s)-1]
		if strings.IndexByte(`.,;:!?'"`, last) >= 0 {
			s = s[:len(s)-1]
			continue
		}
		if opener, ok := closers[last]; ok && strings.Count(s, string(opener)) < strings.Count(s, string(last)) {
			s = s[:len(s)-1]
			continue
		}
		break
	}
	return s
}
