package document

import (
	"unicode/utf16"
)

// Len16 returns the length of s in UTF-16 code units.
func Len16(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Slice16 returns the part of s between the UTF-16 offsets start and end.
// Offsets are clamped to the string.
func Slice16(s string, start, end int) string {
	units := encode16(s)
	start, end = clamp(start, 0, len(units)), clamp(end, 0, len(units))
	if start >= end {
		return ""
	}
	return string(utf16.Decode(units[start:end]))
}

func encode16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
