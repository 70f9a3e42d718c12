// Package document implements the rich-text document model exchanged with the
// browser editing engine: ordered blocks of text carrying inline style ranges
// and entity ranges, plus an entity table.
//
// Documents are immutable values. Every operation returns a new *Document and
// leaves its receiver untouched, so callers can keep earlier snapshots (for
// undo) without aliasing hazards.
//
// All offsets are UTF-16 code-unit indices, the indexing used by the browser
// engine. Block.Text is an ordinary Go string; Len16 and Slice16 convert.
package document
