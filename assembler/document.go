package assembler

import (
	"strings"
)

// Document is an immutable, line addressable snapshot of a source file.
type Document struct {
	Path    string
	Version int
	lines   []string
}

func NewDocument(path, text string) *Document {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return &Document{Path: path, lines: lines}
}

func (d *Document) LineCount() int {
	return len(d.lines)
}

// LineAt returns the text of line i without its terminator, or "" when out of range.
func (d *Document) LineAt(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

func (d *Document) Text() string {
	return strings.Join(d.lines, "\n")
}

// IsBlank reports whether line i is empty or whitespace only.
func (d *Document) IsBlank(i int) bool {
	return strings.TrimSpace(d.LineAt(i)) == ""
}

// FirstNonWhitespace returns the index of the first non-whitespace character of line i.
func (d *Document) FirstNonWhitespace(i int) int {
	line := d.LineAt(i)
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// EndPosition returns the position just past the last character of the document.
func (d *Document) EndPosition() TextPosition {
	last := len(d.lines) - 1
	return TextPosition{Line: last, Char: len(d.lines[last])}
}
