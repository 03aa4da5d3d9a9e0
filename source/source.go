// Package source maps byte offsets of a DBML document to 1-based line and
// column numbers for reporting.
package source

import (
	"bytes"
	"fmt"
	"sort"
	"unicode/utf8"
)

// File is an immutable document with a precomputed line table.
// It is safe for concurrent use.
type File struct {
	name       string
	content    []byte
	lineStarts []int
}

func New(name string, content []byte) *File {
	f := &File{name: name, content: content}
	f.lineStarts = make([]int, 1, bytes.Count(content, []byte{'\n'})+1)
	for i, c := range content {
		if c == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

func (f *File) Name() string    { return f.name }
func (f *File) Content() []byte { return f.content }
func (f *File) Len() int        { return len(f.content) }

// LineCount returns the number of lines; an empty file has one.
func (f *File) LineCount() int { return len(f.lineStarts) }

// LineCol returns the line and column of pos. Columns count runes, so a
// multibyte character advances the column by one. pos is clamped to the
// content.
func (f *File) LineCol(pos int) (line, col int) {
	pos = min(max(pos, 0), len(f.content))
	idx := sort.Search(len(f.lineStarts), func(i int) bool { return f.lineStarts[i] > pos }) - 1
	start := f.lineStarts[idx]
	return idx + 1, utf8.RuneCount(f.content[start:pos]) + 1
}

// Offset is the inverse of LineCol. Out of range lines clamp to the content
// bounds and columns clamp to the end of their line.
func (f *File) Offset(line, col int) int {
	if line <= 0 || col <= 0 {
		return 0
	}
	if line > len(f.lineStarts) {
		return len(f.content)
	}
	pos := f.lineStarts[line-1]
	end := len(f.content)
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	}
	for ; col > 1 && pos < end; col-- {
		_, size := utf8.DecodeRune(f.content[pos:end])
		pos += size
	}
	return pos
}

// Line returns the text of the given line without its line break.
func (f *File) Line(line int) []byte {
	if line <= 0 || line > len(f.lineStarts) {
		return nil
	}
	start := f.lineStarts[line-1]
	end := len(f.content)
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	}
	return bytes.TrimSuffix(f.content[start:end], []byte{'\r'})
}

// Position resolves pos into a reportable location.
func (f *File) Position(pos int) Position {
	line, col := f.LineCol(pos)
	return Position{File: f.name, Offset: pos, Line: line, Col: col}
}

type Position struct {
	File   string
	Offset int
	Line   int
	Col    int
}

// String formats the position as file:line:col, dropping the file part
// when it is unnamed.
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}
