// Package token defines source positions and comments shared by the parser
// and the lint engine.
package token

import "fmt"

// Position represents a location in the source code.
//
// Column is a 0-based byte offset within the line. Presentation layers add 1
// when printing; nothing inside the lint engine does.
type Position struct {
	Line   int // 1-based line number
	Column int // 0-based column (byte offset within the line)
	Offset int // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Before reports whether p starts before q in the file.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// String renders the position as line:column with a 1-based column.
func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column+1)
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// IsValid returns true if both start and end positions are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}
