package token

import "strings"

// Comment represents a Python "#" comment with position.
type Comment struct {
	Text string // includes the leading '#'
	Span Span
}

// Body returns the comment text without the leading '#' and surrounding spaces.
func (c *Comment) Body() string {
	return strings.TrimSpace(strings.TrimPrefix(c.Text, "#"))
}

// Line returns the line the comment starts on.
func (c *Comment) Line() int {
	return c.Span.Start.Line
}
