package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition_String(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want string
	}{
		{"invalid", Position{}, "-"},
		{"first column", Position{Line: 3, Column: 0}, "3:1"},
		{"indented", Position{Line: 19, Column: 14}, "19:15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pos.String())
		})
	}
}

func TestPosition_Before(t *testing.T) {
	a := Position{Line: 1, Column: 4}
	b := Position{Line: 1, Column: 8}
	c := Position{Line: 2, Column: 0}

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.False(t, c.Before(a))
	assert.False(t, a.Before(a))
}

func TestSpan_Contains(t *testing.T) {
	s := Span{Start: Position{Line: 1, Offset: 10}, End: Position{Line: 1, Offset: 20}}

	assert.True(t, s.IsValid())
	assert.True(t, s.Contains(10))
	assert.True(t, s.Contains(19))
	assert.False(t, s.Contains(20))
	assert.False(t, s.Contains(9))
}

func TestComment_Body(t *testing.T) {
	c := &Comment{Text: "#  noqa: SA201", Span: Span{Start: Position{Line: 7}}}

	assert.Equal(t, "noqa: SA201", c.Body())
	assert.Equal(t, 7, c.Line())
}
