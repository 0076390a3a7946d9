package parser

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/sqla2lint/pkg/token"
)

// ErrSyntax is matched by every *ParseError via errors.Is.
var ErrSyntax = errors.New("syntax error")

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column+1, e.Message)
}

// Is reports ErrSyntax as the error's kind.
func (e *ParseError) Is(target error) bool {
	return target == ErrSyntax
}

// Common error messages
const (
	ErrUnexpectedInput = "invalid syntax near %q"
	ErrMissingToken    = "expected %s"
)
