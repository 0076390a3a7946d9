// Package parser turns Python source into the pkg/core syntax tree.
//
// # Usage
//
//	mod, err := parser.Parse(ctx, src)
//	if err != nil {
//	    // errors.Is(err, parser.ErrSyntax) for malformed source
//	}
//
// Parsing is delegated to tree-sitter's Python grammar. The concrete syntax
// tree is converted into the closed set of core node variants: assignments,
// annotated assignments, calls, keywords, names, attributes, subscripts and
// constants are modeled, everything else becomes core.Other with its children
// preserved so traversal still reaches nested calls.
//
// A Parser is not safe for concurrent use. The package-level helpers create a
// fresh tree-sitter parser per call.
package parser

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/leapstack-labs/sqla2lint/pkg/core"
)

// Parser parses Python source into a core.Module.
type Parser struct {
	ts *sitter.Parser
}

// New creates a Python parser.
func New() *Parser {
	ts := sitter.NewParser()
	ts.SetLanguage(python.GetLanguage())
	return &Parser{ts: ts}
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	if p.ts != nil {
		p.ts.Close()
		p.ts = nil
	}
}

// Parse parses src and returns the module. Source containing syntax errors
// yields a *ParseError describing the first error found.
func (p *Parser) Parse(ctx context.Context, src []byte) (*core.Module, error) {
	if p.ts == nil {
		return nil, fmt.Errorf("parser closed")
	}

	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, firstError(root, src)
	}

	c := &converter{src: src}
	return c.module(root), nil
}

// Parse parses src with a one-off parser.
func Parse(ctx context.Context, src []byte) (*core.Module, error) {
	p := New()
	defer p.Close()
	return p.Parse(ctx, src)
}

// ParseString is a convenience wrapper for tests and small snippets.
func ParseString(src string) (*core.Module, error) {
	return Parse(context.Background(), []byte(src))
}

// ParseFile reads and parses a Python file.
func ParseFile(ctx context.Context, path string) (*core.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(ctx, src)
}

// firstError finds the first ERROR or MISSING node in document order.
func firstError(root *sitter.Node, src []byte) *ParseError {
	var found *sitter.Node
	var visit func(n *sitter.Node) bool
	visit = func(n *sitter.Node) bool {
		if n == nil {
			return false
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return true
		}
		if !n.HasError() {
			return false
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if visit(n.Child(i)) {
				return true
			}
		}
		return false
	}
	visit(root)

	if found == nil {
		return &ParseError{Pos: positionOf(root), Message: "invalid syntax"}
	}
	if found.IsMissing() {
		return &ParseError{Pos: positionOf(found), Message: fmt.Sprintf(ErrMissingToken, found.Type())}
	}

	snippet := truncate(found.Content(src), maxSnippet)
	return &ParseError{Pos: positionOf(found), Message: fmt.Sprintf(ErrUnexpectedInput, snippet)}
}

// maxSnippet bounds the unexpected input quoted in a syntax error, in bytes.
const maxSnippet = 20

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
