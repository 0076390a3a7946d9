package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/token"
)

// converter maps tree-sitter nodes onto core nodes.
type converter struct {
	src      []byte
	comments []*token.Comment
}

func positionOf(n *sitter.Node) token.Position {
	p := n.StartPoint()
	return token.Position{Line: int(p.Row) + 1, Column: int(p.Column), Offset: int(n.StartByte())}
}

func endOf(n *sitter.Node) token.Position {
	p := n.EndPoint()
	return token.Position{Line: int(p.Row) + 1, Column: int(p.Column), Offset: int(n.EndByte())}
}

func (c *converter) span(n *sitter.Node) token.Span {
	return token.Span{Start: positionOf(n), End: endOf(n)}
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

func (c *converter) module(root *sitter.Node) *core.Module {
	c.collectComments(root)

	mod := &core.Module{Span: c.span(root)}
	for _, child := range c.namedChildren(root) {
		mod.Body = append(mod.Body, c.stmt(child))
	}
	mod.Comments = c.comments
	return mod
}

// namedChildren returns named children, leaving out comments.
func (c *converter) namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

func (c *converter) collectComments(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Type() == "comment" {
			c.comments = append(c.comments, &token.Comment{Text: c.text(child), Span: c.span(child)})
			continue
		}
		c.collectComments(child)
	}
}

// node converts any tree-sitter node. Constructs without a dedicated variant
// become core.Other.
func (c *converter) node(n *sitter.Node) core.Node {
	if n == nil {
		return nil
	}

	switch n.Type() {
	case "expression_statement":
		return c.expressionStatement(n)
	case "call":
		return c.call(n)
	case "keyword_argument":
		return c.keyword(n)
	case "identifier":
		return &core.Name{ID: c.text(n), Span: c.span(n)}
	case "attribute":
		return c.attribute(n)
	case "subscript":
		return c.subscript(n)
	case "generic_type":
		return c.genericType(n)
	case "member_type":
		return c.memberType(n)
	case "type", "parenthesized_expression":
		// Transparent wrappers: Python's own AST has no node for either.
		if kids := c.namedChildren(n); len(kids) == 1 {
			return c.node(kids[0])
		}
	case "tuple_pattern":
		// (x) = v binds x itself; only a comma makes a tuple.
		if kids := c.namedChildren(n); len(kids) == 1 && !hasToken(n, ",") {
			return c.node(kids[0])
		}
	case "string", "concatenated_string", "integer", "float",
		"true", "false", "none", "ellipsis":
		return &core.Constant{Type: n.Type(), Text: c.text(n), Span: c.span(n)}
	}
	return c.other(n)
}

// hasToken reports whether n has a direct anonymous child of the given type.
func hasToken(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); !child.IsNamed() && child.Type() == typ {
			return true
		}
	}
	return false
}

func (c *converter) other(n *sitter.Node) *core.Other {
	o := &core.Other{Type: n.Type(), Span: c.span(n)}
	for _, child := range c.namedChildren(n) {
		if converted := c.node(child); !core.IsNil(converted) {
			o.Nodes = append(o.Nodes, converted)
		}
	}
	return o
}

func (c *converter) expr(n *sitter.Node) core.Expr {
	if n == nil {
		return nil
	}
	converted := c.node(n)
	if e, ok := converted.(core.Expr); ok {
		return e
	}
	return &core.Other{Type: n.Type(), Nodes: []core.Node{converted}, Span: c.span(n)}
}

func (c *converter) stmt(n *sitter.Node) core.Stmt {
	converted := c.node(n)
	if s, ok := converted.(core.Stmt); ok {
		return s
	}
	return &core.Other{Type: n.Type(), Nodes: []core.Node{converted}, Span: c.span(n)}
}

func (c *converter) expressionStatement(n *sitter.Node) core.Stmt {
	kids := c.namedChildren(n)
	if len(kids) != 1 {
		return c.other(n)
	}
	if kids[0].Type() == "assignment" {
		return c.assignment(kids[0], n)
	}
	return &core.ExprStmt{X: c.expr(kids[0]), Span: c.span(n)}
}

// assignment flattens tree-sitter's right-nested chain (x = y = v) into one
// statement with several targets, the way Python's ast.Assign does.
func (c *converter) assignment(a, stmt *sitter.Node) core.Stmt {
	left := a.ChildByFieldName("left")
	right := a.ChildByFieldName("right")
	sp := c.span(stmt)

	if typ := a.ChildByFieldName("type"); typ != nil {
		ann := &core.AnnAssign{
			Target:     c.expr(left),
			Annotation: c.expr(typ),
			Span:       sp,
		}
		if right != nil {
			ann.Value = c.expr(right)
		}
		return ann
	}

	assign := &core.Assign{Span: sp}
	if left != nil {
		assign.Targets = append(assign.Targets, c.expr(left))
	}
	for right != nil && right.Type() == "assignment" && right.ChildByFieldName("type") == nil {
		if l := right.ChildByFieldName("left"); l != nil {
			assign.Targets = append(assign.Targets, c.expr(l))
		}
		right = right.ChildByFieldName("right")
	}
	if right != nil {
		assign.Value = c.expr(right)
	}
	return assign
}

func (c *converter) call(n *sitter.Node) core.Node {
	call := &core.Call{
		Func: c.expr(n.ChildByFieldName("function")),
		Span: c.span(n),
	}

	args := n.ChildByFieldName("arguments")
	if args == nil {
		return call
	}
	if args.Type() != "argument_list" {
		// Bare generator argument: f(x for x in y)
		call.Args = append(call.Args, c.expr(args))
		return call
	}

	for _, arg := range c.namedChildren(args) {
		switch arg.Type() {
		case "keyword_argument":
			call.Keywords = append(call.Keywords, c.keyword(arg))
		case "dictionary_splat":
			kw := &core.Keyword{Span: c.span(arg)}
			if kids := c.namedChildren(arg); len(kids) == 1 {
				kw.Value = c.expr(kids[0])
			}
			call.Keywords = append(call.Keywords, kw)
		default:
			call.Args = append(call.Args, c.expr(arg))
		}
	}
	return call
}

func (c *converter) keyword(n *sitter.Node) *core.Keyword {
	kw := &core.Keyword{Span: c.span(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		kw.Arg = c.text(name)
	}
	kw.Value = c.expr(n.ChildByFieldName("value"))
	return kw
}

func (c *converter) attribute(n *sitter.Node) core.Node {
	attr := &core.Attribute{
		Value: c.expr(n.ChildByFieldName("object")),
		Span:  c.span(n),
	}
	if name := n.ChildByFieldName("attribute"); name != nil {
		attr.Attr = c.text(name)
	}
	return attr
}

func (c *converter) subscript(n *sitter.Node) core.Node {
	kids := c.namedChildren(n)
	if len(kids) == 0 {
		return c.other(n)
	}
	sub := &core.Subscript{Value: c.expr(kids[0]), Span: c.span(n)}
	for _, k := range kids[1:] {
		sub.Index = append(sub.Index, c.expr(k))
	}
	return sub
}

// genericType handles annotation-only syntax such as Mapped[int] when the
// grammar chooses its type rules over a plain subscript.
func (c *converter) genericType(n *sitter.Node) core.Node {
	kids := c.namedChildren(n)
	if len(kids) == 0 {
		return c.other(n)
	}
	sub := &core.Subscript{Value: c.expr(kids[0]), Span: c.span(n)}
	for _, k := range kids[1:] {
		if k.Type() == "type_parameter" {
			for _, param := range c.namedChildren(k) {
				sub.Index = append(sub.Index, c.expr(param))
			}
			continue
		}
		sub.Index = append(sub.Index, c.expr(k))
	}
	return sub
}

// memberType handles qualified annotation names (orm.Mapped).
func (c *converter) memberType(n *sitter.Node) core.Node {
	kids := c.namedChildren(n)
	if len(kids) != 2 || kids[1].Type() != "identifier" {
		return c.other(n)
	}
	return &core.Attribute{
		Value: c.expr(kids[0]),
		Attr:  c.text(kids[1]),
		Span:  c.span(n),
	}
}
