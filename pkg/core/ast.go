package core

import (
	"sort"

	"github.com/leapstack-labs/sqla2lint/pkg/token"
)

// Kind tags every syntax node. The set is closed: rules dispatch on Kind and
// the parser maps anything it does not model onto KindOther.
type Kind int

// Node kinds.
const (
	KindOther Kind = iota
	KindModule
	KindAssign
	KindAnnAssign
	KindExprStmt
	KindCall
	KindKeyword
	KindName
	KindAttribute
	KindSubscript
	KindConstant
)

var kindNames = [...]string{
	KindOther:     "other",
	KindModule:    "module",
	KindAssign:    "assign",
	KindAnnAssign: "ann_assign",
	KindExprStmt:  "expr_stmt",
	KindCall:      "call",
	KindKeyword:   "keyword",
	KindName:      "name",
	KindAttribute: "attribute",
	KindSubscript: "subscript",
	KindConstant:  "constant",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is the base interface for all syntax tree nodes.
type Node interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Pos returns the position of the first character of the node.
	Pos() token.Position
	// End returns the position of the character immediately after the node.
	End() token.Position
	// Children returns direct sub-nodes in source order.
	Children() []Node
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ---------- Statements ----------

// Module is the root of a parsed file.
type Module struct {
	Body     []Stmt
	Comments []*token.Comment
	Span     token.Span
}

func (*Module) stmtNode() {}

// Kind implements Node.
func (*Module) Kind() Kind { return KindModule }

// Pos implements Node.
func (m *Module) Pos() token.Position { return m.Span.Start }

// End implements Node.
func (m *Module) End() token.Position { return m.Span.End }

// Children implements Node.
func (m *Module) Children() []Node { return stmtsToNodes(m.Body) }

// Assign is a plain assignment. A chained assignment (x = y = v) has one
// entry in Targets per name.
type Assign struct {
	Targets []Expr
	Value   Expr
	Span    token.Span
}

func (*Assign) stmtNode() {}

// Kind implements Node.
func (*Assign) Kind() Kind { return KindAssign }

// Pos implements Node.
func (a *Assign) Pos() token.Position { return a.Span.Start }

// End implements Node.
func (a *Assign) End() token.Position { return a.Span.End }

// Children implements Node.
func (a *Assign) Children() []Node {
	nodes := make([]Node, 0, len(a.Targets)+1)
	for _, t := range a.Targets {
		nodes = appendNode(nodes, t)
	}
	return appendNode(nodes, a.Value)
}

// AnnAssign is an annotated assignment (target: annotation [= value]).
type AnnAssign struct {
	Target     Expr
	Annotation Expr
	Value      Expr // nil for a bare declaration
	Span       token.Span
}

func (*AnnAssign) stmtNode() {}

// Kind implements Node.
func (*AnnAssign) Kind() Kind { return KindAnnAssign }

// Pos implements Node.
func (a *AnnAssign) Pos() token.Position { return a.Span.Start }

// End implements Node.
func (a *AnnAssign) End() token.Position { return a.Span.End }

// Children implements Node.
func (a *AnnAssign) Children() []Node {
	nodes := make([]Node, 0, 3)
	nodes = appendNode(nodes, a.Target)
	nodes = appendNode(nodes, a.Annotation)
	return appendNode(nodes, a.Value)
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	X    Expr
	Span token.Span
}

func (*ExprStmt) stmtNode() {}

// Kind implements Node.
func (*ExprStmt) Kind() Kind { return KindExprStmt }

// Pos implements Node.
func (e *ExprStmt) Pos() token.Position { return e.Span.Start }

// End implements Node.
func (e *ExprStmt) End() token.Position { return e.Span.End }

// Children implements Node.
func (e *ExprStmt) Children() []Node { return appendNode(nil, e.X) }

// ---------- Expressions ----------

// Call is a call expression. Positional arguments and keywords keep their
// own slices; Children merges them back into source order.
type Call struct {
	Func     Expr
	Args     []Expr
	Keywords []*Keyword
	Span     token.Span
}

func (*Call) exprNode() {}

// Kind implements Node.
func (*Call) Kind() Kind { return KindCall }

// Pos implements Node.
func (c *Call) Pos() token.Position { return c.Span.Start }

// End implements Node.
func (c *Call) End() token.Position { return c.Span.End }

// Children implements Node.
func (c *Call) Children() []Node {
	args := make([]Node, 0, len(c.Args)+len(c.Keywords))
	for _, a := range c.Args {
		args = appendNode(args, a)
	}
	for _, kw := range c.Keywords {
		if kw != nil {
			args = append(args, kw)
		}
	}
	sort.SliceStable(args, func(i, j int) bool {
		return args[i].Pos().Offset < args[j].Pos().Offset
	})
	return append(appendNode(nil, c.Func), args...)
}

// Keyword returns the keyword argument with the given name, or nil.
func (c *Call) Keyword(name string) *Keyword {
	for _, kw := range c.Keywords {
		if kw != nil && kw.Arg == name {
			return kw
		}
	}
	return nil
}

// Keyword is a keyword argument inside a call. Arg is empty for **kwargs.
type Keyword struct {
	Arg   string
	Value Expr
	Span  token.Span
}

func (*Keyword) exprNode() {}

// Kind implements Node.
func (*Keyword) Kind() Kind { return KindKeyword }

// Pos implements Node.
func (k *Keyword) Pos() token.Position { return k.Span.Start }

// End implements Node.
func (k *Keyword) End() token.Position { return k.Span.End }

// Children implements Node.
func (k *Keyword) Children() []Node { return appendNode(nil, k.Value) }

// Name is a bare identifier reference.
type Name struct {
	ID   string
	Span token.Span
}

func (*Name) exprNode() {}

// Kind implements Node.
func (*Name) Kind() Kind { return KindName }

// Pos implements Node.
func (n *Name) Pos() token.Position { return n.Span.Start }

// End implements Node.
func (n *Name) End() token.Position { return n.Span.End }

// Children implements Node.
func (*Name) Children() []Node { return nil }

// Attribute is a qualified access (value.attr).
type Attribute struct {
	Value Expr
	Attr  string
	Span  token.Span
}

func (*Attribute) exprNode() {}

// Kind implements Node.
func (*Attribute) Kind() Kind { return KindAttribute }

// Pos implements Node.
func (a *Attribute) Pos() token.Position { return a.Span.Start }

// End implements Node.
func (a *Attribute) End() token.Position { return a.Span.End }

// Children implements Node.
func (a *Attribute) Children() []Node { return appendNode(nil, a.Value) }

// Subscript is an index expression (value[index, ...]), also used for
// generic annotations such as Mapped[int].
type Subscript struct {
	Value Expr
	Index []Expr
	Span  token.Span
}

func (*Subscript) exprNode() {}

// Kind implements Node.
func (*Subscript) Kind() Kind { return KindSubscript }

// Pos implements Node.
func (s *Subscript) Pos() token.Position { return s.Span.Start }

// End implements Node.
func (s *Subscript) End() token.Position { return s.Span.End }

// Children implements Node.
func (s *Subscript) Children() []Node {
	nodes := appendNode(make([]Node, 0, len(s.Index)+1), s.Value)
	for _, i := range s.Index {
		nodes = appendNode(nodes, i)
	}
	return nodes
}

// Constant is a literal. Type is the grammar name (string, integer, true, ...)
// and Text the literal source text.
type Constant struct {
	Type string
	Text string
	Span token.Span
}

func (*Constant) exprNode() {}

// Kind implements Node.
func (*Constant) Kind() Kind { return KindConstant }

// Pos implements Node.
func (c *Constant) Pos() token.Position { return c.Span.Start }

// End implements Node.
func (c *Constant) End() token.Position { return c.Span.End }

// Children implements Node.
func (*Constant) Children() []Node { return nil }

// Other holds any construct the tree model does not name: class and function
// definitions, control flow, tuples, lambdas and so on. It can stand in both
// statement and expression positions, and its Nodes are still traversed.
type Other struct {
	Type  string
	Nodes []Node
	Span  token.Span
}

func (*Other) exprNode() {}
func (*Other) stmtNode() {}

// Kind implements Node.
func (*Other) Kind() Kind { return KindOther }

// Pos implements Node.
func (o *Other) Pos() token.Position { return o.Span.Start }

// End implements Node.
func (o *Other) End() token.Position { return o.Span.End }

// Children implements Node.
func (o *Other) Children() []Node { return o.Nodes }

func stmtsToNodes(stmts []Stmt) []Node {
	nodes := make([]Node, 0, len(stmts))
	for _, s := range stmts {
		nodes = appendNode(nodes, s)
	}
	return nodes
}

// appendNode skips nil interface values as well as typed nil pointers.
func appendNode[T Node](nodes []Node, n T) []Node {
	if isNil(n) {
		return nodes
	}
	return append(nodes, n)
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Module:
		return v == nil
	case *Assign:
		return v == nil
	case *AnnAssign:
		return v == nil
	case *ExprStmt:
		return v == nil
	case *Call:
		return v == nil
	case *Keyword:
		return v == nil
	case *Name:
		return v == nil
	case *Attribute:
		return v == nil
	case *Subscript:
		return v == nil
	case *Constant:
		return v == nil
	case *Other:
		return v == nil
	}
	return false
}

// IsNil reports whether n is nil or a typed nil pointer to a node variant.
func IsNil(n Node) bool { return isNil(n) }
