package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqla2lint/pkg/token"
)

func span(line, col, offset int) token.Span {
	start := token.Position{Line: line, Column: col, Offset: offset}
	return token.Span{Start: start, End: start}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindOther, "other"},
		{KindAssign, "assign"},
		{KindAnnAssign, "ann_assign"},
		{KindCall, "call"},
		{Kind(99), "unknown"},
		{Kind(-1), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestCall_ChildrenSourceOrder(t *testing.T) {
	// relationship("Child", backref="parent", lazy=True) with the positional
	// argument stored after a keyword to prove ordering comes from offsets.
	fn := &Name{ID: "relationship", Span: span(1, 0, 0)}
	pos := &Constant{Type: "string", Text: `"Child"`, Span: span(1, 13, 13)}
	kw1 := &Keyword{Arg: "backref", Value: &Constant{Type: "string", Span: span(1, 30, 30)}, Span: span(1, 22, 22)}
	kw2 := &Keyword{Arg: "lazy", Value: &Constant{Type: "true", Span: span(1, 44, 44)}, Span: span(1, 40, 40)}

	call := &Call{Func: fn, Args: []Expr{pos}, Keywords: []*Keyword{kw2, kw1}}

	children := call.Children()
	require.Len(t, children, 4)
	assert.Same(t, fn, children[0])
	assert.Same(t, pos, children[1])
	assert.Same(t, kw1, children[2])
	assert.Same(t, kw2, children[3])
}

func TestCall_Keyword(t *testing.T) {
	kw := &Keyword{Arg: "backref"}
	call := &Call{Keywords: []*Keyword{nil, {Arg: ""}, kw}}

	assert.Same(t, kw, call.Keyword("backref"))
	assert.Nil(t, call.Keyword("back_populates"))
}

func TestChildren_SkipNil(t *testing.T) {
	var nilName *Name

	ann := &AnnAssign{Target: &Name{ID: "x"}, Annotation: &Name{ID: "int"}}
	assert.Len(t, ann.Children(), 2, "missing value is not a child")

	assign := &Assign{Targets: []Expr{nilName, &Name{ID: "y"}}, Value: nil}
	assert.Len(t, assign.Children(), 1, "typed nil targets are skipped")

	stmt := &ExprStmt{}
	assert.Empty(t, stmt.Children())
}

func TestIsNil(t *testing.T) {
	var call *Call
	var other *Other

	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(call))
	assert.True(t, IsNil(other))
	assert.False(t, IsNil(&Name{ID: "x"}))
}

func TestOther_IsExprAndStmt(t *testing.T) {
	o := &Other{Type: "class_definition"}

	var _ Expr = o
	var _ Stmt = o
	assert.Equal(t, KindOther, o.Kind())
}

func TestSubscript_Children(t *testing.T) {
	value := &Name{ID: "Mapped"}
	index := &Name{ID: "int"}
	sub := &Subscript{Value: value, Index: []Expr{index}}

	assert.Equal(t, []Node{value, index}, sub.Children())
}
