package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqla2lint/pkg/core"
)

// collect returns every node of the given kind in pre-order.
func collect(n core.Node, kind core.Kind) []core.Node {
	if core.IsNil(n) {
		return nil
	}
	var out []core.Node
	if n.Kind() == kind {
		out = append(out, n)
	}
	for _, child := range n.Children() {
		out = append(out, collect(child, kind)...)
	}
	return out
}

func mustParse(t *testing.T, src string) *core.Module {
	t.Helper()
	mod, err := ParseString(src)
	require.NoError(t, err)
	require.NotNil(t, mod)
	return mod
}

func TestParse_Assign(t *testing.T) {
	mod := mustParse(t, "x = mapped_column()\n")
	require.Len(t, mod.Body, 1)

	assign, ok := mod.Body[0].(*core.Assign)
	require.True(t, ok, "expected *core.Assign, got %T", mod.Body[0])
	require.Len(t, assign.Targets, 1)

	target, ok := assign.Targets[0].(*core.Name)
	require.True(t, ok)
	assert.Equal(t, "x", target.ID)

	call, ok := assign.Value.(*core.Call)
	require.True(t, ok)
	fn, ok := call.Func.(*core.Name)
	require.True(t, ok)
	assert.Equal(t, "mapped_column", fn.ID)

	assert.Equal(t, 1, assign.Pos().Line)
	assert.Equal(t, 0, assign.Pos().Column)
	assert.Equal(t, 4, call.Pos().Column)
}

func TestParse_ChainedAssign(t *testing.T) {
	mod := mustParse(t, "a = b = relationship()\n")
	require.Len(t, mod.Body, 1)

	assign, ok := mod.Body[0].(*core.Assign)
	require.True(t, ok)
	require.Len(t, assign.Targets, 2)
	assert.Equal(t, "a", assign.Targets[0].(*core.Name).ID)
	assert.Equal(t, "b", assign.Targets[1].(*core.Name).ID)
	assert.IsType(t, &core.Call{}, assign.Value)
}

func TestParse_TupleTarget(t *testing.T) {
	mod := mustParse(t, "a, b = mapped_column(), mapped_column()\n")
	assign, ok := mod.Body[0].(*core.Assign)
	require.True(t, ok)
	require.Len(t, assign.Targets, 1)
	assert.IsType(t, &core.Other{}, assign.Targets[0])
	assert.IsType(t, &core.Other{}, assign.Value)
	assert.Len(t, collect(assign, core.KindCall), 2)
}

func TestParse_ParenthesizedTarget(t *testing.T) {
	tests := []struct {
		src    string
		isName bool
	}{
		{"(x) = mapped_column()\n", true},
		{"(x,) = mapped_column()\n", false},
		{"[x] = mapped_column()\n", false},
		{"(a, b) = mapped_column()\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assign, ok := mustParse(t, tt.src).Body[0].(*core.Assign)
			require.True(t, ok)
			require.Len(t, assign.Targets, 1)
			name, ok := assign.Targets[0].(*core.Name)
			assert.Equal(t, tt.isName, ok, "target %T", assign.Targets[0])
			if tt.isName {
				assert.Equal(t, "x", name.ID)
				assert.Equal(t, 1, name.Pos().Column)
			}
		})
	}
}

func TestParse_AnnAssign(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		head     string
		hasValue bool
	}{
		{"generic", "x: Mapped[int] = mapped_column()\n", "Mapped", true},
		{"declaration", "x: Mapped[int]\n", "Mapped", false},
		{"bare", "x: int = 1\n", "", true},
		{"string annotation", "x: \"Mapped[int]\" = mapped_column()\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := mustParse(t, tt.src)
			require.Len(t, mod.Body, 1)

			ann, ok := mod.Body[0].(*core.AnnAssign)
			require.True(t, ok, "expected *core.AnnAssign, got %T", mod.Body[0])
			assert.Equal(t, "x", ann.Target.(*core.Name).ID)
			assert.Equal(t, tt.hasValue, ann.Value != nil)

			if tt.head != "" {
				sub, ok := ann.Annotation.(*core.Subscript)
				require.True(t, ok, "expected *core.Subscript, got %T", ann.Annotation)
				assert.Equal(t, tt.head, sub.Value.(*core.Name).ID)
				require.Len(t, sub.Index, 1)
			}
		})
	}
}

func TestParse_QualifiedAnnotation(t *testing.T) {
	mod := mustParse(t, "children: orm.DynamicMapped[\"Child\"] = relationship()\n")
	ann, ok := mod.Body[0].(*core.AnnAssign)
	require.True(t, ok)

	sub, ok := ann.Annotation.(*core.Subscript)
	require.True(t, ok, "expected *core.Subscript, got %T", ann.Annotation)
	attr, ok := sub.Value.(*core.Attribute)
	require.True(t, ok, "expected *core.Attribute, got %T", sub.Value)
	assert.Equal(t, "DynamicMapped", attr.Attr)
	assert.Equal(t, "orm", attr.Value.(*core.Name).ID)
	assert.Equal(t, 10, ann.Annotation.Pos().Column)
}

func TestParse_CallArguments(t *testing.T) {
	mod := mustParse(t, "relationship(\"Child\", backref=\"parent\", **opts)\n")
	stmt, ok := mod.Body[0].(*core.ExprStmt)
	require.True(t, ok)

	call, ok := stmt.X.(*core.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 1)
	require.Len(t, call.Keywords, 2)

	backref := call.Keyword("backref")
	require.NotNil(t, backref)
	value, ok := backref.Value.(*core.Constant)
	require.True(t, ok)
	assert.Equal(t, "string", value.Type)
	assert.Equal(t, `"parent"`, value.Text)
	assert.Equal(t, 22, backref.Pos().Column)
	assert.Equal(t, 30, value.Pos().Column)

	splat := call.Keywords[1]
	assert.Empty(t, splat.Arg)
	assert.Equal(t, "opts", splat.Value.(*core.Name).ID)
}

func TestParse_AttributeCallee(t *testing.T) {
	mod := mustParse(t, "x = orm.mapped_column()\n")
	assign := mod.Body[0].(*core.Assign)
	call := assign.Value.(*core.Call)

	attr, ok := call.Func.(*core.Attribute)
	require.True(t, ok)
	assert.Equal(t, "mapped_column", attr.Attr)
	assert.Equal(t, "orm", attr.Value.(*core.Name).ID)
}

func TestParse_ParenthesesAreTransparent(t *testing.T) {
	mod := mustParse(t, "x = (mapped_column())\n")
	assign := mod.Body[0].(*core.Assign)
	call, ok := assign.Value.(*core.Call)
	require.True(t, ok, "expected *core.Call, got %T", assign.Value)
	assert.Equal(t, 5, call.Pos().Column)
}

func TestParse_NestedInClass(t *testing.T) {
	src := `class User(Base):
    __tablename__ = "user"

    id = mapped_column(primary_key=True)
    children = relationship("B", backref="a")
`
	mod := mustParse(t, src)
	require.Len(t, mod.Body, 1)

	class, ok := mod.Body[0].(*core.Other)
	require.True(t, ok)
	assert.Equal(t, "class_definition", class.Type)

	assigns := collect(mod, core.KindAssign)
	require.Len(t, assigns, 3)
	assert.Equal(t, 2, assigns[0].Pos().Line)
	assert.Equal(t, 4, assigns[1].Pos().Line)
	assert.Equal(t, 4, assigns[1].Pos().Column)

	calls := collect(mod, core.KindCall)
	require.Len(t, calls, 2)
	kw := calls[1].(*core.Call).Keyword("backref")
	require.NotNil(t, kw)
	assert.Equal(t, 5, kw.Value.Pos().Line)
	assert.Equal(t, 34, kw.Value.Pos().Column)
}

func TestParse_Comments(t *testing.T) {
	src := `# header
class A(Base):
    x = mapped_column()  # noqa: SA201
`
	mod := mustParse(t, src)
	require.Len(t, mod.Comments, 2)
	assert.Equal(t, "# header", mod.Comments[0].Text)
	assert.Equal(t, 1, mod.Comments[0].Line())
	assert.Equal(t, "noqa: SA201", mod.Comments[1].Body())
	assert.Equal(t, 3, mod.Comments[1].Line())

	// Comments never leak into the tree.
	assert.Len(t, collect(mod, core.KindAssign), 1)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 20, "short"},
		{"abcdef", 3, "abc"},
		{"abécd", 3, "ab"},
		{"日本語", 4, "日"},
		{"日本語", 6, "日本"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		assert.Equal(t, tt.want, got)
		assert.True(t, utf8.ValidString(got), got)
	}
}

func TestParse_SyntaxErrorMultibyte(t *testing.T) {
	// 19 ASCII bytes then a 3-byte rune straddling the snippet limit.
	src := "x = (\n    $$$$$$$$$$$$$$$$$$$日本\n"
	_, err := ParseString(src)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.True(t, utf8.ValidString(perr.Message), perr.Message)
}

func TestParse_SyntaxError(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"unclosed call", "x = mapped_column(\n", 1},
		{"bad token", "x = = 1\n", 1},
		{"later line", "a = 1\nclass :\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := ParseString(tt.src)
			require.Error(t, err)
			assert.Nil(t, mod)
			assert.True(t, errors.Is(err, ErrSyntax))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Pos.Line)
		})
	}
}

func TestParser_Reuse(t *testing.T) {
	p := New()
	defer p.Close()

	for _, src := range []string{"a = 1\n", "b: int = 2\n"} {
		mod, err := p.Parse(context.Background(), []byte(src))
		require.NoError(t, err)
		assert.Len(t, mod.Body, 1)
	}

	p.Close()
	_, err := p.Parse(context.Background(), []byte("c = 3\n"))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.py")
	require.NoError(t, os.WriteFile(path, []byte("x = relationship()\n"), 0o600))

	mod, err := ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, collect(mod, core.KindCall), 1)

	_, err = ParseFile(context.Background(), filepath.Join(dir, "missing.py"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrSyntax))
}
