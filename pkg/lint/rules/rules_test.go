package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/lint"
	_ "github.com/leapstack-labs/sqla2lint/pkg/lint/rules" // register rules
	"github.com/leapstack-labs/sqla2lint/pkg/parser"
)

func parseTestdata(t *testing.T, name string) *core.Module {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	mod, err := parser.ParseString(string(src))
	require.NoError(t, err)
	return mod
}

func TestRegisteredRules(t *testing.T) {
	infos := lint.AllRules()
	require.Len(t, infos, 3)

	assert.Equal(t, "SA201", infos[0].ID)
	assert.Equal(t, "SA202", infos[1].ID)
	assert.Equal(t, "SA203", infos[2].ID)

	for _, info := range infos {
		assert.NotEmpty(t, info.Description, info.ID)
		assert.NotEmpty(t, info.Rationale, info.ID)
		assert.NotEmpty(t, info.BadExample, info.ID)
		assert.NotEmpty(t, info.GoodExample, info.ID)
		assert.Equal(t, core.SeverityWarning, info.DefaultSeverity, info.ID)
		assert.Len(t, info.Kinds, 1, info.ID)
	}
}

func TestCombinedFile_SourceOrder(t *testing.T) {
	mod := parseTestdata(t, "models.py")
	diags := lint.NewChecker(lint.DefaultVocabulary(), lint.NewConfig()).Check(mod)

	type found struct {
		code   string
		line   int
		column int
	}
	got := make([]found, 0, len(diags))
	for _, d := range diags {
		got = append(got, found{d.Code, d.Pos.Line, d.Pos.Column})
	}

	assert.Equal(t, []found{
		{"SA202", 15, 14},
		{"SA201", 21, 4},
		{"SA203", 23, 52},
	}, got)
}

func TestCleanFile_NoFalsePositives(t *testing.T) {
	mod := parseTestdata(t, "clean.py")
	diags := lint.NewChecker(lint.DefaultVocabulary(), lint.NewConfig()).Check(mod)
	assert.Empty(t, diags)
}

func TestDeterminism(t *testing.T) {
	mod := parseTestdata(t, "models.py")
	checker := lint.NewChecker(lint.DefaultVocabulary(), lint.NewConfig())

	first := checker.Check(mod)
	require.NotEmpty(t, first)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, checker.Check(mod))
	}

	// A second parse of the same source yields the same findings.
	assert.Equal(t, first, checker.Check(parseTestdata(t, "models.py")))
}

func TestTotality(t *testing.T) {
	sources := []string{
		"",
		"pass\n",
		"x\n",
		"x = 1\n",
		"lambda: relationship(backref=1)\n",
		"[relationship(backref=x) for x in y]\n",
		"def f(*, backref=None):\n    return relationship(**{'backref': backref})\n",
		"async def g():\n    await mapped_column()\n",
		"x: int\n",
		"a = b = c = d = 1\n",
		"with open(p) as f:\n    data = relationship()\n",
		"match x:\n    case 1:\n        y = mapped_column()\n",
		"@decorator\nclass A(Base):\n    x: 'DynamicMapped[int]'\n",
		"x = (yield)\n",
		"*a, b = relationship(), 1\n",
		"f()()(backref=1)\n",
		"x[0] = relationship(backref=1)\n",
	}

	checker := lint.NewChecker(lint.DefaultVocabulary(), lint.NewConfig())
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			mod, err := parser.ParseString(src)
			require.NoError(t, err)
			assert.NotPanics(t, func() {
				diags := checker.Check(mod)
				assert.NotNil(t, diags)
			})
		})
	}
}

func TestLazyDiagnostics(t *testing.T) {
	mod := parseTestdata(t, "models.py")
	checker := lint.NewChecker(lint.DefaultVocabulary(), lint.NewConfig())

	var first lint.Diagnostic
	for d := range checker.Diagnostics(mod) {
		first = d
		break
	}
	assert.Equal(t, "SA202", first.Code)
}

func TestDisableAndSeverity(t *testing.T) {
	mod := parseTestdata(t, "models.py")

	cfg := lint.NewConfig().Disable("SA202").SetSeverity("SA203", core.SeverityError)
	diags := lint.NewChecker(lint.DefaultVocabulary(), cfg).Check(mod)

	require.Len(t, diags, 2)
	assert.Equal(t, "SA201", diags[0].Code)
	assert.Equal(t, core.SeverityWarning, diags[0].Severity)
	assert.Equal(t, "SA203", diags[1].Code)
	assert.Equal(t, core.SeverityError, diags[1].Severity)
	assert.Equal(t, lint.BuildDocURL("SA203"), diags[1].DocumentationURL)
}
