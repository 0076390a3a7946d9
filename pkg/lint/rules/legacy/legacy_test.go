package legacy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqla2lint/pkg/lint"
	_ "github.com/leapstack-labs/sqla2lint/pkg/lint/rules" // register rules
	"github.com/leapstack-labs/sqla2lint/pkg/parser"
)

// Helper to run analysis and filter by rule ID
func runRule(t *testing.T, src string, ruleID string) []lint.Diagnostic {
	t.Helper()
	mod, err := parser.ParseString(src)
	require.NoError(t, err)

	var filtered []lint.Diagnostic
	for _, d := range lint.NewChecker(lint.DefaultVocabulary(), lint.NewConfig()).Check(mod) {
		if d.Code == ruleID {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

const dynamicMessage = "Use of legacy collection `DynamicMapped` consider using `WriteOnlyMapped`"

func TestSA202_DynamicMapped(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantDiag bool
		line     int
		column   int
	}{
		{
			name:     "bare DynamicMapped",
			src:      "children: DynamicMapped[\"Child\"] = relationship(back_populates=\"parent\")\n",
			wantDiag: true, line: 1, column: 10,
		},
		{
			name:     "qualified DynamicMapped",
			src:      "children: orm.DynamicMapped[\"Child\"] = relationship(back_populates=\"parent\")\n",
			wantDiag: true, line: 1, column: 10,
		},
		{
			name:     "unsubscripted annotation",
			src:      "children: DynamicMapped = relationship()\n",
			wantDiag: true, line: 1, column: 10,
		},
		{
			name:     "declaration without value",
			src:      "children: DynamicMapped[\"Child\"]\n",
			wantDiag: true, line: 1, column: 10,
		},
		{
			name:     "inside class body",
			src:      "class Parent(Base):\n    children: DynamicMapped[\"Child\"] = relationship()\n",
			wantDiag: true, line: 2, column: 14,
		},
		{
			name:     "Mapped list",
			src:      "children: Mapped[List[\"Child\"]] = relationship(back_populates=\"parent\")\n",
			wantDiag: false,
		},
		{
			name:     "WriteOnlyMapped",
			src:      "children: WriteOnlyMapped[\"Child\"] = relationship()\n",
			wantDiag: false,
		},
		{
			name:     "nested inside another generic",
			src:      "children: Optional[DynamicMapped[\"Child\"]] = None\n",
			wantDiag: false,
		},
		{
			name:     "union with None",
			src:      "children: DynamicMapped[\"Child\"] | None = None\n",
			wantDiag: false,
		},
		{
			name:     "plain assignment of the name",
			src:      "alias = DynamicMapped\n",
			wantDiag: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := runRule(t, tt.src, "SA202")
			if !tt.wantDiag {
				assert.Empty(t, diags, "unexpected SA202 diagnostic")
				return
			}
			require.Len(t, diags, 1)
			assert.Equal(t, dynamicMessage, diags[0].Message)
			assert.Equal(t, tt.line, diags[0].Pos.Line)
			assert.Equal(t, tt.column, diags[0].Pos.Column)
		})
	}
}

func TestSA202_ConfiguredLegacyCollection(t *testing.T) {
	vocab, err := lint.NewVocabulary(lint.VocabularyOptions{
		LegacyCollections: map[string]string{"AppenderMapped": "WriteOnlyMapped"},
	})
	require.NoError(t, err)

	mod, err := parser.ParseString("items: AppenderMapped[\"Item\"] = relationship()\n")
	require.NoError(t, err)

	diags := lint.NewChecker(vocab, nil).Check(mod)
	require.Len(t, diags, 1)
	assert.Equal(t, "SA202", diags[0].Code)
	assert.Equal(t, "Use of legacy collection `AppenderMapped` consider using `WriteOnlyMapped`", diags[0].Message)
}

const backrefMessage = "Use of legacy relationship `backref` consider using `back_populates` instead"

func TestSA203_Backref(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantDiag bool
		line     int
		column   int
	}{
		{
			name:     "bare relationship",
			src:      "children: Mapped[List[\"Child\"]] = relationship(backref=\"parent\")\n",
			wantDiag: true, line: 1, column: 55,
		},
		{
			name:     "qualified relationship",
			src:      "children: Mapped[List[\"Child\"]] = orm.relationship(backref=\"parent\")\n",
			wantDiag: true, line: 1, column: 59,
		},
		{
			name:     "backref() helper as value",
			src:      "relationship(\"Child\", backref=backref(\"parent\", lazy=\"dynamic\"))\n",
			wantDiag: true, line: 1, column: 30,
		},
		{
			name:     "nested in class body",
			src:      "class Parent(Base):\n    children = relationship(\"Child\", backref=\"parent\")\n",
			wantDiag: true, line: 2, column: 45,
		},
		{
			name:     "back_populates",
			src:      "children: Mapped[List[\"Child\"]] = relationship(back_populates=\"parent\")\n",
			wantDiag: false,
		},
		{
			name:     "not a relationship",
			src:      "x: Mapped[int] = mapped_column(backref=\"parent\")\n",
			wantDiag: false,
		},
		{
			name:     "multi-level qualified",
			src:      "children = sqlalchemy.orm.relationship(backref=\"parent\")\n",
			wantDiag: false,
		},
		{
			name:     "kwargs splat",
			src:      "children = relationship(**options)\n",
			wantDiag: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := runRule(t, tt.src, "SA203")
			if !tt.wantDiag {
				assert.Empty(t, diags, "unexpected SA203 diagnostic")
				return
			}
			require.Len(t, diags, 1)
			assert.Equal(t, backrefMessage, diags[0].Message)
			assert.Equal(t, tt.line, diags[0].Pos.Line)
			assert.Equal(t, tt.column, diags[0].Pos.Column)
		})
	}
}
