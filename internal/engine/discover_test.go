package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/lint"
	"github.com/leapstack-labs/sqla2lint/pkg/token"
)

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"a.py",
		"b.pyi",
		"c.txt",
		".venv/lib/x.py",
		"__pycache__/y.py",
		"sub/d.py",
		"build/e.py",
		"sub/gen_models.py",
	} {
		writeFile(t, filepath.Join(dir, name), "")
	}
	notes := writeFile(t, filepath.Join(dir, "notes.txt"), "")

	tests := []struct {
		name    string
		paths   []string
		exclude []string
		want    []string
	}{
		{
			name:  "defaults",
			paths: []string{dir},
			want:  []string{"a.py", "b.pyi", "build/e.py", "sub/d.py", "sub/gen_models.py"},
		},
		{
			name:    "exclude dir and glob",
			paths:   []string{dir},
			exclude: []string{"build/", "gen_*.py"},
			want:    []string{"a.py", "b.pyi", "sub/d.py"},
		},
		{
			name:    "relative glob",
			paths:   []string{dir},
			exclude: []string{"sub/*.py"},
			want:    []string{"a.py", "b.pyi", "build/e.py"},
		},
		{
			name:  "explicit file always included",
			paths: []string{notes, filepath.Join(dir, "sub")},
			want:  []string{"notes.txt", "sub/d.py", "sub/gen_models.py"},
		},
		{
			name:  "duplicates collapse",
			paths: []string{dir, filepath.Join(dir, "a.py"), filepath.Join(dir, "sub") + "/"},
			want:  []string{"a.py", "b.pyi", "build/e.py", "sub/d.py", "sub/gen_models.py"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Discover(tt.paths, tt.exclude)
			require.NoError(t, err)

			got := make([]string, 0, len(files))
			for _, f := range files {
				rel, err := filepath.Rel(dir, f)
				require.NoError(t, err)
				got = append(got, filepath.ToSlash(rel))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiscover_MissingPath(t *testing.T) {
	_, err := Discover([]string{filepath.Join(t.TempDir(), "nope")}, nil)
	assert.Error(t, err)
}

func TestParseNoQA(t *testing.T) {
	comment := func(line int, text string) *token.Comment {
		return &token.Comment{Text: text, Span: token.Span{Start: token.Position{Line: line}}}
	}
	diag := func(code string, line int) lint.Diagnostic {
		return lint.Diagnostic{Code: code, Pos: token.Position{Line: line}}
	}

	tests := []struct {
		name       string
		comment    *token.Comment
		diag       lint.Diagnostic
		suppressed bool
	}{
		{"blanket", comment(3, "# noqa"), diag("SA201", 3), true},
		{"blanket no space", comment(3, "#noqa"), diag("SA203", 3), true},
		{"other line", comment(3, "# noqa"), diag("SA201", 4), false},
		{"listed code", comment(5, "# noqa: SA201"), diag("SA201", 5), true},
		{"unlisted code", comment(5, "# noqa: SA201"), diag("SA203", 5), false},
		{"several codes", comment(5, "# noqa: SA201, SA203"), diag("SA203", 5), true},
		{"space separated", comment(5, "# noqa:SA202 SA203"), diag("SA203", 5), true},
		{"lowercase", comment(5, "# NoQA: sa203"), diag("SA203", 5), true},
		{"prefix", comment(5, "# noqa: SA2"), diag("SA202", 5), true},
		{"trailing text", comment(5, "# type: ignore  # noqa: SA201 legacy"), diag("SA201", 5), true},
		{"not noqa", comment(5, "# no qa"), diag("SA201", 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noqa := ParseNoQA([]*token.Comment{tt.comment})
			assert.Equal(t, tt.suppressed, noqa.Suppresses(tt.diag))
		})
	}
}

func TestNoQA_Filter(t *testing.T) {
	noqa := ParseNoQA([]*token.Comment{
		{Text: "# noqa: SA203", Span: token.Span{Start: token.Position{Line: 2}}},
		nil,
	})
	diags := []lint.Diagnostic{
		{Code: "SA201", Pos: token.Position{Line: 1}},
		{Code: "SA203", Pos: token.Position{Line: 2}},
		{Code: "SA201", Pos: token.Position{Line: 2}},
	}

	kept := noqa.Filter(diags)
	require.Len(t, kept, 2)
	assert.Equal(t, 1, kept[0].Pos.Line)
	assert.Equal(t, "SA201", kept[1].Code)
	assert.Len(t, diags, 3, "input untouched")

	assert.Equal(t, diags, NoQA{}.Filter(diags))
}

func TestFingerprint(t *testing.T) {
	base := func() string {
		cfg := lint.NewConfig()
		return Fingerprint(lint.NewChecker(nil, cfg), cfg, true)
	}
	vocab, err := lint.NewVocabulary(lint.VocabularyOptions{ExtraMappingNames: []string{"my_column"}})
	require.NoError(t, err)

	tests := []struct {
		name string
		fp   func() string
	}{
		{"rule disabled", func() string {
			cfg := lint.NewConfig().Disable("SA202")
			return Fingerprint(lint.NewChecker(nil, cfg), cfg, true)
		}},
		{"severity", func() string {
			cfg := lint.NewConfig().SetSeverity("SA201", core.SeverityError)
			return Fingerprint(lint.NewChecker(nil, cfg), cfg, true)
		}},
		{"options", func() string {
			cfg := lint.NewConfig().SetRuleOptions("SA203", map[string]any{"strict": true})
			return Fingerprint(lint.NewChecker(nil, cfg), cfg, true)
		}},
		{"vocabulary", func() string {
			return Fingerprint(lint.NewChecker(vocab, nil), nil, true)
		}},
		{"noqa", func() string {
			return Fingerprint(lint.NewChecker(nil, nil), nil, false)
		}},
	}

	assert.Equal(t, base(), base())
	assert.Len(t, base(), 16)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base(), tt.fp())
		})
	}
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, ContentHash([]byte("x = 1\n")), ContentHash([]byte("x = 1\n")))
	assert.NotEqual(t, ContentHash([]byte("x = 1\n")), ContentHash([]byte("x = 2\n")))
	assert.Len(t, ContentHash(nil), 32)
}
