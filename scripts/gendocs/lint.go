package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/sqla2lint/pkg/lint"
	_ "github.com/leapstack-labs/sqla2lint/pkg/lint/rules"
)

// groupDescriptions provides human-readable descriptions for rule groups.
var groupDescriptions = map[string]string{
	"annotation": "Rules about typed `Mapped[]` annotations on mapped attributes.",
	"legacy":     "Rules about 1.x constructs that have a 2.0 replacement.",
}

// groupOrder is the order groups appear in on the rules page.
var groupOrder = []string{"annotation", "legacy"}

// generateLintDocs generates all lint documentation files.
func generateLintDocs(outDir string) error {
	log.Printf("Generating lint docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rules := lint.GetAll()

	if err := generateLintIndex(outDir, rules); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	if err := generateRulesPage(outDir, rules); err != nil {
		return err
	}
	log.Printf("  Generated rules.md")

	return nil
}

// generateLintIndex generates the main linting overview page.
func generateLintIndex(outDir string, rules []lint.Rule) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Rules", "SQLAlchemy 2.0 mapping rules")
	w.GeneratedMarker()

	w.Header(1, "Rules")
	w.Paragraph(fmt.Sprintf("sqla2lint includes **%d rules** for SQLAlchemy declarative models.", len(rules)))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description"},
		[][]string{
			{InlineCode("error"), "Critical issue that should be fixed"},
			{InlineCode("warning"), "Potential issue that should be reviewed"},
			{InlineCode("info"), "Informational feedback"},
			{InlineCode("hint"), "Suggestion for improvement"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be configured in `sqla2lint.yaml`:")
	w.CodeBlock("yaml", `lint:
  disabled: [SA202]        # disable rules by ID or prefix
  severity:
    SA201: error           # override severity
  vocabulary:
    extra_mapping_names: [my_column]`)

	w.Header(2, "Suppressing Diagnostics")
	w.Paragraph("A trailing comment suppresses diagnostics reported on its line:")
	w.CodeBlock("python", `posts = relationship(backref="author")  # noqa: SA203
legacy = mapped_column()  # noqa`)

	w.Header(2, "Rule Index")
	rows := make([][]string, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/rules/rules#%s)", rule.ID(), strings.ToLower(rule.ID())),
			InlineCode(rule.Name()),
			InlineCode(rule.DefaultSeverity().String()),
			cleanDescription(rule.Description()),
		})
	}
	w.Table([]string{"ID", "Name", "Severity", "Description"}, rows)

	return os.WriteFile(filepath.Join(outDir, "index.md"), w.Bytes(), 0600)
}

// generateRulesPage generates the full rule reference page.
func generateRulesPage(outDir string, rules []lint.Rule) error {
	w := NewMarkdownWriter()

	w.Frontmatter("Rule Reference", "Every sqla2lint rule with examples")
	w.GeneratedMarker()

	w.Header(1, "Rule Reference")

	grouped := groupRulesByGroup(rules)
	title := cases.Title(language.English)

	for _, group := range groupNames(grouped) {
		w.Line(fmt.Sprintf("## %s {#%s}", title.String(group), group))
		w.Newline()

		if desc, ok := groupDescriptions[group]; ok {
			w.Paragraph(desc)
		}

		for _, rule := range grouped[group] {
			writeRuleDoc(w, rule)
		}
	}

	return os.WriteFile(filepath.Join(outDir, "rules.md"), w.Bytes(), 0600)
}

// groupRulesByGroup organizes rules by their Group field, sorted by ID.
func groupRulesByGroup(rules []lint.Rule) map[string][]lint.Rule {
	grouped := make(map[string][]lint.Rule)
	for _, r := range rules {
		grouped[r.Group()] = append(grouped[r.Group()], r)
	}
	for group := range grouped {
		slices.SortFunc(grouped[group], func(a, b lint.Rule) int {
			return strings.Compare(a.ID(), b.ID())
		})
	}
	return grouped
}

// groupNames returns known groups in page order, then any others sorted.
func groupNames(grouped map[string][]lint.Rule) []string {
	names := make([]string, 0, len(grouped))
	for _, g := range groupOrder {
		if len(grouped[g]) > 0 {
			names = append(names, g)
		}
	}
	var extra []string
	for g := range grouped {
		if !slices.Contains(groupOrder, g) {
			extra = append(extra, g)
		}
	}
	slices.Sort(extra)
	return append(names, extra...)
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, rule lint.Rule) {
	// Rule header with anchor: ### SA203 - legacy.backref {#sa203}
	w.Line(fmt.Sprintf("### %s - %s {#%s}", rule.ID(), rule.Name(), strings.ToLower(rule.ID())))
	w.Newline()

	w.Line(fmt.Sprintf("**Severity:** %s", InlineCode(rule.DefaultSeverity().String())))
	w.Newline()

	w.Paragraph(cleanDescription(rule.Description()))

	if rationale := rule.Rationale(); rationale != "" {
		w.Header(4, "Why This Matters")
		w.Paragraph(strings.TrimSpace(rationale))
	}

	if badExample := rule.BadExample(); badExample != "" {
		w.Header(4, "Bad")
		w.CodeBlock("python", badExample)
	}

	if goodExample := rule.GoodExample(); goodExample != "" {
		w.Header(4, "Good")
		w.CodeBlock("python", goodExample)
	}

	if fix := rule.Fix(); fix != "" {
		w.Header(4, "How to Fix")
		w.Paragraph(strings.TrimSpace(fix))
	}

	if configKeys := rule.ConfigKeys(); len(configKeys) > 0 {
		w.Header(4, "Configuration")
		w.Paragraph(fmt.Sprintf("This rule accepts the following configuration options: %s",
			InlineCode(strings.Join(configKeys, ", "))))
	}

	w.Line("---")
	w.Newline()
}
