package commands

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/sqla2lint/internal/cli/output"
	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/lint"
	_ "github.com/leapstack-labs/sqla2lint/pkg/lint/rules" // register rules
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group   string // Filter by group
	Verbose bool   // Show full documentation
	Format  string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available lint rules",
		Long: `List all available lint rules with their documentation.

Rules are organized by group (annotation, legacy). Use --verbose to see the
rationale for each rule, or pass a rule ID for its full documentation
including examples and fix guidance.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # List all rules
  sqla2lint rules

  # Show details for a specific rule
  sqla2lint rules SA203

  # List rules in the legacy group
  sqla2lint rules --group legacy

  # Show full documentation
  sqla2lint rules -V

  # Output as JSON
  sqla2lint rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show full documentation")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml")

	return cmd
}

// RulesOutput is the structured output for a rules listing.
type RulesOutput struct {
	Rules []core.RuleInfo `json:"rules" yaml:"rules"`
	Count int             `json:"count" yaml:"count"`
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	r := NewCommandContext(cmd, opts.Format).Renderer

	rules := filterRulesByGroup(lint.AllRules(), opts.Group)
	slices.SortFunc(rules, func(a, b core.RuleInfo) int {
		if c := strings.Compare(a.Group, b.Group); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if ok, err := r.Structured(RulesOutput{Rules: rules, Count: len(rules)}); ok {
		return err
	}

	if len(rules) == 0 {
		r.Warning(fmt.Sprintf("no rules in group %q", opts.Group))
		return nil
	}

	listRulesTable(r, rules, opts.Verbose)
	return nil
}

func filterRulesByGroup(rules []core.RuleInfo, group string) []core.RuleInfo {
	if group == "" {
		return rules
	}

	var filtered []core.RuleInfo
	for _, r := range rules {
		if strings.EqualFold(r.Group, group) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// listRulesTable renders one table per group. The renderer picks box
// drawing or markdown for the tables and headings.
func listRulesTable(r *output.Renderer, rules []core.RuleInfo, verbose bool) {
	title := cases.Title(language.English)
	markdown := r.EffectiveMode() == output.ModeMarkdown

	r.Header(1, fmt.Sprintf("Lint Rules (%d)", len(rules)))

	header := []string{"ID", "Name", "Severity", "Description"}
	if verbose {
		header = append(header, "Rationale")
	}

	for group, members := range groupRules(rules) {
		r.Header(2, title.String(group))

		rows := make([][]string, 0, len(members))
		for _, rule := range members {
			sev := rule.DefaultSeverity.String()
			if !markdown {
				sev = severityStyle(r.Styles(), rule.DefaultSeverity).Render(sev)
			}
			row := []string{rule.ID, rule.Name, sev, rule.Description}
			if verbose {
				row = append(row, truncateOneLine(rule.Rationale, 80))
			}
			rows = append(rows, row)
		}
		r.Table(header, rows)
		r.Println("")
	}

	if !markdown {
		r.Println(r.Styles().Muted.Render("Use 'sqla2lint rules <rule-id>' for detailed documentation"))
	}
}

// groupRules yields consecutive runs of rules sharing a group. Rules must
// be sorted by group.
func groupRules(rules []core.RuleInfo) iter.Seq2[string, []core.RuleInfo] {
	return func(yield func(string, []core.RuleInfo) bool) {
		for start := 0; start < len(rules); {
			end := start + 1
			for end < len(rules) && rules[end].Group == rules[start].Group {
				end++
			}
			if !yield(rules[start].Group, rules[start:end]) {
				return
			}
			start = end
		}
	}
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	r := NewCommandContext(cmd, opts.Format).Renderer

	rule, ok := lint.GetRuleByID(normalizeID(ruleID))
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	info := lint.GetRuleInfo(rule)

	if ok, err := r.Structured(info); ok {
		return err
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		showRuleMarkdown(r, &info)
		return nil
	}
	showRuleText(r, &info)
	return nil
}

// showRuleText displays detailed rule info in text format.
func showRuleText(r *output.Renderer, rule *core.RuleInfo) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")

	r.Printf("  %s: %s\n", styles.Bold.Render("Group"), rule.Group)
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), severityStyle(styles, rule.DefaultSeverity).Render(rule.DefaultSeverity.String()))
	r.Printf("  %s: %s\n", styles.Bold.Render("Docs"), lint.BuildDocURL(rule.ID))
	r.Println("")

	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println(styles.Bold.Render("Why This Matters"))
		r.Println("  " + rule.Rationale)
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println(styles.Bold.Render("Bad Example"))
		for _, line := range strings.Split(rule.BadExample, "\n") {
			r.Println(styles.Muted.Render("  " + line))
		}
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println(styles.Bold.Render("Good Example"))
		for _, line := range strings.Split(rule.GoodExample, "\n") {
			r.Println(styles.Success.Render("  " + line))
		}
		r.Println("")
	}

	if rule.Fix != "" {
		r.Println(styles.Bold.Render("How to Fix"))
		r.Println("  " + rule.Fix)
		r.Println("")
	}

	if len(rule.ConfigKeys) > 0 {
		r.Println(styles.Bold.Render("Configuration"))
		r.Printf("  Options: %s\n", strings.Join(rule.ConfigKeys, ", "))
		r.Println("")
	}
}

// showRuleMarkdown displays detailed rule info in markdown format.
func showRuleMarkdown(r *output.Renderer, rule *core.RuleInfo) {
	r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
	r.Printf("**Group:** %s | **Severity:** `%s`\n\n", rule.Group, rule.DefaultSeverity.String())
	r.Println(rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println("## Why This Matters")
		r.Println("")
		r.Println(rule.Rationale)
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println("## Bad Example")
		r.Println("")
		r.Println("```python")
		r.Println(rule.BadExample)
		r.Println("```")
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println("## Good Example")
		r.Println("")
		r.Println("```python")
		r.Println(rule.GoodExample)
		r.Println("```")
		r.Println("")
	}

	if rule.Fix != "" {
		r.Println("## How to Fix")
		r.Println("")
		r.Println(rule.Fix)
		r.Println("")
	}

	if len(rule.ConfigKeys) > 0 {
		r.Println("## Configuration")
		r.Println("")
		r.Printf("Options: `%s`\n", strings.Join(rule.ConfigKeys, "`, `"))
		r.Println("")
	}

	r.Printf("[Documentation](%s)\n", lint.BuildDocURL(rule.ID))
}

// Helper functions

func severityStyle(styles *output.Styles, sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return styles.Error
	case core.SeverityWarning:
		return styles.Warning
	case core.SeverityInfo:
		return styles.Info
	default:
		return styles.Muted
	}
}

func truncateOneLine(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
