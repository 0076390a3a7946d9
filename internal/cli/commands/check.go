package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqla2lint/internal/cli/output"
	"github.com/leapstack-labs/sqla2lint/internal/engine"
	"github.com/leapstack-labs/sqla2lint/pkg/core"
	_ "github.com/leapstack-labs/sqla2lint/pkg/lint/rules" // register rules
	"github.com/leapstack-labs/sqla2lint/pkg/parser"
	"github.com/spf13/cobra"
)

// ErrIssuesFound is returned by check when diagnostics or unreadable files
// were reported, so the process exits non-zero.
var ErrIssuesFound = errors.New("issues found")

// File-level error codes, following flake8.
const (
	codeSyntaxError = "E999"
	codeIOError     = "E902"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Format      string   // Output format: text, markdown, json, yaml
	Select      []string // Restrict to these rule IDs or prefixes
	Disable     []string // Rule IDs or prefixes to disable
	Severity    string   // Minimum severity: error, warning, info, hint
	Watch       bool     // Re-check on change
	DisableNoQA bool     // Ignore noqa comments
	NoCache     bool     // Skip the result cache for this run
	ExitZero    bool     // Exit 0 even when issues are found
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Check SQLAlchemy models for legacy declarative patterns",
		Long: `Check Python files for SQLAlchemy declarative mappings that are not
written in the 2.0 style.

Files and directories may be given; directories are searched for *.py and
*.pyi files. Lines carrying a "# noqa" comment are skipped, and
"# noqa: SA203" skips only the listed codes.

Output adapts to environment:
  - Terminal: flake8-style lines with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # Check the current directory
  sqla2lint check

  # Check specific files and directories
  sqla2lint check app/models.py app/db

  # Only report legacy patterns
  sqla2lint check --select SA202,SA203

  # Output as JSON
  sqla2lint check --format json

  # Re-check whenever a file changes
  sqla2lint check --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json, yaml")
	cmd.Flags().StringSliceVar(&opts.Select, "select", nil, "Rule IDs or prefixes to run")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs or prefixes to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "", "Minimum severity: error, warning, info, hint")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-check files when they change")
	cmd.Flags().BoolVar(&opts.DisableNoQA, "disable-noqa", false, "Report diagnostics on lines with noqa comments")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Do not read or write the result cache")
	cmd.Flags().BoolVar(&opts.ExitZero, "exit-zero", false, "Exit with status 0 even if issues are found")

	_ = cmd.RegisterFlagCompletionFunc("severity", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"error", "warning", "info", "hint"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)
	r := cmdCtx.Renderer

	threshold, err := parseThreshold(opts.Severity)
	if err != nil {
		return err
	}

	eng, _, cleanup, err := cmdCtx.NewEngine(EngineOptions{
		Select:      opts.Select,
		Disable:     opts.Disable,
		Threshold:   threshold,
		DisableNoQA: opts.DisableNoQA,
		NoCache:     opts.NoCache,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	ctx := cmd.Context()
	report, err := eng.Run(ctx, paths)
	if err != nil {
		if errors.Is(err, engine.ErrNoFiles) {
			r.Warning(fmt.Sprintf("no Python files found in %s", strings.Join(paths, ", ")))
			return nil
		}
		return fmt.Errorf("check failed: %w", err)
	}

	hasIssues, err := renderCheckReport(r, report)
	if err != nil {
		return err
	}

	if opts.Watch {
		cmdCtx.Logger.Info("watching for changes", "paths", paths)
		return eng.Watch(ctx, paths, func(rep *engine.Report) {
			if _, err := renderCheckReport(r, rep); err != nil {
				r.Error(err.Error())
			}
		})
	}

	if hasIssues && !opts.ExitZero {
		return ErrIssuesFound
	}
	return nil
}

// buildCheckOutput converts a report into its presentation form. Positions
// become 1-based here.
func buildCheckOutput(report *engine.Report) output.CheckOutput {
	out := output.CheckOutput{
		RunID:   report.RunID,
		Summary: output.CheckSummary{FilesChecked: len(report.Files)},
		Files:   []output.CheckFileResult{},
	}

	for _, f := range report.Files {
		if f.Cached {
			out.Summary.FilesCached++
		}
		if f.Err == nil && len(f.Diagnostics) == 0 {
			continue
		}

		res := output.CheckFileResult{Path: f.Path, Diagnostics: []output.CheckDiagnostic{}}
		if f.Err != nil {
			out.Summary.ParseErrors++
			res.Error = f.Err.Error()
		}
		for _, d := range f.Diagnostics {
			out.Summary.TotalIssues++
			switch d.Severity {
			case core.SeverityError:
				out.Summary.Errors++
			case core.SeverityWarning:
				out.Summary.Warnings++
			case core.SeverityInfo:
				out.Summary.Info++
			case core.SeverityHint:
				out.Summary.Hints++
			}
			res.Diagnostics = append(res.Diagnostics, output.CheckDiagnostic{
				Code:     d.Code,
				Severity: d.Severity.String(),
				Message:  d.Message,
				Line:     d.Pos.Line,
				Column:   d.Pos.Column + 1,
				URL:      d.DocumentationURL,
			})
		}
		out.Files = append(out.Files, res)
	}

	return out
}

// renderCheckReport writes a report and reports whether it holds any issue.
func renderCheckReport(r *output.Renderer, report *engine.Report) (bool, error) {
	out := buildCheckOutput(report)
	hasIssues := out.Summary.TotalIssues > 0 || out.Summary.ParseErrors > 0

	if ok, err := r.Structured(out); ok {
		return hasIssues, err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		renderCheckMarkdown(r, report, out.Summary)
	} else {
		renderCheckText(r, report)
	}

	if !hasIssues {
		r.Success(fmt.Sprintf("No issues found in %d files", out.Summary.FilesChecked))
		return false, nil
	}
	r.Println(summaryLine(out.Summary))
	return true, nil
}

// renderCheckText writes one flake8-style line per diagnostic.
func renderCheckText(r *output.Renderer, report *engine.Report) {
	styles := r.Styles()
	for _, f := range report.Files {
		path := styles.Path.Render(f.Path)
		if f.Err != nil {
			line, col, code, msg := fileError(f.Err)
			r.Printf("%s:%d:%d: %s %s\n", path, line, col, styles.Error.Render(code), msg)
			continue
		}
		for _, d := range f.Diagnostics {
			r.Printf("%s:%d:%d: %s %s\n",
				path,
				d.Pos.Line,
				d.Pos.Column+1,
				severityStyle(styles, d.Severity).Render(d.Code),
				d.Message,
			)
		}
	}
}

func renderCheckMarkdown(r *output.Renderer, report *engine.Report, summary output.CheckSummary) {
	r.Header(1, "Check Results")
	if summary.TotalIssues == 0 && summary.ParseErrors == 0 {
		return
	}

	for _, f := range report.Files {
		if f.Err == nil && len(f.Diagnostics) == 0 {
			continue
		}
		r.Header(2, "`"+f.Path+"`")
		if f.Err != nil {
			line, col, code, msg := fileError(f.Err)
			r.Printf("- `%d:%d` **%s** %s\n", line, col, code, msg)
		}
		for _, d := range f.Diagnostics {
			r.Printf("- `%d:%d` **%s** (%s) %s\n", d.Pos.Line, d.Pos.Column+1, d.Code, d.Severity, d.Message)
		}
		r.Println("")
	}
}

// fileError describes a file that could not be checked: a syntax error at
// its position, or an I/O error at 0:0.
func fileError(err error) (line, col int, code, msg string) {
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		return perr.Pos.Line, perr.Pos.Column + 1, codeSyntaxError, "SyntaxError: " + perr.Message
	}
	return 0, 0, codeIOError, err.Error()
}

func summaryLine(s output.CheckSummary) string {
	parts := []string{fmt.Sprintf("%d issues", s.TotalIssues)}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", s.Errors))
	}
	if s.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", s.Warnings))
	}
	if s.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", s.Info))
	}
	if s.Hints > 0 {
		parts = append(parts, fmt.Sprintf("%d hints", s.Hints))
	}
	if s.ParseErrors > 0 {
		parts = append(parts, fmt.Sprintf("%d files not checked", s.ParseErrors))
	}
	return fmt.Sprintf("Summary: %s in %d files", strings.Join(parts, ", "), s.FilesChecked)
}
