package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/sqla2lint/internal/cli"
	"github.com/leapstack-labs/sqla2lint/internal/cli/config"
)

// binary is the installed command name used in usage lines.
const binary = "sqla2lint"

// envVars lists the environment overrides shown on the CLI index. Keys map
// onto config keys with "__" as the nesting separator.
var envVars = [][2]string{
	{"output", "Output format: auto, text, markdown, json, yaml"},
	{"verbose", "Enable debug logging"},
	{"workers", "Number of concurrent parsers"},
	{"disable_noqa", "Ignore noqa comments"},
	{"cache__enabled", "Enable the result cache"},
	{"cache__path", "Result cache database path"},
	{"serve__addr", "Listen address for the serve command"},
}

// generateCLIDocs writes an index page and one page per user-facing command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": cliIndex(root)}
	for _, cmd := range documented(root) {
		pages[cmd.Name()+".md"] = commandPage(cmd)
	}

	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(outDir, name), pages[name], 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

// documented returns the subcommands that get a page.
func documented(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() && sub.Name() != "help" {
			out = append(out, sub)
		}
	}
	return out
}

func cliIndex(root *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for sqla2lint")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("sqla2lint checks SQLAlchemy declarative models for constructs superseded by the 2.0 typed mapping style.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/sqla2lint/cmd/sqla2lint@latest")

	w.Header(2, "Quick Start")
	w.CodeBlock("bash", strings.Join([]string{
		"# Check the current project",
		binary + " check",
		"",
		"# Only legacy rules, as JSON",
		binary + " check --select SA202,SA203 --format json src/",
		"",
		"# Explain a rule",
		binary + " rules SA203",
	}, "\n"))

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documented(root) {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name()),
			cleanDescription(cmd.Short),
		})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	w.Table(flagHeaders, flagRows(root.PersistentFlags()))

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Any configuration key can be set with the %s prefix. Nested keys use a double underscore:",
		InlineCode(config.EnvPrefix)))
	var envRows [][]string
	for _, v := range envVars {
		envRows = append(envRows, []string{InlineCode(config.EnvPrefix + strings.ToUpper(v[0])), v[1]})
	}
	w.Table([]string{"Variable", "Description"}, envRows)
	w.Paragraph("Command-line flags take precedence over environment variables, which take precedence over the config file.")

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "No issues found"},
		{InlineCode("1"), "Issues found, a file could not be checked, or an error occurred"},
	})
	w.Paragraph("Pass " + InlineCode("--exit-zero") + " to " + InlineCode("check") + " to always exit 0 after reporting.")

	return w.Bytes()
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	w.Paragraph(strings.TrimSpace(firstNonEmpty(cmd.Long, cmd.Short)))

	w.Header(2, "Usage")
	w.CodeBlock("bash", usage(cmd))

	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.BulletList(aliases)
	}

	if subs := documented(cmd); len(subs) > 0 {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range subs {
			rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if rows := flagRows(cmd.LocalNonPersistentFlags()); len(rows) > 0 {
		w.Header(2, "Options")
		w.Table(flagHeaders, rows)
	}
	if rows := flagRows(cmd.InheritedFlags()); len(rows) > 0 {
		w.Header(2, "Global Options")
		w.Table(flagHeaders, rows)
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	return w.Bytes()
}

// usage renders the command line as a user would type it.
func usage(cmd *cobra.Command) string {
	if cmd.HasAvailableSubCommands() {
		return fmt.Sprintf("%s %s <subcommand> [options]", binary, cmd.Name())
	}
	line := cmd.UseLine()
	if !strings.HasPrefix(line, binary) {
		line = binary + " " + line
	}
	return line
}

var flagHeaders = []string{"Option", "Short", "Default", "Description"}

// flagRows lists visible flags. String defaults are shown as code; empty
// defaults and the zero values of slices are left blank.
func flagRows(flags *pflag.FlagSet) [][]string {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		def := f.DefValue
		switch {
		case def == "" || def == "[]":
			def = ""
		case f.Value.Type() == "string":
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode("--" + f.Name), short, def, cleanDescription(f.Usage)})
	})
	return rows
}

// dedent strips the indentation shared by all non-blank lines.
func dedent(text string) string {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	var prefix *string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if prefix == nil {
			prefix = &indent
			continue
		}
		n := 0
		for n < len(*prefix) && n < len(indent) && (*prefix)[n] == indent[n] {
			n++
		}
		shared := indent[:n]
		prefix = &shared
	}
	if prefix != nil {
		for i, line := range lines {
			lines[i] = strings.TrimPrefix(line, *prefix)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
