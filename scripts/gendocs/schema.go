package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/sqla2lint/internal/cli/config"
)

// generateSchemaDocs generates the configuration reference.
func generateSchemaDocs(outDir string) error {
	log.Printf("Generating schema docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Generate configuration reference
	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "general", "cache", "serve", "lint", "vocabulary"
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/cli/config/types.go Config and core.LintConfig.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: auto, text, markdown, json, yaml", Category: "general"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Enable debug logging", Category: "general"},
		{Name: "workers", Type: "int", Default: "0", Description: "Concurrent parsers; 0 uses every CPU", Category: "general"},
		{Name: "exclude", Type: "[]string", Description: "Glob patterns skipped during discovery; a trailing / matches directories", Category: "general"},
		{Name: "disable_noqa", Type: "bool", Default: "false", Description: "Report diagnostics on lines with a noqa comment", Category: "general"},
		{Name: "docs_url", Type: "string", Description: "Base URL for rule documentation links", Category: "general"},

		{Name: "cache.enabled", Type: "bool", Default: "true", Description: "Reuse results for unchanged files", Category: "cache"},
		{Name: "cache.path", Type: "string", Default: config.DefaultCacheFile, Description: "SQLite database, relative to the config file", Category: "cache"},

		{Name: "serve.addr", Type: "string", Default: config.DefaultServeAddr, Description: "Listen address", Category: "serve"},
		{Name: "serve.watch", Type: "bool", Default: "false", Description: "Re-check files on change and stream events", Category: "serve"},

		{Name: "lint.select", Type: "[]string", Description: "Only run these rule IDs or prefixes", Category: "lint"},
		{Name: "lint.disabled", Type: "[]string", Description: "Rule IDs or prefixes to skip", Category: "lint"},
		{Name: "lint.severity", Type: "map[string]string", Description: "Severity override per rule ID", Category: "lint"},
		{Name: "lint.rules", Type: "map[string]map", Description: "Rule-specific options keyed by rule ID", Category: "lint"},

		{Name: "extra_mapping_names", Type: "[]string", Description: "Additional callables treated as mapping constructs", Category: "vocabulary"},
		{Name: "extra_relationship_names", Type: "[]string", Description: "Additional callables treated as relationships", Category: "vocabulary"},
		{Name: "legacy_collections", Type: "map[string]string", Description: "Legacy collection annotations and their replacement", Category: "vocabulary"},
	}
}

// fieldRows renders the fields of one category.
func fieldRows(fields []ConfigField, category string) [][]string {
	var rows [][]string
	for _, f := range fields {
		if f.Category != category {
			continue
		}
		defVal := "-"
		if f.Default != "" {
			defVal = InlineCode(f.Default)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, f.Description})
	}
	return rows
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()
	headers := []string{"Field", "Type", "Default", "Description"}
	fields := getConfigSchema()

	w.Frontmatter("Configuration", "sqla2lint configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("sqla2lint reads the first of %s found in the working directory or a parent directory.",
		strings.Join(quoted(config.ConfigFileNames), ", ")))
	w.Paragraph("Values are applied in order: built-in defaults, the config file, `SQLA2LINT_` environment variables, then command-line flags.")

	w.Header(2, "General")
	w.Table(headers, fieldRows(fields, "general"))

	w.Header(2, "Cache")
	w.Paragraph("Results are stored per file content and ruleset, so editing a file or changing rules re-checks it.")
	w.Table(headers, fieldRows(fields, "cache"))

	w.Header(2, "Server")
	w.Table(headers, fieldRows(fields, "serve"))

	w.Header(2, "Lint")
	w.Table(headers, fieldRows(fields, "lint"))

	w.Header(3, "Vocabulary")
	w.Paragraph("Set under `lint.vocabulary` to teach the rules about project-specific helpers:")
	w.Table(headers, fieldRows(fields, "vocabulary"))

	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# sqla2lint.yaml
output: auto
workers: 4
exclude:
  - migrations/
  - "*_pb2.py"

cache:
  enabled: true
  path: .sqla2lint/cache.db

serve:
  addr: 127.0.0.1:8787
  watch: true

lint:
  disabled: [SA202]
  severity:
    SA201: error
  vocabulary:
    extra_mapping_names: [audit_column]
    extra_relationship_names: [tenant_relationship]`)

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}

func quoted(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = InlineCode(n)
	}
	return out
}
