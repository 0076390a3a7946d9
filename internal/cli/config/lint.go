package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/lint"
)

// BuildLintConfig converts the lint section into a checker configuration.
// Rule IDs are matched case-insensitively.
func (c *Config) BuildLintConfig() (*lint.Config, error) {
	lintCfg := lint.NewConfig()
	if c.Lint == nil {
		return lintCfg, nil
	}

	for _, id := range c.Lint.Disabled {
		lintCfg.Disable(normalizeRuleID(id))
	}
	for _, id := range c.Lint.Select {
		lintCfg.Select(normalizeRuleID(id))
	}
	for id, value := range c.Lint.Severity {
		sev, ok := core.ParseSeverity(value)
		if !ok {
			return nil, fmt.Errorf("lint.severity.%s: invalid severity %q", id, value)
		}
		lintCfg.SetSeverity(normalizeRuleID(id), sev)
	}
	for id, opts := range c.Lint.Rules {
		lintCfg.SetRuleOptions(normalizeRuleID(id), opts)
	}

	return lintCfg, nil
}

// BuildVocabulary builds the mapping vocabulary from lint.vocabulary.
func (c *Config) BuildVocabulary() (*lint.Vocabulary, error) {
	if c.Lint == nil {
		return lint.DefaultVocabulary(), nil
	}
	return lint.VocabularyFromOptions(c.Lint.Vocabulary)
}

func normalizeRuleID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
