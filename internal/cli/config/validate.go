package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqla2lint/internal/cli/output"
	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/lint"
)

// Validate checks if the configuration is valid. Rule references must name
// a registered rule or a prefix of one, so rule packages need to be linked
// in before calling it.
func (c *Config) Validate() error {
	var errs []error

	if !output.IsValidMode(c.OutputFormat) {
		errs = append(errs, fmt.Errorf("output: unknown format %q (valid: %v)", c.OutputFormat, output.Modes))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers: must not be negative, got %d", c.Workers))
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		errs = append(errs, errors.New("cache.path is required when the cache is enabled"))
	}

	if c.Lint != nil {
		errs = append(errs, validateLint(c.Lint)...)
	}

	return errors.Join(errs...)
}

func validateLint(lc *LintConfig) []error {
	var errs []error

	for _, id := range lc.Disabled {
		if !matchesRule(id) {
			errs = append(errs, fmt.Errorf("lint.disabled: no rule matches %q", id))
		}
	}
	for _, id := range lc.Select {
		if !matchesRule(id) {
			errs = append(errs, fmt.Errorf("lint.select: no rule matches %q", id))
		}
	}
	for id, sev := range lc.Severity {
		if _, ok := lint.GetRuleByID(normalizeRuleID(id)); !ok {
			errs = append(errs, fmt.Errorf("lint.severity: unknown rule %q", id))
			continue
		}
		if _, ok := core.ParseSeverity(sev); !ok {
			errs = append(errs, fmt.Errorf("lint.severity.%s: invalid severity %q", id, sev))
		}
	}
	for id := range lc.Rules {
		if _, ok := lint.GetRuleByID(normalizeRuleID(id)); !ok {
			errs = append(errs, fmt.Errorf("lint.rules: unknown rule %q", id))
		}
	}
	if _, err := lint.VocabularyFromOptions(lc.Vocabulary); err != nil {
		errs = append(errs, fmt.Errorf("lint.%w", err))
	}

	return errs
}

// matchesRule reports whether id names a registered rule or is a prefix of one.
func matchesRule(id string) bool {
	id = normalizeRuleID(id)
	if id == "" {
		return false
	}
	for _, r := range lint.GetAll() {
		if strings.HasPrefix(r.ID(), id) {
			return true
		}
	}
	return false
}
