package core

// LintConfig holds lint rule configuration.
type LintConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled"`

	// Select restricts checking to these rule IDs when non-empty
	Select []string `koanf:"select"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`

	// Rules contains rule-specific options
	Rules map[string]RuleOptions `koanf:"rules"`

	// Vocabulary extends the built-in mapping vocabulary
	Vocabulary RuleOptions `koanf:"vocabulary"`
}

// RuleOptions holds rule-specific configuration options.
type RuleOptions map[string]any
