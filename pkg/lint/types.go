package lint

import (
	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/token"
)

// =============================================================================
// Rule Definitions
// =============================================================================

// RuleDef is a data-driven rule definition.
// Rules are stateless - all context comes via the node and the Pass.
type RuleDef struct {
	ID          string        // Unique identifier, e.g., "SA201"
	Name        string        // Human-readable name, e.g., "annotation.missing-mapped"
	Group       string        // Category, e.g., "annotation", "legacy"
	Description string        // Human-readable description
	Severity    core.Severity // Default severity
	Kinds       []core.Kind   // Node kinds the rule is dispatched on
	Check       CheckFunc     // The check function
	ConfigKeys  []string      // Configuration keys this rule accepts (for rule-specific options)

	// Documentation fields for richer rule documentation
	Rationale   string // Why this rule exists, what problems it prevents
	BadExample  string // Code showing the anti-pattern
	GoodExample string // Code showing the correct pattern
	Fix         string // How to fix violations (when not obvious)
}

// CheckFunc inspects a single node whose kind is one of the rule's Kinds.
type CheckFunc func(node core.Node, pass *Pass) []Diagnostic

// Pass is what a rule sees besides the node: the shared vocabulary, its own
// options and the identity it reports under. A Pass is built once per checker
// and never mutated.
type Pass struct {
	RuleID     string
	Severity   core.Severity
	Vocabulary *Vocabulary
	Options    map[string]any
}

// Report builds a diagnostic for the pass's rule.
func (p *Pass) Report(pos, end token.Position, message string) Diagnostic {
	return Diagnostic{
		Code:     p.RuleID,
		Severity: p.Severity,
		Message:  message,
		Pos:      pos,
		EndPos:   end,
	}
}

// ReportNode builds a diagnostic spanning n.
func (p *Pass) ReportNode(n core.Node, message string) Diagnostic {
	return p.Report(n.Pos(), n.End(), message)
}

// =============================================================================
// Diagnostics
// =============================================================================

// Diagnostic represents a lint finding.
type Diagnostic struct {
	Code     string
	Severity core.Severity
	Message  string
	Pos      token.Position
	EndPos   token.Position // Optional: end of the problematic range

	// DocumentationURL links to the rule documentation, e.g. "https://sqla2lint.dev/docs/rules/sa201"
	DocumentationURL string
}

// =============================================================================
// Rule Interface
// =============================================================================

// Rule is the interface all lint rules implement.
type Rule interface {
	// ID returns the unique identifier, e.g., "SA201"
	ID() string

	// Name returns the human-readable name, e.g., "legacy.backref"
	Name() string

	// Group returns the category, e.g., "annotation", "legacy"
	Group() string

	// Description returns a human-readable description
	Description() string

	// DefaultSeverity returns the default severity for this rule
	DefaultSeverity() core.Severity

	// ConfigKeys returns configuration keys this rule accepts
	ConfigKeys() []string

	// Documentation methods for richer rule documentation
	Rationale() string   // Why this rule exists, what problems it prevents
	BadExample() string  // Code showing the anti-pattern
	GoodExample() string // Code showing the correct pattern
	Fix() string         // How to fix violations (when not obvious)

	// Kinds returns the node kinds the checker dispatches to this rule.
	Kinds() []core.Kind

	// Check inspects one node and returns diagnostics.
	Check(node core.Node, pass *Pass) []Diagnostic
}

// GetRuleInfo extracts metadata from a Rule for documentation/tooling.
func GetRuleInfo(r Rule) core.RuleInfo {
	kinds := make([]string, 0, len(r.Kinds()))
	for _, k := range r.Kinds() {
		kinds = append(kinds, k.String())
	}

	return core.RuleInfo{
		ID:              r.ID(),
		Name:            r.Name(),
		Group:           r.Group(),
		Description:     r.Description(),
		DefaultSeverity: r.DefaultSeverity(),
		ConfigKeys:      r.ConfigKeys(),
		Kinds:           kinds,
		Rationale:       r.Rationale(),
		BadExample:      r.BadExample(),
		GoodExample:     r.GoodExample(),
		Fix:             r.Fix(),
	}
}

// =============================================================================
// Wrapped RuleDef
// =============================================================================

// wrappedRuleDef wraps a RuleDef to implement Rule.
type wrappedRuleDef struct {
	def RuleDef
}

// WrapRuleDef wraps a RuleDef to implement the Rule interface.
func WrapRuleDef(def RuleDef) Rule {
	return &wrappedRuleDef{def: def}
}

func (w *wrappedRuleDef) ID() string                     { return w.def.ID }
func (w *wrappedRuleDef) Name() string                   { return w.def.Name }
func (w *wrappedRuleDef) Group() string                  { return w.def.Group }
func (w *wrappedRuleDef) Description() string            { return w.def.Description }
func (w *wrappedRuleDef) DefaultSeverity() core.Severity { return w.def.Severity }
func (w *wrappedRuleDef) ConfigKeys() []string           { return w.def.ConfigKeys }
func (w *wrappedRuleDef) Kinds() []core.Kind             { return w.def.Kinds }

// Documentation methods
func (w *wrappedRuleDef) Rationale() string   { return w.def.Rationale }
func (w *wrappedRuleDef) BadExample() string  { return w.def.BadExample }
func (w *wrappedRuleDef) GoodExample() string { return w.def.GoodExample }
func (w *wrappedRuleDef) Fix() string         { return w.def.Fix }

func (w *wrappedRuleDef) Check(node core.Node, pass *Pass) []Diagnostic {
	if w.def.Check == nil {
		return nil
	}
	return w.def.Check(node, pass)
}

// Unwrap returns the underlying RuleDef.
func (w *wrappedRuleDef) Unwrap() RuleDef {
	return w.def
}
