// Package core defines the shared language of the sqla2lint system.
//
// This package contains:
//   - The Python syntax tree model (Node, Expr, Stmt and the Kind-tagged variants)
//   - Severity and RuleInfo, shared by the lint engine and its hosts
//   - Configuration types (LintConfig, VocabularyConfig)
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
