// Package rules provides the SQLAlchemy 2.0 mapping rules.
//
// Rules are organized by category:
//   - annotation: Rules about Mapped[] annotations (SA201)
//   - legacy: Rules about superseded 1.x constructs (SA202-SA203)
//
// To register all rules with the global lint registry, import this package
// with a blank identifier:
//
//	import _ "github.com/leapstack-labs/sqla2lint/pkg/lint/rules"
//
// Individual rule categories can also be imported:
//
//	import _ "github.com/leapstack-labs/sqla2lint/pkg/lint/rules/legacy"
package rules
