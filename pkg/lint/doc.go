// Package lint checks SQLAlchemy 2.0 declarative mappings in parsed Python
// modules.
//
// # Architecture
//
//  1. Root package (pkg/lint/): rule contracts, the registry, the vocabulary,
//     pattern recognizers and the Checker
//  2. Rules (pkg/lint/rules/): one file per rule code, registered via init()
//
// The package never parses source; it consumes the tree produced by
// pkg/parser.
//
// # Rule Registration
//
// Rules are automatically registered via init() functions when their package
// is imported:
//
//	import _ "github.com/leapstack-labs/sqla2lint/pkg/lint/rules"
//
// # Rule Codes
//
//   - SA201: mapping construct assigned without a Mapped annotation
//   - SA202: legacy DynamicMapped collection annotation
//   - SA203: legacy backref keyword on relationship()
//
// # Checking
//
//	checker := lint.NewChecker(lint.DefaultVocabulary(), lint.NewConfig())
//	for d := range checker.Diagnostics(mod) {
//		fmt.Println(d.Pos, d.Code, d.Message)
//	}
//
// The checker walks the tree once in pre-order. At every node each enabled
// rule whose Kinds include the node's kind runs, in rule ID order.
//
// # Configuration
//
// Use Config to control which rules are enabled and their severity:
//
//	config := lint.NewConfig()
//	config.Disable("SA203")
//	config.SetSeverity("SA201", core.SeverityError)
//
// # Creating Custom Rules
//
// Implement the Rule interface or use RuleDef:
//
//	var MyRule = lint.RuleDef{
//		ID:          "SA299",
//		Name:        "custom.rule",
//		Group:       "custom",
//		Description: "My custom rule description",
//		Severity:    core.SeverityWarning,
//		Kinds:       []core.Kind{core.KindCall},
//		Check:       checkMyRule,
//	}
//
//	func init() {
//		lint.Register(MyRule)
//	}
package lint
