package annotation

import (
	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/lint"
)

func init() {
	lint.Register(MissingMappedAnnotation)
}

// MissingMappedMessage is reported for every SA201 finding.
const MissingMappedMessage = "Missing `Mapped` or other ORM container class type annotation"

// MissingMappedAnnotation detects mapping constructs assigned without an annotation.
var MissingMappedAnnotation = lint.RuleDef{
	ID:          "SA201",
	Name:        "annotation.missing-mapped",
	Group:       "annotation",
	Description: "Mapping constructs should be declared with a Mapped[] annotation.",
	Severity:    core.SeverityWarning,
	Kinds:       []core.Kind{core.KindAssign},
	Check:       checkMissingMappedAnnotation,

	Rationale: `SQLAlchemy 2.0 derives the Python type of a mapped attribute from its
Mapped[] annotation. Without it, type checkers see the raw construct instead of the
attribute value, and nullability is not inferred from Optional[].`,

	BadExample: `class User(Base):
    id = mapped_column(primary_key=True)
    name = mapped_column(String(30))`,

	GoodExample: `class User(Base):
    id: Mapped[int] = mapped_column(primary_key=True)
    name: Mapped[str] = mapped_column(String(30))`,

	Fix: "Annotate the attribute with Mapped[T] (or another ORM container such as WriteOnlyMapped).",
}

func checkMissingMappedAnnotation(node core.Node, pass *lint.Pass) []lint.Diagnostic {
	assign, ok := node.(*core.Assign)
	if !ok || assign == nil || len(assign.Targets) != 1 {
		return nil
	}

	call, ok := assign.Value.(*core.Call)
	if !ok || call == nil || !lint.IsMappingConstruct(pass.Vocabulary, call.Func) {
		return nil
	}

	// Destructuring targets (a, b = ...) are left alone.
	target := assign.Targets[0]
	switch target.(type) {
	case *core.Name, *core.Attribute, *core.Subscript:
	default:
		return nil
	}
	if core.IsNil(target) {
		return nil
	}

	return []lint.Diagnostic{pass.ReportNode(target, MissingMappedMessage)}
}
