package legacy

import (
	"fmt"

	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/lint"
)

func init() {
	lint.Register(DynamicMapped)
}

// DynamicMapped detects the legacy dynamic collection annotation.
var DynamicMapped = lint.RuleDef{
	ID:          "SA202",
	Name:        "legacy.dynamic-mapped",
	Group:       "legacy",
	Description: "DynamicMapped is a legacy collection type superseded by WriteOnlyMapped.",
	Severity:    core.SeverityWarning,
	Kinds:       []core.Kind{core.KindAnnAssign},
	Check:       checkDynamicMapped,

	Rationale: `The "dynamic" loader strategy returns a legacy Query object and is not
compatible with asyncio. WriteOnlyMapped provides the same large-collection
behaviour through explicit select() statements.`,

	BadExample: `class Parent(Base):
    children: DynamicMapped["Child"] = relationship(back_populates="parent")`,

	GoodExample: `class Parent(Base):
    children: WriteOnlyMapped["Child"] = relationship(back_populates="parent")`,

	Fix: "Replace DynamicMapped with WriteOnlyMapped and query the collection with select().",
}

// DynamicMappedMessage formats the SA202 message.
func DynamicMappedMessage(legacy, replacement string) string {
	return fmt.Sprintf("Use of legacy collection `%s` consider using `%s`", legacy, replacement)
}

// checkDynamicMapped matches only the annotation head, so a legacy collection
// nested inside Optional[...] or a `| None` union is not reported.
func checkDynamicMapped(node core.Node, pass *lint.Pass) []lint.Diagnostic {
	ann, ok := node.(*core.AnnAssign)
	if !ok || ann == nil || core.IsNil(ann.Annotation) {
		return nil
	}

	name, ok := lint.TrailingName(lint.AnnotationHead(ann.Annotation))
	if !ok {
		return nil
	}
	replacement, ok := pass.Vocabulary.LegacyCollection(name)
	if !ok {
		return nil
	}

	return []lint.Diagnostic{pass.ReportNode(ann.Annotation, DynamicMappedMessage(name, replacement))}
}
