package legacy

import (
	"fmt"

	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/lint"
)

func init() {
	lint.Register(Backref)
}

// Backref detects the implicit backref keyword on relationship().
var Backref = lint.RuleDef{
	ID:          "SA203",
	Name:        "legacy.backref",
	Group:       "legacy",
	Description: "relationship(backref=...) is legacy; declare both sides with back_populates.",
	Severity:    core.SeverityWarning,
	Kinds:       []core.Kind{core.KindCall},
	Check:       checkBackref,

	Rationale: `backref creates the inverse attribute at mapper configuration time, so it
is invisible to type checkers and to readers of the other class. Explicit
back_populates on both sides keeps every attribute declared where it lives.`,

	BadExample: `class Parent(Base):
    children: Mapped[List["Child"]] = relationship(backref="parent")`,

	GoodExample: `class Parent(Base):
    children: Mapped[List["Child"]] = relationship(back_populates="parent")

class Child(Base):
    parent: Mapped["Parent"] = relationship(back_populates="children")`,

	Fix: "Replace backref with back_populates and declare the inverse relationship on the other class.",
}

// BackrefMessage formats the SA203 message.
func BackrefMessage(legacy, replacement string) string {
	return fmt.Sprintf("Use of legacy relationship `%s` consider using `%s` instead", legacy, replacement)
}

func checkBackref(node core.Node, pass *lint.Pass) []lint.Diagnostic {
	call, ok := node.(*core.Call)
	if !ok || call == nil || !lint.IsRelationshipConstruct(pass.Vocabulary, call.Func) {
		return nil
	}

	var diagnostics []lint.Diagnostic
	for _, legacy := range pass.Vocabulary.LegacyKeywords() {
		kw := call.Keyword(legacy)
		if kw == nil || core.IsNil(kw.Value) {
			continue
		}
		replacement, _ := pass.Vocabulary.LegacyKeyword(legacy)
		diagnostics = append(diagnostics, pass.ReportNode(kw.Value, BackrefMessage(legacy, replacement)))
	}
	return diagnostics
}
