package lint

import (
	"iter"

	"github.com/leapstack-labs/sqla2lint/pkg/core"
	"github.com/leapstack-labs/sqla2lint/pkg/lint/internal/ast"
)

// Checker runs lint rules over parsed modules. A Checker holds no per-run
// state and may be shared by goroutines checking distinct trees.
type Checker struct {
	vocab  *Vocabulary
	rules  []boundRule
	byKind map[core.Kind][]*boundRule
}

type boundRule struct {
	rule Rule
	pass *Pass
}

// NewChecker creates a checker. A nil vocabulary means DefaultVocabulary, a
// nil config enables everything, and no rules means every registered rule.
// Rules run in ID order at each node.
func NewChecker(vocab *Vocabulary, cfg *Config, rules ...Rule) *Checker {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if cfg == nil {
		cfg = NewConfig()
	}
	if len(rules) == 0 {
		rules = GetAll()
	} else {
		rules = append([]Rule(nil), rules...)
		sortRules(rules)
	}

	c := &Checker{
		vocab:  vocab,
		byKind: make(map[core.Kind][]*boundRule),
	}
	for _, rule := range rules {
		if cfg.IsDisabled(rule.ID()) {
			continue
		}
		c.rules = append(c.rules, boundRule{
			rule: rule,
			pass: &Pass{
				RuleID:     rule.ID(),
				Severity:   cfg.GetSeverity(rule.ID(), rule.DefaultSeverity()),
				Vocabulary: vocab,
				Options:    cfg.GetRuleOptions(rule.ID()),
			},
		})
	}
	for i := range c.rules {
		br := &c.rules[i]
		for _, kind := range br.rule.Kinds() {
			c.byKind[kind] = append(c.byKind[kind], br)
		}
	}
	return c
}

// Vocabulary returns the vocabulary the checker matches against.
func (c *Checker) Vocabulary() *Vocabulary {
	return c.vocab
}

// Rules returns the enabled rules in evaluation order.
func (c *Checker) Rules() []Rule {
	rules := make([]Rule, 0, len(c.rules))
	for _, br := range c.rules {
		rules = append(rules, br.rule)
	}
	return rules
}

// Diagnostics lazily yields diagnostics for the tree rooted at root, in
// traversal order. Stopping the iteration early stops the traversal.
func (c *Checker) Diagnostics(root core.Node) iter.Seq[Diagnostic] {
	return func(yield func(Diagnostic) bool) {
		for node := range ast.Preorder(root) {
			for _, br := range c.byKind[node.Kind()] {
				for _, d := range br.rule.Check(node, br.pass) {
					if !yield(br.finish(d)) {
						return
					}
				}
			}
		}
	}
}

// Check returns every diagnostic for the tree. The result is never nil.
func (c *Checker) Check(root core.Node) []Diagnostic {
	diags := []Diagnostic{}
	for d := range c.Diagnostics(root) {
		diags = append(diags, d)
	}
	return diags
}

// finish stamps the rule identity, effective severity and documentation link.
func (br *boundRule) finish(d Diagnostic) Diagnostic {
	d.Code = br.pass.RuleID
	d.Severity = br.pass.Severity
	if d.DocumentationURL == "" {
		d.DocumentationURL = BuildDocURL(d.Code)
	}
	return d
}
