package engine

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqla2lint/pkg/lint"
	"github.com/leapstack-labs/sqla2lint/pkg/token"
)

// noqaPattern follows flake8: "# noqa" alone suppresses everything on the
// line, "# noqa: SA201,SA203" only the listed codes.
var noqaPattern = regexp.MustCompile(`(?i)#\s*noqa(?::\s?((?:[A-Z]+[0-9]+(?:[,\s]+)?)+))?`)

var codeSeparator = regexp.MustCompile(`[,\s]+`)

// NoQA maps a line to the codes suppressed on it. A nil slice suppresses
// every code.
type NoQA map[int][]string

// ParseNoQA collects suppressions from a module's comments.
func ParseNoQA(comments []*token.Comment) NoQA {
	noqa := make(NoQA)
	for _, c := range comments {
		if c == nil {
			continue
		}
		m := noqaPattern.FindStringSubmatch(c.Text)
		if m == nil {
			continue
		}

		line := c.Line()
		if m[1] == "" {
			noqa[line] = nil
			continue
		}
		if existing, ok := noqa[line]; ok && existing == nil {
			continue
		}
		for _, code := range codeSeparator.Split(strings.TrimSpace(m[1]), -1) {
			if code != "" {
				noqa[line] = append(noqa[line], strings.ToUpper(code))
			}
		}
	}
	return noqa
}

// Suppresses reports whether a diagnostic is silenced.
func (n NoQA) Suppresses(d lint.Diagnostic) bool {
	codes, ok := n[d.Pos.Line]
	if !ok {
		return false
	}
	if codes == nil {
		return true
	}
	for _, code := range codes {
		if strings.HasPrefix(d.Code, code) {
			return true
		}
	}
	return false
}

// Filter drops suppressed diagnostics, keeping order.
func (n NoQA) Filter(diags []lint.Diagnostic) []lint.Diagnostic {
	if len(n) == 0 {
		return diags
	}
	kept := diags[:0:0]
	for _, d := range diags {
		if !n.Suppresses(d) {
			kept = append(kept, d)
		}
	}
	return kept
}
