// Package output renders command results for terminals, pipes and machines.
//
// In auto mode a terminal gets styled text and anything else gets markdown,
// so piping into a file or an agent produces readable plain output.
package output

import "strings"

// OutputMode selects how results are rendered.
type OutputMode string //nolint:revive // stutters, but reads better at call sites

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeYAML     OutputMode = "yaml"
)

// Modes lists every accepted mode name.
var Modes = []OutputMode{ModeAuto, ModeText, ModeMarkdown, ModeJSON, ModeYAML}

// Mode converts a mode name, accepting common aliases. Unknown or empty
// names become ModeAuto.
func Mode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return ModeText
	case "markdown", "md":
		return ModeMarkdown
	case "json":
		return ModeJSON
	case "yaml", "yml":
		return ModeYAML
	default:
		return ModeAuto
	}
}

// IsValidMode reports whether s names a mode (or is empty).
func IsValidMode(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	m := Mode(s)
	return m != ModeAuto || strings.EqualFold(strings.TrimSpace(s), string(ModeAuto))
}
