// Package scripts embeds the built-in exclusion rules. A rule is a Risor
// script evaluated once per function with the function bound to "fn"; see
// internal/runtime for the keys it carries.
package scripts

import "embed"

// FS holds the built-in rules and the helper modules they import.
//
//go:embed *.risor
var FS embed.FS

// Builtin lists the rule scripts in FS. naming.risor is a helper module,
// not a rule.
var Builtin = []string{
	"tests.risor",
	"dunder.risor",
	"properties.risor",
}
