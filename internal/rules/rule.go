// Package rules holds the guarded rewrites applied while a program is
// parsed. A rule matches nodes of one kind; when its predicate holds, its
// transform supplies the replacement. Predicates are conservative: a rule
// declines any rewrite it cannot prove safe.
package rules

import (
	"github.com/Masterminds/semver/v3"

	"github.com/gnolang/pygolf/internal/ast"
)

// Rule names as they appear in configuration.
const (
	FormatToFString       = "format-to-fstring"
	RangeForToRepeat      = "range-for-to-repeat"
	ComprehensionToMap    = "comprehension-to-map"
	ListAppendToAugAssign = "list-append-to-augassign"
	AnnAssignToAssign     = "ann-assign-to-assign"
	RenameAssignedName    = "rename-assign-name"
	RenameBuiltinCall     = "rename-builtin-call"
)

// Names lists every rule name in the order the rules run.
func Names() []string {
	return []string{
		FormatToFString,
		RangeForToRepeat,
		ComprehensionToMap,
		ListAppendToAugAssign,
		AnnAssignToAssign,
		RenameAssignedName,
		RenameBuiltinCall,
	}
}

// Language versions rules depend on.
var (
	Py30 = semver.MustParse("3.0")
	Py36 = semver.MustParse("3.6")
)

// Rule is one rewrite opportunity.
type Rule interface {
	// Name returns the configuration name of the rule.
	Name() string

	// OnNode returns the kind of node the rule looks at.
	OnNode() ast.Kind

	// Predicate reports whether the rewrite applies to n.
	Predicate(n ast.Node) bool

	// Transform returns the replacement for n. It is only called when
	// Predicate(n) holds.
	Transform(n ast.Node) ast.Node

	// Since returns the oldest language version the output of the rule
	// runs on.
	Since() *semver.Version
}

// Apply runs rs over n in order, feeding each rule the output of the
// previous one.
func Apply(rs []Rule, n ast.Node) ast.Node {
	for _, r := range rs {
		if n.Kind() == r.OnNode() && r.Predicate(n) {
			n = r.Transform(n)
		}
	}
	return n
}
