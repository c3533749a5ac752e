package rules

import (
	"strings"
	"unicode/utf8"

	"github.com/gnolang/pygolf/internal/ast"
)

// Facts records how identifiers are used across a whole program. Rename
// and rewrite predicates consult it; it is computed once per phase.
type Facts struct {
	// Loads counts reads of each name.
	Loads map[string]int
	// Stores counts binding occurrences: assignment targets, loop and
	// comprehension variables, parameters and exception names.
	Stores map[string]int
	// Defined holds names bound by def, class and import statements.
	Defined map[string]bool
	// Declared holds names listed in global and nonlocal statements.
	Declared map[string]bool
	// Keywords holds names used as keyword arguments.
	Keywords map[string]bool
	// Attrs holds attribute names.
	Attrs map[string]bool
	// Short holds every one-character identifier the program binds or
	// reads.
	Short map[string]bool
	// Assigned lists the distinct assignment target names in order of
	// first occurrence.
	Assigned []string
}

// Analyze collects Facts for the tree rooted at root.
func Analyze(root ast.Node) *Facts {
	f := &Facts{
		Loads:    make(map[string]int),
		Stores:   make(map[string]int),
		Defined:  make(map[string]bool),
		Declared: make(map[string]bool),
		Keywords: make(map[string]bool),
		Attrs:    make(map[string]bool),
		Short:    make(map[string]bool),
	}
	ast.Inspect(root, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Name:
			f.Loads[n.ID]++
			f.ident(n.ID)
		case *ast.AssignName:
			if f.Stores[n.ID] == 0 {
				f.Assigned = append(f.Assigned, n.ID)
			}
			f.Stores[n.ID]++
			f.ident(n.ID)
		case *ast.FunctionDef:
			f.define(n.Name)
		case *ast.ClassDef:
			f.define(n.Name)
		case *ast.Alias:
			f.define(boundName(n))
		case *ast.Global:
			f.declare(n.Names)
		case *ast.Nonlocal:
			f.declare(n.Names)
		case *ast.Keyword:
			if n.Arg != "" {
				f.Keywords[n.Arg] = true
			}
		case *ast.Attribute:
			f.Attrs[n.Attr] = true
		}
		return true
	})
	return f
}

func (f *Facts) ident(name string) {
	if utf8.RuneCountInString(name) == 1 {
		f.Short[name] = true
	}
}

func (f *Facts) define(name string) {
	f.Defined[name] = true
	f.ident(name)
}

func (f *Facts) declare(names []string) {
	for _, name := range names {
		f.Declared[name] = true
		f.ident(name)
	}
}

// boundName returns the name an import alias binds: the alias, or the
// first component of a dotted module name.
func boundName(a *ast.Alias) string {
	if a.AsName != "" {
		return a.AsName
	}
	name, _, _ := strings.Cut(a.Name, ".")
	return name
}

// Rebound reports whether the program binds name itself, shadowing a
// builtin of the same name.
func (f *Facts) Rebound(name string) bool {
	return f.Stores[name] > 0 || f.Defined[name] || f.Declared[name]
}

// Renamable reports whether every occurrence of name can be rewritten by
// the rename rules: it must be bound only by assignment-like targets,
// never appear as a keyword argument or attribute, and be neither a
// dunder nor a builtin.
func (f *Facts) Renamable(name string) bool {
	switch {
	case f.Defined[name], f.Keywords[name], f.Attrs[name]:
		return false
	case strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
		return false
	case IsBuiltin(name) || name == "super":
		return false
	}
	return true
}
