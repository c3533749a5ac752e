package rules

import (
	"github.com/Masterminds/semver/v3"

	"github.com/gnolang/pygolf/internal/ast"
)

// RenameTarget renames the binding occurrences of a variable.
type RenameTarget struct {
	Old, New string
}

func (RenameTarget) Name() string           { return RenameAssignedName }
func (RenameTarget) OnNode() ast.Kind       { return ast.KindAssignName }
func (RenameTarget) Since() *semver.Version { return Py30 }

func (r RenameTarget) Predicate(n ast.Node) bool {
	return n.(*ast.AssignName).ID == r.Old
}

func (r RenameTarget) Transform(n ast.Node) ast.Node {
	return &ast.AssignName{Pos: n.Start(), ID: r.New}
}

// RenameRead renames the read occurrences of a variable.
type RenameRead struct {
	Old, New string
}

func (RenameRead) Name() string           { return RenameAssignedName }
func (RenameRead) OnNode() ast.Kind       { return ast.KindName }
func (RenameRead) Since() *semver.Version { return Py30 }

func (r RenameRead) Predicate(n ast.Node) bool {
	return n.(*ast.Name).ID == r.Old
}

func (r RenameRead) Transform(n ast.Node) ast.Node {
	return &ast.Name{Pos: n.Start(), ID: r.New}
}

// RenameDeclaration renames a variable in global or nonlocal statements;
// Kind selects which.
type RenameDeclaration struct {
	Kind     ast.Kind
	Old, New string
}

func (RenameDeclaration) Name() string           { return RenameAssignedName }
func (r RenameDeclaration) OnNode() ast.Kind     { return r.Kind }
func (RenameDeclaration) Since() *semver.Version { return Py30 }

func (r RenameDeclaration) Predicate(n ast.Node) bool {
	for _, name := range declared(n) {
		if name == r.Old {
			return true
		}
	}
	return false
}

func (r RenameDeclaration) Transform(n ast.Node) ast.Node {
	names := append([]string(nil), declared(n)...)
	for i, name := range names {
		if name == r.Old {
			names[i] = r.New
		}
	}
	switch n := n.(type) {
	case *ast.Global:
		return &ast.Global{Pos: n.Pos, Names: names}
	case *ast.Nonlocal:
		return &ast.Nonlocal{Pos: n.Pos, Names: names}
	}
	return n
}

func declared(n ast.Node) []string {
	switch n := n.(type) {
	case *ast.Global:
		return n.Names
	case *ast.Nonlocal:
		return n.Names
	}
	return nil
}

// Rename returns the rules renaming variable from to to everywhere.
func Rename(from, to string) []Rule {
	return []Rule{
		RenameTarget{Old: from, New: to},
		RenameRead{Old: from, New: to},
		RenameDeclaration{Kind: ast.KindGlobal, Old: from, New: to},
		RenameDeclaration{Kind: ast.KindNonlocal, Old: from, New: to},
	}
}

// RenameCall routes calls of a builtin through its alias.
type RenameCall struct {
	Original, Alias string
}

func (RenameCall) Name() string           { return RenameBuiltinCall }
func (RenameCall) OnNode() ast.Kind       { return ast.KindCall }
func (RenameCall) Since() *semver.Version { return Py30 }

func (r RenameCall) Predicate(n ast.Node) bool {
	name, ok := n.(*ast.Call).Func.(*ast.Name)
	return ok && name.ID == r.Original
}

func (r RenameCall) Transform(n ast.Node) ast.Node {
	call := *n.(*ast.Call)
	call.Func = &ast.Name{Pos: call.Func.Start(), ID: r.Alias}
	return &call
}
