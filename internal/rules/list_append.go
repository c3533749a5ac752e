package rules

import (
	"github.com/Masterminds/semver/v3"

	"github.com/gnolang/pygolf/internal/ast"
)

// ListAppend rewrites the statement x.append(v) into x+=[v]. The receiver
// is assumed to be a list. The rewrite is limited to statements where the
// augmented assignment binds x in a scope that already binds it, so that it
// cannot turn a global into an unbound local.
type ListAppend struct {
	eligible map[int]bool
}

// NewListAppend returns the rule for the program m. Eligible statements are
// recorded by source offset, so the rule applies to trees parsed from the
// same text as m.
func NewListAppend(m *ast.Module) *ListAppend {
	r := &ListAppend{eligible: make(map[int]bool)}
	parents := ast.Parents(m)
	bindings := scopeBindings(m, parents)
	ast.Inspect(m, func(n ast.Node) bool {
		stmt, ok := n.(*ast.ExprStmt)
		if !ok {
			return true
		}
		recv, _, ok := appendCall(stmt)
		if !ok {
			return true
		}
		scope := ast.EnclosingScope(parents, stmt)
		if scope == nil || bindings[scope][recv] {
			r.eligible[stmt.Offset] = true
		}
		return true
	})
	return r
}

func (*ListAppend) Name() string           { return ListAppendToAugAssign }
func (*ListAppend) OnNode() ast.Kind       { return ast.KindExprStmt }
func (*ListAppend) Since() *semver.Version { return Py30 }

func (r *ListAppend) Predicate(n ast.Node) bool {
	stmt := n.(*ast.ExprStmt)
	_, _, ok := appendCall(stmt)
	return ok && r.eligible[stmt.Offset]
}

func (r *ListAppend) Transform(n ast.Node) ast.Node {
	stmt := n.(*ast.ExprStmt)
	recv, value, _ := appendCall(stmt)
	return &ast.AugAssign{
		Pos:    stmt.Pos,
		Target: &ast.AssignName{Pos: stmt.Value.Start(), ID: recv},
		Op:     "+",
		Value:  &ast.List{Pos: value.Start(), Elts: []ast.Expr{value}},
	}
}

// appendCall matches the statement name.append(value).
func appendCall(stmt *ast.ExprStmt) (recv string, value ast.Expr, ok bool) {
	call, ok := stmt.Value.(*ast.Call)
	if !ok || len(call.Args) != 1 || len(call.Keywords) > 0 {
		return "", nil, false
	}
	if _, starred := call.Args[0].(*ast.Starred); starred {
		return "", nil, false
	}
	attr, ok := call.Func.(*ast.Attribute)
	if !ok || attr.Attr != "append" {
		return "", nil, false
	}
	name, ok := attr.Value.(*ast.Name)
	if !ok {
		return "", nil, false
	}
	return name.ID, call.Args[0], true
}

// scopeBindings maps each function and class to the names it binds
// locally or declares global or nonlocal.
func scopeBindings(m *ast.Module, parents map[ast.Node]ast.Node) map[ast.Node]map[string]bool {
	out := make(map[ast.Node]map[string]bool)
	bind := func(scope ast.Node, name string) {
		if scope == nil {
			return
		}
		if out[scope] == nil {
			out[scope] = make(map[string]bool)
		}
		out[scope][name] = true
	}
	ast.Inspect(m, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.AssignName:
			if !inComprehension(parents, n) {
				bind(ast.EnclosingScope(parents, n), n.ID)
			}
		case *ast.Global:
			for _, name := range n.Names {
				bind(ast.EnclosingScope(parents, n), name)
			}
		case *ast.Nonlocal:
			for _, name := range n.Names {
				bind(ast.EnclosingScope(parents, n), name)
			}
		}
		return true
	})
	return out
}

func inComprehension(parents map[ast.Node]ast.Node, n ast.Node) bool {
	for p := parents[n]; p != nil; p = parents[p] {
		switch p.(type) {
		case *ast.Comprehension:
			return true
		case *ast.FunctionDef, *ast.Lambda, *ast.ClassDef:
			return false
		}
	}
	return false
}
