package rules

import (
	"github.com/Masterminds/semver/v3"

	"github.com/gnolang/pygolf/internal/ast"
)

// DefineAlias binds Alias to Original at the top of the module, after the
// docstring and any __future__ imports. It declines when the binding
// already exists.
type DefineAlias struct {
	Alias, Original string
}

func (DefineAlias) Name() string           { return RenameBuiltinCall }
func (DefineAlias) OnNode() ast.Kind       { return ast.KindModule }
func (DefineAlias) Since() *semver.Version { return Py30 }

func (r DefineAlias) Predicate(n ast.Node) bool {
	exists := false
	ast.Inspect(n, func(n ast.Node) bool {
		if a, ok := n.(*ast.Assign); ok && r.defines(a) {
			exists = true
		}
		return !exists
	})
	return !exists
}

func (r DefineAlias) defines(a *ast.Assign) bool {
	if len(a.Targets) != 1 {
		return false
	}
	target, ok := a.Targets[0].(*ast.AssignName)
	if !ok || target.ID != r.Alias {
		return false
	}
	value, ok := a.Value.(*ast.Name)
	return ok && value.ID == r.Original
}

func (r DefineAlias) Transform(n ast.Node) ast.Node {
	m := n.(*ast.Module)
	at := prologue(m.Body)
	pos := m.Pos
	if at < len(m.Body) {
		pos = m.Body[at].Start()
	}
	def := &ast.Assign{
		Pos:     pos,
		Targets: []ast.Expr{&ast.AssignName{Pos: pos, ID: r.Alias}},
		Value:   &ast.Name{Pos: pos, ID: r.Original},
	}
	body := make([]ast.Stmt, 0, len(m.Body)+1)
	body = append(body, m.Body[:at]...)
	body = append(body, def)
	body = append(body, m.Body[at:]...)
	return &ast.Module{Pos: m.Pos, Body: body}
}

// prologue returns the number of leading statements that must stay first:
// the docstring and __future__ imports.
func prologue(body []ast.Stmt) int {
	i := 0
	if i < len(body) {
		if e, ok := body[i].(*ast.ExprStmt); ok {
			if c, ok := e.Value.(*ast.Const); ok && c.IsString() {
				i++
			}
		}
	}
	for i < len(body) {
		imp, ok := body[i].(*ast.ImportFrom)
		if !ok || imp.Module != "__future__" || imp.Level != 0 {
			break
		}
		i++
	}
	return i
}
