package rules

import (
	"github.com/Masterminds/semver/v3"

	"github.com/gnolang/pygolf/internal/ast"
)

// AnnAssign drops the annotation of an annotated assignment that has a
// value: x: int = 1 becomes x = 1.
type AnnAssign struct{}

func (AnnAssign) Name() string           { return AnnAssignToAssign }
func (AnnAssign) OnNode() ast.Kind       { return ast.KindAnnAssign }
func (AnnAssign) Since() *semver.Version { return Py30 }

func (AnnAssign) Predicate(n ast.Node) bool {
	return n.(*ast.AnnAssign).Value != nil
}

func (AnnAssign) Transform(n ast.Node) ast.Node {
	a := n.(*ast.AnnAssign)
	return &ast.Assign{Pos: a.Pos, Targets: []ast.Expr{a.Target}, Value: a.Value}
}
