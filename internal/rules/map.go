package rules

import (
	"github.com/Masterminds/semver/v3"

	"github.com/gnolang/pygolf/internal/ast"
)

// ComprehensionMap rewrites a, b = [f(x) for x in y] into a, b = map(f, y).
// Unpacking consumes the iterator the same way it consumes the list.
type ComprehensionMap struct {
	facts *Facts
}

// NewComprehensionMap returns the rule for a program described by facts.
func NewComprehensionMap(facts *Facts) *ComprehensionMap {
	return &ComprehensionMap{facts: facts}
}

func (*ComprehensionMap) Name() string           { return ComprehensionToMap }
func (*ComprehensionMap) OnNode() ast.Kind       { return ast.KindAssign }
func (*ComprehensionMap) Since() *semver.Version { return Py30 }

func (r *ComprehensionMap) Predicate(n ast.Node) bool {
	assign := n.(*ast.Assign)
	if len(assign.Targets) != 1 || r.facts.Rebound("map") {
		return false
	}
	switch assign.Targets[0].(type) {
	case *ast.Tuple, *ast.List:
	default:
		return false
	}
	_, _, ok := mappedCall(assign.Value)
	return ok
}

func (r *ComprehensionMap) Transform(n ast.Node) ast.Node {
	assign := *n.(*ast.Assign)
	fn, iter, _ := mappedCall(assign.Value)
	pos := assign.Value.Start()
	assign.Value = &ast.Call{
		Pos:  pos,
		Func: &ast.Name{Pos: pos, ID: "map"},
		Args: []ast.Expr{fn, iter},
	}
	return &assign
}

// mappedCall matches [f(x) for x in y] and returns f and y.
func mappedCall(e ast.Expr) (fn, iter ast.Expr, ok bool) {
	comp, ok := e.(*ast.ListComp)
	if !ok || len(comp.Generators) != 1 {
		return nil, nil, false
	}
	gen := comp.Generators[0]
	if gen.Async || len(gen.Ifs) > 0 {
		return nil, nil, false
	}
	target, ok := gen.Target.(*ast.AssignName)
	if !ok {
		return nil, nil, false
	}
	call, ok := comp.Elt.(*ast.Call)
	if !ok || len(call.Args) != 1 || len(call.Keywords) > 0 {
		return nil, nil, false
	}
	if arg, ok := call.Args[0].(*ast.Name); !ok || arg.ID != target.ID {
		return nil, nil, false
	}
	if !callable(call.Func) || mentions(call.Func, target.ID) {
		return nil, nil, false
	}
	return call.Func, gen.Iter, true
}

// callable accepts a name or a dotted attribute path.
func callable(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Name:
		return true
	case *ast.Attribute:
		return callable(e.Value)
	}
	return false
}

func mentions(e ast.Expr, name string) bool {
	found := false
	ast.Inspect(e, func(n ast.Node) bool {
		if id, ok := n.(*ast.Name); ok && id.ID == name {
			found = true
		}
		return !found
	})
	return found
}
