package rules

import (
	"math/big"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/gnolang/pygolf/internal/ast"
	"github.com/gnolang/pygolf/internal/parser"
	"github.com/gnolang/pygolf/internal/printer"
)

// RangeFor replaces the iterable of a counted loop whose variable is never
// read with a string of the same length: for i in range(3) becomes
// for i in'|||'.
type RangeFor struct {
	facts *Facts
}

// NewRangeFor returns the rule for a program described by facts.
func NewRangeFor(facts *Facts) *RangeFor {
	return &RangeFor{facts: facts}
}

func (*RangeFor) Name() string           { return RangeForToRepeat }
func (*RangeFor) OnNode() ast.Kind       { return ast.KindFor }
func (*RangeFor) Since() *semver.Version { return Py30 }

func (r *RangeFor) Predicate(n ast.Node) bool {
	loop := n.(*ast.For)
	if loop.Async {
		return false
	}
	target, ok := loop.Target.(*ast.AssignName)
	if !ok || r.facts.Loads[target.ID] > 0 || r.facts.Declared[target.ID] {
		return false
	}
	args, ok := rangeArgs(loop.Iter)
	if !ok || r.facts.Rebound("range") {
		return false
	}
	_, ok = repeatIter(args, loop.Iter.Start())
	return ok
}

func (r *RangeFor) Transform(n ast.Node) ast.Node {
	loop := *n.(*ast.For)
	args, _ := rangeArgs(loop.Iter)
	loop.Iter, _ = repeatIter(args, loop.Iter.Start())
	return &loop
}

func rangeArgs(e ast.Expr) ([]ast.Expr, bool) {
	call, ok := e.(*ast.Call)
	if !ok || len(call.Keywords) > 0 || len(call.Args) == 0 || len(call.Args) > 3 {
		return nil, false
	}
	if name, ok := call.Func.(*ast.Name); !ok || name.ID != "range" {
		return nil, false
	}
	for _, a := range call.Args {
		if _, ok := a.(*ast.Starred); ok {
			return nil, false
		}
	}
	return call.Args, true
}

// repeatIter builds an iterable with as many elements as range(args...).
func repeatIter(args []ast.Expr, pos ast.Pos) (ast.Expr, bool) {
	if bounds, ok := intLiterals(args); ok {
		n, ok := rangeLen(bounds)
		if !ok {
			return nil, false
		}
		return repeatLiteral(n, pos), true
	}
	switch len(args) {
	case 1:
		return &ast.BinOp{Pos: pos, Left: bar(pos), Op: "*", Right: args[0]}, true
	case 2:
		if !simpleOperand(args[0]) || !simpleOperand(args[1]) {
			return nil, false
		}
		start, err := printer.Reference(args[0])
		if err != nil {
			return nil, false
		}
		stop, err := printer.Reference(args[1])
		if err != nil {
			return nil, false
		}
		e, err := parser.ParseExpr("'|' * (" + stop + " - " + start + ")")
		if err != nil {
			return nil, false
		}
		return e, true
	}
	return nil, false
}

func bar(pos ast.Pos) *ast.Const {
	return &ast.Const{Pos: pos, Type: ast.ConstStr, Value: "|"}
}

// repeatLiteral spells a string of n bars, as a literal when that is no
// longer than the repetition.
func repeatLiteral(n *big.Int, pos ast.Pos) ast.Expr {
	if n.IsInt64() && n.Int64() <= 3 {
		return &ast.Const{Pos: pos, Type: ast.ConstStr, Value: strings.Repeat("|", int(n.Int64()))}
	}
	return &ast.BinOp{Pos: pos, Left: bar(pos), Op: "*", Right: &ast.Const{Pos: pos, Type: ast.ConstInt, Value: n.String()}}
}

// rangeLen returns the length of range(start, stop, step) given one to
// three bounds. A zero step fails.
func rangeLen(bounds []*big.Int) (*big.Int, bool) {
	start, stop, step := big.NewInt(0), bounds[0], big.NewInt(1)
	if len(bounds) > 1 {
		start, stop = bounds[0], bounds[1]
	}
	if len(bounds) > 2 {
		step = bounds[2]
	}
	if step.Sign() == 0 {
		return nil, false
	}
	span := new(big.Int).Sub(stop, start)
	if span.Sign() != step.Sign() || span.Sign() == 0 {
		return new(big.Int), true
	}
	span.Abs(span)
	abs := new(big.Int).Abs(step)
	span.Add(span, abs).Sub(span, big.NewInt(1))
	return span.Quo(span, abs), true
}

func intLiterals(args []ast.Expr) ([]*big.Int, bool) {
	var out []*big.Int
	for _, a := range args {
		v, ok := intLiteral(a)
		if !ok {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

// intLiteral evaluates an integer literal, optionally signed.
func intLiteral(e ast.Expr) (*big.Int, bool) {
	switch e := e.(type) {
	case *ast.Const:
		if e.Type != ast.ConstInt {
			return nil, false
		}
		v, ok := new(big.Int).SetString(e.Value, 0)
		return v, ok
	case *ast.UnaryOp:
		v, ok := intLiteral(e.Operand)
		if !ok {
			return nil, false
		}
		switch e.Op {
		case "-":
			return v.Neg(v), true
		case "+":
			return v, true
		}
	}
	return nil, false
}

// simpleOperand reports whether evaluating e has no side effects, so that
// operands may be evaluated in a different order.
func simpleOperand(e ast.Expr) bool {
	if _, ok := e.(*ast.Name); ok {
		return true
	}
	_, ok := intLiteral(e)
	return ok
}
