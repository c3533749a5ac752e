package printer

import (
	"github.com/gnolang/pygolf/internal/ast"
)

// prec orders expression forms from loosest to tightest binding. An
// expression printed where a tighter form is required gets parentheses.
type prec int

const (
	precNamed prec = iota
	precYield
	precTuple
	precTest
	precOr
	precAnd
	precNot
	precCmp
	precBor
	precBxor
	precBand
	precShift
	precArith
	precTerm
	precFactor
	precPower
	precAwait
	precAtom
)

var binopPrec = map[string]prec{
	"|":  precBor,
	"^":  precBxor,
	"&":  precBand,
	"<<": precShift,
	">>": precShift,
	"+":  precArith,
	"-":  precArith,
	"*":  precTerm,
	"/":  precTerm,
	"//": precTerm,
	"%":  precTerm,
	"@":  precTerm,
	"**": precPower,
}

func precOf(e ast.Expr) prec {
	switch e := e.(type) {
	case *ast.NamedExpr:
		return precNamed
	case *ast.Yield, *ast.YieldFrom:
		return precYield
	case *ast.Tuple:
		if len(e.Elts) == 0 {
			return precAtom
		}
		return precTuple
	case *ast.Lambda, *ast.IfExp:
		return precTest
	case *ast.BoolOp:
		if e.Op == "or" {
			return precOr
		}
		return precAnd
	case *ast.UnaryOp:
		if e.Op == "not" {
			return precNot
		}
		return precFactor
	case *ast.Compare:
		return precCmp
	case *ast.BinOp:
		return binopPrec[e.Op]
	case *ast.Await:
		return precAwait
	}
	return precAtom
}

// expr writes e where the surrounding syntax requires at least ctx.
func (p *printer) expr(e ast.Expr, ctx prec) {
	if precOf(e) < ctx {
		p.write("(")
		p.bare(e)
		p.write(")")
		return
	}
	p.bare(e)
}

func (p *printer) bare(e ast.Expr) {
	switch e := e.(type) {
	case *ast.BoolOp:
		level := precOf(e)
		for i, v := range e.Values {
			if i > 0 {
				p.sp()
				p.write(e.Op)
				p.sp()
			}
			p.expr(v, level+1)
		}
	case *ast.NamedExpr:
		p.write(e.Target.ID)
		p.binop(":=")
		p.expr(e.Value, precTest)
	case *ast.BinOp:
		level := binopPrec[e.Op]
		if e.Op == "**" {
			p.expr(e.Left, precAwait)
			p.binop("**")
			p.expr(e.Right, precFactor)
			return
		}
		p.expr(e.Left, level)
		p.binop(e.Op)
		p.expr(e.Right, level+1)
	case *ast.UnaryOp:
		if e.Op == "not" {
			p.write("not")
			p.sp()
			p.expr(e.Operand, precNot)
			return
		}
		p.write(e.Op)
		p.expr(e.Operand, precFactor)
	case *ast.Lambda:
		p.write("lambda")
		if e.Args != nil && !e.Args.Empty() {
			p.sp()
			p.arguments(e.Args)
		}
		p.write(":")
		p.sp()
		p.expr(e.Body, precTest)
	case *ast.IfExp:
		p.expr(e.Body, precOr)
		p.sp()
		p.write("if")
		p.sp()
		p.expr(e.Test, precOr)
		p.sp()
		p.write("else")
		p.sp()
		p.expr(e.Orelse, precTest)
	case *ast.Dict:
		p.write("{")
		for i, k := range e.Keys {
			if i > 0 {
				p.comma()
			}
			if k == nil {
				p.write("**")
				p.expr(e.Values[i], precBor)
				continue
			}
			p.expr(k, precTest)
			p.write(":")
			p.sp()
			p.expr(e.Values[i], precTest)
		}
		p.write("}")
	case *ast.Set:
		if len(e.Elts) == 0 {
			p.write("{*()}")
			return
		}
		p.write("{")
		p.exprList(e.Elts, precTest)
		p.write("}")
	case *ast.ListComp:
		p.write("[")
		p.expr(e.Elt, precTest)
		p.comprehensions(e.Generators)
		p.write("]")
	case *ast.SetComp:
		p.write("{")
		p.expr(e.Elt, precTest)
		p.comprehensions(e.Generators)
		p.write("}")
	case *ast.DictComp:
		p.write("{")
		p.expr(e.Key, precTest)
		p.write(":")
		p.sp()
		p.expr(e.Value, precTest)
		p.comprehensions(e.Generators)
		p.write("}")
	case *ast.GeneratorExp:
		p.write("(")
		p.generator(e)
		p.write(")")
	case *ast.Await:
		p.write("await")
		p.sp()
		p.expr(e.Value, precAtom)
	case *ast.Yield:
		p.write("yield")
		if e.Value != nil {
			p.sp()
			p.expr(e.Value, precTuple)
		}
	case *ast.YieldFrom:
		p.write("yield")
		p.sp()
		p.write("from")
		p.sp()
		p.expr(e.Value, precTest)
	case *ast.Compare:
		p.expr(e.Left, precBor)
		for i, op := range e.Ops {
			switch op {
			case "not in":
				p.sp()
				p.write("not")
				p.sp()
				p.write("in")
				p.sp()
			case "is not":
				p.sp()
				p.write("is")
				p.sp()
				p.write("not")
				p.sp()
			case "in", "is":
				p.sp()
				p.write(op)
				p.sp()
			default:
				p.binop(op)
			}
			p.expr(e.Comparators[i], precBor)
		}
	case *ast.Call:
		p.expr(e.Func, precAtom)
		p.write("(")
		if len(e.Args) == 1 && len(e.Keywords) == 0 {
			if g, ok := e.Args[0].(*ast.GeneratorExp); ok {
				p.generator(g)
				p.write(")")
				return
			}
		}
		p.callArgs(e.Args, e.Keywords)
		p.write(")")
	case *ast.JoinedStr:
		p.joinedStr(e)
	case *ast.Const:
		p.constant(e)
	case *ast.Attribute:
		p.expr(e.Value, precAtom)
		p.write(".")
		p.write(e.Attr)
	case *ast.Subscript:
		p.expr(e.Value, precAtom)
		p.write("[")
		if t, ok := e.Slice.(*ast.Tuple); ok && len(t.Elts) > 0 {
			p.tupleElts(t.Elts)
		} else {
			p.expr(e.Slice, precTuple)
		}
		p.write("]")
	case *ast.Slice:
		if e.Lower != nil {
			p.expr(e.Lower, precTest)
		}
		p.write(":")
		if e.Upper != nil {
			p.expr(e.Upper, precTest)
		}
		if e.Step != nil {
			p.write(":")
			p.expr(e.Step, precTest)
		}
	case *ast.Starred:
		p.write("*")
		p.expr(e.Value, precBor)
	case *ast.Name:
		p.write(e.ID)
	case *ast.AssignName:
		p.write(e.ID)
	case *ast.List:
		p.write("[")
		p.exprList(e.Elts, precTest)
		p.write("]")
	case *ast.Tuple:
		if len(e.Elts) == 0 {
			p.write("()")
			return
		}
		p.tupleElts(e.Elts)
	default:
		p.fail(e)
	}
}

func (p *printer) exprList(list []ast.Expr, ctx prec) {
	for i, e := range list {
		if i > 0 {
			p.comma()
		}
		p.expr(e, ctx)
	}
}

func (p *printer) tupleElts(elts []ast.Expr) {
	p.exprList(elts, precTest)
	if len(elts) == 1 {
		p.write(",")
	}
}

func (p *printer) generator(g *ast.GeneratorExp) {
	p.expr(g.Elt, precTest)
	p.comprehensions(g.Generators)
}

func (p *printer) comprehensions(gens []*ast.Comprehension) {
	for _, c := range gens {
		p.sp()
		if c.Async {
			p.write("async")
			p.sp()
		}
		p.write("for")
		p.sp()
		p.expr(c.Target, precTuple)
		p.sp()
		p.write("in")
		p.sp()
		p.expr(c.Iter, precOr)
		for _, cond := range c.Ifs {
			p.sp()
			p.write("if")
			p.sp()
			p.expr(cond, precOr)
		}
	}
}

// callArgs writes positional and keyword arguments of a call or class
// definition. An assignment expression needs no parentheses as a
// positional argument.
func (p *printer) callArgs(args []ast.Expr, keywords []*ast.Keyword) {
	for i, a := range args {
		if i > 0 {
			p.comma()
		}
		if _, ok := a.(*ast.NamedExpr); ok {
			p.expr(a, precNamed)
			continue
		}
		p.expr(a, precTest)
	}
	for i, k := range keywords {
		if i > 0 || len(args) > 0 {
			p.comma()
		}
		if k.Arg == "" {
			p.write("**")
		} else {
			p.write(k.Arg)
			p.write("=")
		}
		p.expr(k.Value, precTest)
	}
}

// arguments writes a parameter list.
func (p *printer) arguments(a *ast.Arguments) {
	first := true
	sep := func() {
		if !first {
			p.comma()
		}
		first = false
	}
	positional := append(append([]*ast.Arg{}, a.PosOnly...), a.Args...)
	offset := len(positional) - len(a.Defaults)
	for i, arg := range positional {
		sep()
		p.arg(arg)
		if i >= offset {
			p.defaultValue(arg, a.Defaults[i-offset])
		}
		if i == len(a.PosOnly)-1 {
			sep()
			p.write("/")
		}
	}
	if a.Vararg != nil {
		sep()
		p.write("*")
		p.arg(a.Vararg)
	} else if len(a.KwOnly) > 0 {
		sep()
		p.write("*")
	}
	for i, arg := range a.KwOnly {
		sep()
		p.arg(arg)
		if i < len(a.KwDefaults) && a.KwDefaults[i] != nil {
			p.defaultValue(arg, a.KwDefaults[i])
		}
	}
	if a.Kwarg != nil {
		sep()
		p.write("**")
		p.arg(a.Kwarg)
	}
}

func (p *printer) arg(a *ast.Arg) {
	p.write(a.Name.ID)
	if a.Annotation != nil {
		p.write(":")
		p.sp()
		p.expr(a.Annotation, precTest)
	}
}

func (p *printer) defaultValue(a *ast.Arg, v ast.Expr) {
	if a.Annotation != nil {
		p.binop("=")
	} else {
		p.write("=")
	}
	p.expr(v, precTest)
}
