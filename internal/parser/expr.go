package parser

import (
	"strings"

	"github.com/gnolang/pygolf/internal/ast"
)

// canStartExpr reports whether the current token can begin an expression.
func (p *parser) canStartExpr() bool {
	t := p.tok()
	switch t.kind {
	case tokNumber, tokString:
		return true
	case tokName:
		switch t.text {
		case "None", "True", "False", "not", "lambda", "await", "yield":
			return true
		}
		return !keywords[t.text]
	case tokOp:
		switch t.text {
		case "(", "[", "{", "-", "+", "~", "*", "...", "`":
			return true
		}
	}
	return false
}

func (p *parser) yieldOrStarExpressions() ast.Expr {
	if p.isKw("yield") {
		return p.yieldExpr()
	}
	return p.starExpressions()
}

func (p *parser) yieldExpr() ast.Expr {
	pos := p.expectKw("yield").pos
	if p.gotKw("from") {
		return &ast.YieldFrom{Pos: pos, Value: p.expression()}
	}
	n := &ast.Yield{Pos: pos}
	if p.canStartExpr() {
		n.Value = p.starExpressions()
	}
	return n
}

// starExpressions parses a comma-separated list of (possibly starred)
// expressions. More than one element, or a trailing comma, makes a tuple.
func (p *parser) starExpressions() ast.Expr {
	pos := p.tok().pos
	first := p.starExpr()
	if !p.isOp(",") {
		return first
	}
	tuple := &ast.Tuple{Pos: pos, Elts: []ast.Expr{first}}
	for p.gotOp(",") && p.canStartExpr() {
		tuple.Elts = append(tuple.Elts, p.starExpr())
	}
	return tuple
}

func (p *parser) starExpr() ast.Expr {
	if p.isOp("*") {
		pos := p.tok().pos
		p.next()
		return &ast.Starred{Pos: pos, Value: p.bitOr()}
	}
	return p.expression()
}

// starNamedExpr is an element of a list, set or parenthesized group.
func (p *parser) starNamedExpr() ast.Expr {
	if p.isOp("*") {
		return p.starExpr()
	}
	return p.namedExpr()
}

// namedExpr parses an expression that may be an assignment expression.
func (p *parser) namedExpr() ast.Expr {
	t := p.tok()
	if t.kind == tokName && !keywords[t.text] && p.peek(1).kind == tokOp && p.peek(1).text == ":=" {
		p.next()
		p.next()
		return &ast.NamedExpr{
			Pos:    t.pos,
			Target: &ast.AssignName{Pos: t.pos, ID: t.text},
			Value:  p.expression(),
		}
	}
	return p.expression()
}

// targetList parses the target of a for loop or comprehension, stopping
// before 'in'.
func (p *parser) targetList() ast.Expr {
	pos := p.tok().pos
	first := p.starTarget()
	if !p.isOp(",") {
		return p.toTarget(first)
	}
	tuple := &ast.Tuple{Pos: pos, Elts: []ast.Expr{first}}
	for p.gotOp(",") && !p.isKw("in") {
		tuple.Elts = append(tuple.Elts, p.starTarget())
	}
	return p.toTarget(tuple)
}

func (p *parser) starTarget() ast.Expr {
	if p.isOp("*") {
		pos := p.tok().pos
		p.next()
		return &ast.Starred{Pos: pos, Value: p.bitOr()}
	}
	return p.bitOr()
}

func (p *parser) expression() ast.Expr {
	if p.isKw("lambda") {
		return p.lambda()
	}
	pos := p.tok().pos
	body := p.disjunction()
	if !p.isKw("if") {
		return body
	}
	p.next()
	test := p.disjunction()
	p.expectKw("else")
	return &ast.IfExp{Pos: pos, Test: test, Body: body, Orelse: p.expression()}
}

func (p *parser) lambda() ast.Expr {
	pos := p.expectKw("lambda").pos
	n := &ast.Lambda{Pos: pos, Args: p.parameters(":", false)}
	p.expectOp(":")
	n.Body = p.expression()
	return n
}

func (p *parser) disjunction() ast.Expr {
	pos := p.tok().pos
	first := p.conjunction()
	if !p.isKw("or") {
		return first
	}
	n := &ast.BoolOp{Pos: pos, Op: "or", Values: []ast.Expr{first}}
	for p.gotKw("or") {
		n.Values = append(n.Values, p.conjunction())
	}
	return n
}

func (p *parser) conjunction() ast.Expr {
	pos := p.tok().pos
	first := p.inversion()
	if !p.isKw("and") {
		return first
	}
	n := &ast.BoolOp{Pos: pos, Op: "and", Values: []ast.Expr{first}}
	for p.gotKw("and") {
		n.Values = append(n.Values, p.inversion())
	}
	return n
}

func (p *parser) inversion() ast.Expr {
	if p.isKw("not") {
		pos := p.tok().pos
		p.next()
		return &ast.UnaryOp{Pos: pos, Op: "not", Operand: p.inversion()}
	}
	return p.comparison()
}

func (p *parser) compOp() string {
	t := p.tok()
	switch {
	case t.kind == tokOp:
		switch t.text {
		case "<", ">", "==", ">=", "<=", "!=":
			p.next()
			return t.text
		}
	case t.kind == tokName && t.text == "in":
		p.next()
		return "in"
	case t.kind == tokName && t.text == "not":
		if next := p.peek(1); next.kind == tokName && next.text == "in" {
			p.next()
			p.next()
			return "not in"
		}
	case t.kind == tokName && t.text == "is":
		p.next()
		if p.gotKw("not") {
			return "is not"
		}
		return "is"
	}
	return ""
}

func (p *parser) comparison() ast.Expr {
	pos := p.tok().pos
	left := p.bitOr()
	var n *ast.Compare
	for {
		op := p.compOp()
		if op == "" {
			break
		}
		if n == nil {
			n = &ast.Compare{Pos: pos, Left: left}
		}
		n.Ops = append(n.Ops, op)
		n.Comparators = append(n.Comparators, p.bitOr())
	}
	if n == nil {
		return left
	}
	return n
}

// binary parses a left-associative chain of the given operators over
// operands produced by next.
func (p *parser) binary(next func() ast.Expr, ops ...string) ast.Expr {
	pos := p.tok().pos
	left := next()
	for {
		t := p.tok()
		if t.kind != tokOp || !contains(ops, t.text) {
			return left
		}
		p.next()
		left = &ast.BinOp{Pos: pos, Left: left, Op: t.text, Right: next()}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (p *parser) bitOr() ast.Expr  { return p.binary(p.bitXor, "|") }
func (p *parser) bitXor() ast.Expr { return p.binary(p.bitAnd, "^") }
func (p *parser) bitAnd() ast.Expr { return p.binary(p.shift, "&") }
func (p *parser) shift() ast.Expr  { return p.binary(p.arith, "<<", ">>") }
func (p *parser) arith() ast.Expr  { return p.binary(p.term, "+", "-") }
func (p *parser) term() ast.Expr   { return p.binary(p.factor, "*", "/", "//", "%", "@") }

func (p *parser) factor() ast.Expr {
	t := p.tok()
	if t.kind == tokOp && (t.text == "-" || t.text == "+" || t.text == "~") {
		p.next()
		return &ast.UnaryOp{Pos: t.pos, Op: t.text, Operand: p.factor()}
	}
	return p.power()
}

func (p *parser) power() ast.Expr {
	pos := p.tok().pos
	left := p.awaitPrimary()
	if p.gotOp("**") {
		return &ast.BinOp{Pos: pos, Left: left, Op: "**", Right: p.factor()}
	}
	return left
}

func (p *parser) awaitPrimary() ast.Expr {
	if p.isKw("await") {
		pos := p.tok().pos
		p.next()
		return &ast.Await{Pos: pos, Value: p.primary()}
	}
	return p.primary()
}

func (p *parser) primary() ast.Expr {
	pos := p.tok().pos
	e := p.atom()
	for {
		switch {
		case p.gotOp("."):
			name, _ := p.ident()
			e = &ast.Attribute{Pos: pos, Value: e, Attr: name}
		case p.gotOp("("):
			args, kws := p.callArgs()
			e = &ast.Call{Pos: pos, Func: e, Args: args, Keywords: kws}
		case p.gotOp("["):
			e = &ast.Subscript{Pos: pos, Value: e, Slice: p.slices()}
			p.expectOp("]")
		default:
			return e
		}
	}
}

// callArgs parses arguments after '(' up to and including ')'.
func (p *parser) callArgs() ([]ast.Expr, []*ast.Keyword) {
	var args []ast.Expr
	var kws []*ast.Keyword
	for !p.isOp(")") {
		t := p.tok()
		switch {
		case p.isOp("*"):
			p.next()
			args = append(args, &ast.Starred{Pos: t.pos, Value: p.expression()})
		case p.isOp("**"):
			p.next()
			kws = append(kws, &ast.Keyword{Pos: t.pos, Value: p.expression()})
		case t.kind == tokName && !keywords[t.text] && p.peek(1).kind == tokOp && p.peek(1).text == "=":
			p.next()
			p.next()
			kws = append(kws, &ast.Keyword{Pos: t.pos, Arg: t.text, Value: p.expression()})
		default:
			e := p.namedExpr()
			if p.isKw("for") || p.isKw("async") {
				e = &ast.GeneratorExp{Pos: t.pos, Elt: e, Generators: p.comprehensions()}
			}
			args = append(args, e)
		}
		if !p.gotOp(",") {
			break
		}
	}
	p.expectOp(")")
	return args, kws
}

func (p *parser) slices() ast.Expr {
	pos := p.tok().pos
	first := p.slice()
	if !p.isOp(",") {
		return first
	}
	tuple := &ast.Tuple{Pos: pos, Elts: []ast.Expr{first}}
	for p.gotOp(",") && !p.isOp("]") {
		tuple.Elts = append(tuple.Elts, p.slice())
	}
	return tuple
}

func (p *parser) slice() ast.Expr {
	pos := p.tok().pos
	var lower ast.Expr
	if !p.isOp(":") {
		lower = p.starNamedExpr()
		if !p.isOp(":") {
			return lower
		}
	}
	p.expectOp(":")
	n := &ast.Slice{Pos: pos, Lower: lower}
	if !p.isOp(":") && !p.isOp(",") && !p.isOp("]") {
		n.Upper = p.expression()
	}
	if p.gotOp(":") {
		n.HasStep = true
		if !p.isOp(",") && !p.isOp("]") {
			n.Step = p.expression()
		}
	}
	return n
}

func (p *parser) comprehensions() []*ast.Comprehension {
	var gens []*ast.Comprehension
	for p.isKw("for") || (p.isKw("async") && p.peek(1).kind == tokName && p.peek(1).text == "for") {
		c := &ast.Comprehension{Pos: p.tok().pos}
		if p.gotKw("async") {
			c.Async = true
		}
		p.expectKw("for")
		c.Target = p.targetList()
		p.expectKw("in")
		c.Iter = p.disjunction()
		for p.gotKw("if") {
			c.Ifs = append(c.Ifs, p.disjunction())
		}
		gens = append(gens, c)
	}
	return gens
}

func (p *parser) atom() ast.Expr {
	t := p.tok()
	switch t.kind {
	case tokName:
		switch t.text {
		case "None":
			p.next()
			return &ast.Const{Pos: t.pos, Type: ast.ConstNone}
		case "True":
			p.next()
			return &ast.Const{Pos: t.pos, Type: ast.ConstTrue}
		case "False":
			p.next()
			return &ast.Const{Pos: t.pos, Type: ast.ConstFalse}
		}
		if keywords[t.text] {
			p.errorf("invalid syntax: unexpected %s", t)
		}
		p.next()
		return &ast.Name{Pos: t.pos, ID: t.text}
	case tokNumber:
		p.next()
		return p.number(t)
	case tokString:
		return p.stringAtom()
	case tokOp:
		switch t.text {
		case "...":
			p.next()
			return &ast.Const{Pos: t.pos, Type: ast.ConstEllipsis}
		case "(":
			return p.parenAtom()
		case "[":
			return p.listAtom()
		case "{":
			return p.braceAtom()
		case "`":
			p.next()
			n := &ast.Repr{Pos: t.pos, Value: p.starExpressions()}
			p.expectOp("`")
			return n
		}
	}
	if t.kind == tokEOF {
		p.errorf("unexpected end of input")
	}
	p.errorf("invalid syntax: unexpected %s", t)
	return nil
}

func (p *parser) number(t token) ast.Expr {
	text := strings.ReplaceAll(t.text, "_", "")
	lower := strings.ToLower(text)
	n := &ast.Const{Pos: t.pos, Type: ast.ConstInt, Value: text}
	switch {
	case strings.HasPrefix(lower, "0x"), strings.HasPrefix(lower, "0o"), strings.HasPrefix(lower, "0b"):
		if len(text) == 2 {
			p.errorAt(t.pos, "invalid number literal")
		}
	case strings.HasSuffix(lower, "j"):
		n.Type = ast.ConstImag
	case strings.ContainsAny(lower, ".e"):
		n.Type = ast.ConstFloat
	case len(text) > 1 && text[0] == '0' && strings.Trim(text, "0") != "":
		p.errorAt(t.pos, "leading zeros in decimal integer literals are not permitted")
	}
	return n
}

func (p *parser) parenAtom() ast.Expr {
	pos := p.expectOp("(").pos
	if p.gotOp(")") {
		return &ast.Tuple{Pos: pos}
	}
	if p.isKw("yield") {
		e := p.yieldExpr()
		p.expectOp(")")
		return e
	}
	first := p.starNamedExpr()
	if p.isKw("for") || p.isKw("async") {
		g := &ast.GeneratorExp{Pos: pos, Elt: first, Generators: p.comprehensions()}
		p.expectOp(")")
		return g
	}
	if !p.isOp(",") {
		if _, ok := first.(*ast.Starred); ok {
			p.errorAt(first.Start(), "cannot use starred expression here")
		}
		p.expectOp(")")
		return first
	}
	tuple := &ast.Tuple{Pos: pos, Elts: []ast.Expr{first}}
	for p.gotOp(",") && !p.isOp(")") {
		tuple.Elts = append(tuple.Elts, p.starNamedExpr())
	}
	p.expectOp(")")
	return tuple
}

func (p *parser) listAtom() ast.Expr {
	pos := p.expectOp("[").pos
	if p.gotOp("]") {
		return &ast.List{Pos: pos}
	}
	first := p.starNamedExpr()
	if p.isKw("for") || p.isKw("async") {
		n := &ast.ListComp{Pos: pos, Elt: first, Generators: p.comprehensions()}
		p.expectOp("]")
		return n
	}
	list := &ast.List{Pos: pos, Elts: []ast.Expr{first}}
	for p.gotOp(",") && !p.isOp("]") {
		list.Elts = append(list.Elts, p.starNamedExpr())
	}
	p.expectOp("]")
	return list
}

func (p *parser) braceAtom() ast.Expr {
	pos := p.expectOp("{").pos
	if p.gotOp("}") {
		return &ast.Dict{Pos: pos}
	}

	if p.isOp("**") {
		return p.dictRest(pos, nil, nil)
	}
	first := p.starNamedExpr()
	if p.gotOp(":") {
		value := p.expression()
		if p.isKw("for") || p.isKw("async") {
			n := &ast.DictComp{Pos: pos, Key: first, Value: value, Generators: p.comprehensions()}
			p.expectOp("}")
			return n
		}
		return p.dictRest(pos, first, value)
	}

	if p.isKw("for") || p.isKw("async") {
		n := &ast.SetComp{Pos: pos, Elt: first, Generators: p.comprehensions()}
		p.expectOp("}")
		return n
	}
	set := &ast.Set{Pos: pos, Elts: []ast.Expr{first}}
	for p.gotOp(",") && !p.isOp("}") {
		set.Elts = append(set.Elts, p.starNamedExpr())
	}
	p.expectOp("}")
	return set
}

// dictRest parses the remaining entries of a dict display whose first entry,
// if already parsed, is key: value.
func (p *parser) dictRest(pos ast.Pos, key, value ast.Expr) ast.Expr {
	d := &ast.Dict{Pos: pos}
	if value != nil {
		d.Keys = append(d.Keys, key)
		d.Values = append(d.Values, value)
		if !p.gotOp(",") {
			p.expectOp("}")
			return d
		}
	}
	for !p.isOp("}") {
		if p.gotOp("**") {
			d.Keys = append(d.Keys, nil)
			d.Values = append(d.Values, p.bitOr())
		} else {
			k := p.expression()
			p.expectOp(":")
			d.Keys = append(d.Keys, k)
			d.Values = append(d.Values, p.expression())
		}
		if !p.gotOp(",") {
			break
		}
	}
	p.expectOp("}")
	return d
}
