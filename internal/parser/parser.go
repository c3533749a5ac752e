// Package parser turns Python 3 source text into the syntax tree of package
// ast. It is a hand-written recursive-descent parser over a tokenizer that
// mirrors the language's own (indentation tokens, implicit line joining,
// string prefixes). Statements of the previous language generation that
// survive tokenization (print and exec statements, back-quoted repr) are
// recognised and returned as legacy nodes instead of syntax errors.
package parser

import (
	"fmt"
	"strings"

	"github.com/gnolang/pygolf/internal/ast"
)

type config struct {
	filename string
	hook     ast.Hook
}

// Option configures Parse.
type Option func(*config)

// WithFilename sets the file name reported in syntax errors.
func WithFilename(name string) Option {
	return func(c *config) { c.filename = name }
}

// WithHook installs a hook that receives every node bottom-up once the tree
// has been built, and may replace it. See ast.Apply.
func WithHook(h ast.Hook) Option {
	return func(c *config) { c.hook = h }
}

// Parse parses a complete program.
func Parse(src string, opts ...Option) (*ast.Module, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	mod, err := parseModule(normalizeNewlines(src), cfg.filename)
	if err != nil {
		return nil, err
	}
	if cfg.hook == nil {
		return mod, nil
	}
	out, err := ast.Apply(mod, cfg.hook)
	if err != nil {
		return nil, err
	}
	root, ok := out.(*ast.Module)
	if !ok {
		return nil, fmt.Errorf("%w: module replaced by %s", ast.ErrBadReplacement, out.Kind())
	}
	return root, nil
}

// ParseExpr parses a single expression, such as one produced by the
// reference printer.
func ParseExpr(src string) (expr ast.Expr, err error) {
	toks, err := tokenize("("+normalizeNewlines(src)+")", "")
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	defer p.recover(&err)
	expr = p.starExpressions()
	if p.tok().kind != tokNewline {
		p.errorf("unexpected %s after expression", p.tok())
	}
	return expr, nil
}

func normalizeNewlines(src string) string {
	if !strings.Contains(src, "\r") {
		return src
	}
	return strings.ReplaceAll(strings.ReplaceAll(src, "\r\n", "\n"), "\r", "\n")
}

func parseModule(src, filename string) (mod *ast.Module, err error) {
	toks, err := tokenize(src, filename)
	if err != nil {
		return nil, err
	}
	p := &parser{filename: filename, toks: toks}
	defer p.recover(&err)
	return p.file(), nil
}

type parser struct {
	filename string
	toks     []token
	i        int
}

func (p *parser) recover(err *error) {
	if r := recover(); r != nil {
		e, ok := r.(*Error)
		if !ok {
			panic(r)
		}
		*err = e
	}
}

func (p *parser) tok() token { return p.toks[p.i] }

func (p *parser) peek(n int) token {
	if p.i+n < len(p.toks) {
		return p.toks[p.i+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() {
	if p.i < len(p.toks)-1 {
		p.i++
	}
}

func (p *parser) errorAt(pos ast.Pos, msg string) {
	panic(&Error{
		Filename:   p.filename,
		Pos:        pos,
		Msg:        msg,
		Incomplete: p.tok().kind == tokEOF,
	})
}

func (p *parser) errorf(format string, args ...any) {
	p.errorAt(p.tok().pos, fmt.Sprintf(format, args...))
}

func (p *parser) isOp(op string) bool {
	t := p.tok()
	return t.kind == tokOp && t.text == op
}

func (p *parser) isKw(kw string) bool {
	t := p.tok()
	return t.kind == tokName && t.text == kw
}

func (p *parser) gotOp(op string) bool {
	if p.isOp(op) {
		p.next()
		return true
	}
	return false
}

func (p *parser) gotKw(kw string) bool {
	if p.isKw(kw) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectOp(op string) token {
	t := p.tok()
	if !p.isOp(op) {
		p.errorf("expected '%s', found %s", op, t)
	}
	p.next()
	return t
}

func (p *parser) expectKw(kw string) token {
	t := p.tok()
	if !p.isKw(kw) {
		p.errorf("expected '%s', found %s", kw, t)
	}
	p.next()
	return t
}

func (p *parser) expect(kind tokenKind) token {
	t := p.tok()
	if t.kind != kind {
		p.errorf("expected %s, found %s", kind, t)
	}
	p.next()
	return t
}

// ident consumes an identifier.
func (p *parser) ident() (string, ast.Pos) {
	t := p.tok()
	if t.kind != tokName || keywords[t.text] {
		p.errorf("expected name, found %s", t)
	}
	p.next()
	return t.text, t.pos
}

// attempt runs f and reports whether it completed without a syntax error;
// on failure the token position is restored.
func (p *parser) attempt(f func()) (ok bool) {
	saved := p.i
	defer func() {
		if r := recover(); r != nil {
			if _, isErr := r.(*Error); !isErr {
				panic(r)
			}
			p.i = saved
			ok = false
		}
	}()
	f()
	return true
}

// ----------------------------------------------------------------------------
// Statements

func (p *parser) file() *ast.Module {
	mod := &ast.Module{Pos: ast.Pos{Line: 1, Column: 1}}
	for p.tok().kind != tokEOF {
		if p.tok().kind == tokNewline {
			p.next()
			continue
		}
		mod.Body = append(mod.Body, p.statement()...)
	}
	return mod
}

func (p *parser) statement() []ast.Stmt {
	t := p.tok()
	if t.kind == tokIndent {
		p.errorf("unexpected indent")
	}
	if t.kind == tokOp && t.text == "@" {
		return []ast.Stmt{p.decorated()}
	}
	if t.kind == tokName {
		switch t.text {
		case "if":
			return []ast.Stmt{p.ifStmt()}
		case "while":
			return []ast.Stmt{p.whileStmt()}
		case "for":
			return []ast.Stmt{p.forStmt(false)}
		case "try":
			return []ast.Stmt{p.tryStmt()}
		case "with":
			return []ast.Stmt{p.withStmt(false)}
		case "def":
			return []ast.Stmt{p.funcDef(nil, false)}
		case "class":
			return []ast.Stmt{p.classDef(nil)}
		case "async":
			return []ast.Stmt{p.asyncStmt(nil)}
		}
	}
	return p.simpleStmts()
}

func (p *parser) simpleStmts() []ast.Stmt {
	var stmts []ast.Stmt
	for {
		stmts = append(stmts, p.simpleStmt())
		if !p.gotOp(";") || p.tok().kind == tokNewline {
			break
		}
	}
	p.expect(tokNewline)
	return stmts
}

// block parses ':' followed by either an indented suite or simple
// statements on the same line.
func (p *parser) block() []ast.Stmt {
	p.expectOp(":")
	if p.tok().kind != tokNewline {
		return p.simpleStmts()
	}
	p.next()
	p.expect(tokIndent)
	var body []ast.Stmt
	for p.tok().kind != tokDedent && p.tok().kind != tokEOF {
		body = append(body, p.statement()...)
	}
	p.expect(tokDedent)
	return body
}

func (p *parser) ifStmt() *ast.If {
	pos := p.tok().pos
	p.next() // if or elif
	n := &ast.If{Pos: pos, Test: p.namedExpr()}
	n.Body = p.block()
	switch {
	case p.isKw("elif"):
		n.Orelse = []ast.Stmt{p.ifStmt()}
	case p.gotKw("else"):
		n.Orelse = p.block()
	}
	return n
}

func (p *parser) whileStmt() *ast.While {
	pos := p.expectKw("while").pos
	n := &ast.While{Pos: pos, Test: p.namedExpr()}
	n.Body = p.block()
	if p.gotKw("else") {
		n.Orelse = p.block()
	}
	return n
}

func (p *parser) forStmt(async bool) *ast.For {
	pos := p.expectKw("for").pos
	n := &ast.For{Pos: pos, Async: async, Target: p.targetList()}
	p.expectKw("in")
	n.Iter = p.starExpressions()
	n.Body = p.block()
	if p.gotKw("else") {
		n.Orelse = p.block()
	}
	return n
}

func (p *parser) tryStmt() *ast.Try {
	pos := p.expectKw("try").pos
	n := &ast.Try{Pos: pos, Body: p.block()}
	for p.isKw("except") {
		h := &ast.ExceptHandler{Pos: p.tok().pos}
		p.next()
		if !p.isOp(":") {
			h.Type = p.expression()
			if p.gotKw("as") {
				name, npos := p.ident()
				h.Name = &ast.AssignName{Pos: npos, ID: name}
			} else if p.isOp(",") {
				p.errorf("multiple exception types must be parenthesized")
			}
		}
		h.Body = p.block()
		n.Handlers = append(n.Handlers, h)
	}
	if len(n.Handlers) > 0 && p.gotKw("else") {
		n.Orelse = p.block()
	}
	if p.gotKw("finally") {
		n.Finalbody = p.block()
	}
	if len(n.Handlers) == 0 && n.Finalbody == nil {
		p.errorf("expected 'except' or 'finally' block")
	}
	return n
}

func (p *parser) withStmt(async bool) *ast.With {
	pos := p.expectKw("with").pos
	n := &ast.With{Pos: pos, Async: async}
	if p.isOp("(") {
		var items []*ast.WithItem
		if p.attempt(func() {
			p.next()
			for !p.isOp(")") {
				items = append(items, p.withItem())
				if !p.gotOp(",") {
					break
				}
			}
			p.expectOp(")")
			if !p.isOp(":") {
				p.errorf("expected ':'")
			}
		}) && len(items) > 0 {
			n.Items = items
		}
	}
	if n.Items == nil {
		for {
			n.Items = append(n.Items, p.withItem())
			if !p.gotOp(",") {
				break
			}
		}
	}
	n.Body = p.block()
	return n
}

func (p *parser) withItem() *ast.WithItem {
	item := &ast.WithItem{Pos: p.tok().pos, Context: p.expression()}
	if p.gotKw("as") {
		item.Vars = p.toTarget(p.starTarget())
	}
	return item
}

func (p *parser) decorated() ast.Stmt {
	var decorators []ast.Expr
	for p.gotOp("@") {
		decorators = append(decorators, p.namedExpr())
		p.expect(tokNewline)
	}
	switch {
	case p.isKw("def"):
		return p.funcDef(decorators, false)
	case p.isKw("class"):
		return p.classDef(decorators)
	case p.isKw("async"):
		return p.asyncStmt(decorators)
	}
	p.errorf("expected function or class definition after decorator")
	return nil
}

func (p *parser) asyncStmt(decorators []ast.Expr) ast.Stmt {
	p.expectKw("async")
	switch {
	case p.isKw("def"):
		return p.funcDef(decorators, true)
	case decorators != nil:
	case p.isKw("for"):
		return p.forStmt(true)
	case p.isKw("with"):
		return p.withStmt(true)
	}
	p.errorf("unexpected %s after 'async'", p.tok())
	return nil
}

func (p *parser) funcDef(decorators []ast.Expr, async bool) *ast.FunctionDef {
	pos := p.expectKw("def").pos
	name, _ := p.ident()
	n := &ast.FunctionDef{Pos: pos, Name: name, Decorators: decorators, Async: async}
	p.expectOp("(")
	n.Args = p.parameters(")", true)
	p.expectOp(")")
	if p.gotOp("->") {
		n.Returns = p.expression()
	}
	n.Body = p.block()
	return n
}

func (p *parser) classDef(decorators []ast.Expr) *ast.ClassDef {
	pos := p.expectKw("class").pos
	name, _ := p.ident()
	n := &ast.ClassDef{Pos: pos, Name: name, Decorators: decorators}
	if p.gotOp("(") {
		n.Bases, n.Keywords = p.callArgs()
	}
	n.Body = p.block()
	return n
}

// parameters parses a parameter list up to (not including) closer.
func (p *parser) parameters(closer string, annotations bool) *ast.Arguments {
	args := &ast.Arguments{Pos: p.tok().pos}
	star := false
	for !p.isOp(closer) {
		switch {
		case p.gotOp("/"):
			if star || len(args.PosOnly) > 0 || len(args.Args) == 0 {
				p.errorf("invalid '/' in parameter list")
			}
			args.PosOnly, args.Args = args.Args, nil
		case p.gotOp("*"):
			if star {
				p.errorf("duplicate '*' in parameter list")
			}
			star = true
			if !p.isOp(",") && !p.isOp(closer) {
				args.Vararg = p.param(annotations)
			}
		case p.gotOp("**"):
			args.Kwarg = p.param(annotations)
		default:
			a := p.param(annotations)
			var def ast.Expr
			if p.gotOp("=") {
				def = p.expression()
			}
			switch {
			case star:
				args.KwOnly = append(args.KwOnly, a)
				args.KwDefaults = append(args.KwDefaults, def)
			case def != nil:
				args.Args = append(args.Args, a)
				args.Defaults = append(args.Defaults, def)
			case len(args.Defaults) > 0:
				p.errorAt(a.Pos, "non-default argument follows default argument")
			default:
				args.Args = append(args.Args, a)
			}
		}
		if !p.gotOp(",") {
			break
		}
	}
	return args
}

func (p *parser) param(annotations bool) *ast.Arg {
	name, pos := p.ident()
	a := &ast.Arg{Pos: pos, Name: &ast.AssignName{Pos: pos, ID: name}}
	if annotations && p.gotOp(":") {
		a.Annotation = p.expression()
	}
	return a
}

func (p *parser) simpleStmt() ast.Stmt {
	t := p.tok()
	pos := t.pos
	if t.kind == tokName {
		switch t.text {
		case "pass":
			p.next()
			return &ast.Pass{Pos: pos}
		case "break":
			p.next()
			return &ast.Break{Pos: pos}
		case "continue":
			p.next()
			return &ast.Continue{Pos: pos}
		case "return":
			p.next()
			n := &ast.Return{Pos: pos}
			if p.canStartExpr() {
				n.Value = p.starExpressions()
			}
			return n
		case "raise":
			p.next()
			n := &ast.Raise{Pos: pos}
			if p.canStartExpr() {
				n.Exc = p.expression()
				if p.gotKw("from") {
					n.Cause = p.expression()
				}
			}
			return n
		case "global", "nonlocal":
			p.next()
			var names []string
			for {
				name, _ := p.ident()
				names = append(names, name)
				if !p.gotOp(",") {
					break
				}
			}
			if t.text == "global" {
				return &ast.Global{Pos: pos, Names: names}
			}
			return &ast.Nonlocal{Pos: pos, Names: names}
		case "del":
			p.next()
			n := &ast.Delete{Pos: pos}
			for {
				n.Targets = append(n.Targets, p.bitOr())
				if !p.gotOp(",") || !p.canStartExpr() {
					break
				}
			}
			return n
		case "assert":
			p.next()
			n := &ast.Assert{Pos: pos, Test: p.expression()}
			if p.gotOp(",") {
				n.Msg = p.expression()
			}
			return n
		case "import":
			return p.importStmt()
		case "from":
			return p.importFrom()
		case "print":
			if p.legacyOperand(p.peek(1)) {
				return p.printStmt()
			}
		case "exec":
			if p.legacyOperand(p.peek(1)) {
				return p.execStmt()
			}
		}
	}
	return p.exprStmt()
}

// legacyOperand reports whether t, following a bare print or exec, can only
// be the operand of the statement form of the previous language generation.
func (p *parser) legacyOperand(t token) bool {
	switch t.kind {
	case tokString, tokNumber:
		return true
	case tokName:
		switch t.text {
		case "None", "True", "False", "not", "lambda":
			return true
		}
		return !keywords[t.text]
	}
	return false
}

func (p *parser) printStmt() ast.Stmt {
	pos := p.tok().pos
	p.next()
	n := &ast.PrintStmt{Pos: pos}
	for p.canStartExpr() {
		n.Values = append(n.Values, p.expression())
		if !p.gotOp(",") {
			break
		}
	}
	return n
}

func (p *parser) execStmt() ast.Stmt {
	pos := p.tok().pos
	p.next()
	n := &ast.ExecStmt{Pos: pos, Body: p.bitOr()}
	if p.gotKw("in") {
		n.Globals = p.expression()
		if p.gotOp(",") {
			n.Locals = p.expression()
		}
	}
	return n
}

func (p *parser) dottedName() string {
	name, _ := p.ident()
	for p.gotOp(".") {
		part, _ := p.ident()
		name += "." + part
	}
	return name
}

func (p *parser) importStmt() ast.Stmt {
	pos := p.expectKw("import").pos
	n := &ast.Import{Pos: pos}
	for {
		a := &ast.Alias{Pos: p.tok().pos, Name: p.dottedName()}
		if p.gotKw("as") {
			a.AsName, _ = p.ident()
		}
		n.Names = append(n.Names, a)
		if !p.gotOp(",") {
			break
		}
	}
	return n
}

func (p *parser) importFrom() ast.Stmt {
	pos := p.expectKw("from").pos
	n := &ast.ImportFrom{Pos: pos}
	for {
		if p.gotOp(".") {
			n.Level++
		} else if p.gotOp("...") {
			n.Level += 3
		} else {
			break
		}
	}
	if !p.isKw("import") {
		n.Module = p.dottedName()
	} else if n.Level == 0 {
		p.errorf("expected module name")
	}
	p.expectKw("import")
	if p.isOp("*") {
		n.Names = []*ast.Alias{{Pos: p.tok().pos, Name: "*"}}
		p.next()
		return n
	}
	paren := p.gotOp("(")
	for {
		a := &ast.Alias{Pos: p.tok().pos}
		a.Name, _ = p.ident()
		if p.gotKw("as") {
			a.AsName, _ = p.ident()
		}
		n.Names = append(n.Names, a)
		if !p.gotOp(",") {
			break
		}
		if paren && p.isOp(")") {
			break
		}
	}
	if paren {
		p.expectOp(")")
	}
	return n
}

func (p *parser) exprStmt() ast.Stmt {
	pos := p.tok().pos
	first := p.yieldOrStarExpressions()

	if p.isOp(":") {
		p.next()
		target := first
		switch first.(type) {
		case *ast.Name, *ast.Attribute, *ast.Subscript:
		default:
			p.errorAt(first.Start(), "only single target (not tuple) can be annotated")
		}
		n := &ast.AnnAssign{Pos: pos, Target: p.toTarget(target), Annotation: p.expression()}
		if p.gotOp("=") {
			n.Value = p.yieldOrStarExpressions()
		}
		return n
	}

	if t := p.tok(); t.kind == tokOp {
		if op, ok := augOps[t.text]; ok {
			switch first.(type) {
			case *ast.Name, *ast.Attribute, *ast.Subscript:
			default:
				p.errorAt(first.Start(), "illegal expression for augmented assignment")
			}
			p.next()
			return &ast.AugAssign{
				Pos:    pos,
				Target: p.toTarget(first),
				Op:     op,
				Value:  p.yieldOrStarExpressions(),
			}
		}
	}

	if !p.isOp("=") {
		return &ast.ExprStmt{Pos: pos, Value: first}
	}
	n := &ast.Assign{Pos: pos}
	value := first
	for p.gotOp("=") {
		n.Targets = append(n.Targets, p.toTarget(value))
		value = p.yieldOrStarExpressions()
	}
	n.Value = value
	return n
}

// toTarget converts an expression parsed in store position into an
// assignment target.
func (p *parser) toTarget(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.Name:
		if keywords[e.ID] {
			p.errorAt(e.Pos, "cannot assign to "+e.ID)
		}
		return &ast.AssignName{Pos: e.Pos, ID: e.ID}
	case *ast.Tuple:
		for i, elt := range e.Elts {
			e.Elts[i] = p.toTarget(elt)
		}
		return e
	case *ast.List:
		for i, elt := range e.Elts {
			e.Elts[i] = p.toTarget(elt)
		}
		return e
	case *ast.Starred:
		e.Value = p.toTarget(e.Value)
		return e
	case *ast.Attribute, *ast.Subscript:
		return e
	}
	p.errorAt(e.Start(), "cannot assign to "+describe(e))
	return nil
}

func describe(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Const:
		return "literal"
	case *ast.Call:
		return "function call"
	case *ast.BinOp, *ast.UnaryOp, *ast.BoolOp:
		return "expression"
	case *ast.Compare:
		return "comparison"
	default:
		return strings.ToLower(e.Kind().String())
	}
}
