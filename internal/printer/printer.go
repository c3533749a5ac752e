// Package printer renders syntax trees as source text.
//
// The minimal printer emits the shortest text it knows that parses back to
// the same tree: no optional whitespace, one-space indentation, simple
// statements joined with ';', parentheses only where precedence requires
// them, and the shortest spelling of every literal. The reference printer
// emits conventional, readable text and is used to synthesize small
// sub-expressions.
package printer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"

	"github.com/gnolang/pygolf/internal/ast"
)

// DefaultTarget is the language version assumed when Config.Target is nil.
var DefaultTarget = semver.MustParse("3.8")

// numbers directly followed by a keyword are deprecated from this version on
var adjacentKeywordDeprecated = semver.MustParse("3.12")

// ErrUnrepresentable is returned for values the printer cannot spell in the
// position they occur, such as a string needing escapes inside an f-string
// substitution.
var ErrUnrepresentable = errors.New("value cannot be represented")

// UnsupportedNodeError reports a node the printer cannot render, either
// because it belongs to the previous language generation or because it
// cannot occur at that position.
type UnsupportedNodeError struct {
	Kind ast.Kind
	Pos  ast.Pos
}

func (e *UnsupportedNodeError) Error() string {
	if e.Kind.IsLegacy() {
		return fmt.Sprintf("%d:%d: python 2 construct %s is not supported", e.Pos.Line, e.Pos.Column, e.Kind)
	}
	return fmt.Sprintf("%d:%d: cannot print %s node here", e.Pos.Line, e.Pos.Column, e.Kind)
}

// Config controls printing.
type Config struct {
	// Readable selects the reference layout: spaces around operators,
	// four-space indentation and one statement per line.
	Readable bool

	// Target is the oldest language version the output must run on.
	Target *semver.Version
}

// Print renders n with the minimal printer for the default target.
func Print(n ast.Node) (string, error) {
	return Config{}.Print(n)
}

// Reference renders n with the reference printer.
func Reference(n ast.Node) (string, error) {
	return Config{Readable: true}.Print(n)
}

// Print renders n.
func (c Config) Print(n ast.Node) (string, error) {
	p := newPrinter(c)
	return p.capture(func() { p.node(n) })
}

type bailout struct{ err error }

type numClass int

const (
	numNone numClass = iota
	numDecimal
	numZero
	numOther
)

type printer struct {
	cfg    Config
	modern bool

	buf    strings.Builder
	last   rune
	num    numClass
	numInt bool

	// quote characters taken by enclosing f-strings
	banned  string
	inField bool
}

func newPrinter(c Config) *printer {
	target := c.Target
	if target == nil {
		target = DefaultTarget
	}
	return &printer{cfg: c, modern: !target.LessThan(adjacentKeywordDeprecated)}
}

func (p *printer) fail(n ast.Node) {
	panic(bailout{&UnsupportedNodeError{Kind: n.Kind(), Pos: n.Start()}})
}

func (p *printer) failf(format string, args ...any) {
	panic(bailout{fmt.Errorf("%w: "+format, append([]any{ErrUnrepresentable}, args...)...)})
}

// ----------------------------------------------------------------------------
// Token output

func isWordRune(r rune) bool {
	return r == '_' || r >= 0x80 ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// needSpace reports whether a token starting with r must be separated from
// the output so far to tokenize as written.
func (p *printer) needSpace(r rune) bool {
	if p.buf.Len() == 0 {
		return false
	}
	if p.num != numNone {
		if r == '.' {
			return p.numInt
		}
		if !isWordRune(r) {
			return false
		}
		switch p.num {
		case numDecimal:
			return p.modern || strings.ContainsRune("eEjJ_", r) || (r >= '0' && r <= '9')
		case numZero:
			return p.modern || strings.ContainsRune("eEjJ_oObBxX", r) || (r >= '0' && r <= '9')
		}
		return true
	}
	if isWordRune(p.last) && isWordRune(r) {
		return true
	}
	return (p.last == '\'' || p.last == '"') && (r == '\'' || r == '"')
}

func (p *printer) write(s string) {
	if s == "" {
		return
	}
	first, _ := utf8.DecodeRuneInString(s)
	if p.needSpace(first) {
		p.buf.WriteByte(' ')
	}
	p.buf.WriteString(s)
	p.last, _ = utf8.DecodeLastRuneInString(s)
	p.num = numNone
}

// number writes a numeric literal and remembers how it may be followed.
func (p *printer) number(s string, isInt bool) {
	p.write(s)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"), strings.HasPrefix(lower, "0o"), strings.HasPrefix(lower, "0b"),
		strings.HasSuffix(lower, "j"):
		p.num = numOther
	case isInt && strings.Trim(s, "0") == "":
		p.num = numZero
	default:
		p.num = numDecimal
	}
	p.numInt = isInt
}

// sp writes a space in readable mode.
func (p *printer) sp() {
	if p.cfg.Readable && p.last != ' ' && p.buf.Len() > 0 {
		p.buf.WriteByte(' ')
		p.last = ' '
		p.num = numNone
	}
}

func (p *printer) comma() {
	p.write(",")
	p.sp()
}

// binop writes an infix operator.
func (p *printer) binop(op string) {
	p.sp()
	p.write(op)
	p.sp()
}

func (p *printer) newline(level int) {
	width := 1
	if p.cfg.Readable {
		width = 4
	}
	p.buf.WriteByte('\n')
	p.buf.WriteString(strings.Repeat(" ", level*width))
	p.last = '\n'
	if level > 0 {
		p.last = ' '
	}
	p.num = numNone
}

// ----------------------------------------------------------------------------
// Statements

func (p *printer) node(n ast.Node) {
	switch n := n.(type) {
	case *ast.Module:
		p.module(n)
	case ast.Stmt:
		p.stmt(n, 0)
	case ast.Expr:
		p.expr(n, precTuple)
	default:
		p.fail(n)
	}
}

// inline reports whether body can be written on one line joined by ';'.
func (p *printer) inline(body []ast.Stmt) bool {
	if p.cfg.Readable {
		return false
	}
	for _, s := range body {
		if s.Kind().IsBlock() {
			return false
		}
	}
	return true
}

func (p *printer) module(m *ast.Module) {
	if p.inline(m.Body) {
		p.simpleStmts(m.Body)
		return
	}
	for i, s := range m.Body {
		if i > 0 {
			p.newline(0)
		}
		p.stmt(s, 0)
	}
}

func (p *printer) simpleStmts(body []ast.Stmt) {
	for i, s := range body {
		if i > 0 {
			p.write(";")
		}
		p.stmt(s, 0)
	}
}

// block writes ':' and the body of a compound statement at level.
func (p *printer) block(body []ast.Stmt, level int) {
	p.write(":")
	if p.inline(body) {
		p.simpleStmts(body)
		return
	}
	for _, s := range body {
		p.newline(level + 1)
		p.stmt(s, level+1)
	}
}

func (p *printer) stmt(s ast.Stmt, level int) {
	switch s := s.(type) {
	case *ast.FunctionDef:
		p.decorators(s.Decorators, level)
		if s.Async {
			p.write("async")
		}
		p.write("def")
		p.write(s.Name)
		p.write("(")
		p.arguments(s.Args)
		p.write(")")
		if s.Returns != nil {
			p.binop("->")
			p.expr(s.Returns, precTest)
		}
		p.block(s.Body, level)
	case *ast.ClassDef:
		p.decorators(s.Decorators, level)
		p.write("class")
		p.write(s.Name)
		if len(s.Bases) > 0 || len(s.Keywords) > 0 {
			p.write("(")
			p.callArgs(s.Bases, s.Keywords)
			p.write(")")
		}
		p.block(s.Body, level)
	case *ast.Return:
		p.write("return")
		if s.Value != nil {
			p.sp()
			p.expr(s.Value, precTuple)
		}
	case *ast.Delete:
		p.write("del")
		p.sp()
		p.exprList(s.Targets, precTest)
	case *ast.Assign:
		for _, t := range s.Targets {
			p.expr(t, precTuple)
			p.binop("=")
		}
		p.expr(s.Value, precYield)
	case *ast.AugAssign:
		p.expr(s.Target, precTuple)
		p.binop(s.Op + "=")
		p.expr(s.Value, precYield)
	case *ast.AnnAssign:
		p.expr(s.Target, precTuple)
		p.write(":")
		p.sp()
		p.expr(s.Annotation, precTest)
		if s.Value != nil {
			p.binop("=")
			p.expr(s.Value, precYield)
		}
	case *ast.For:
		if s.Async {
			p.write("async")
		}
		p.write("for")
		p.sp()
		p.expr(s.Target, precTuple)
		p.sp()
		p.write("in")
		p.sp()
		p.expr(s.Iter, precTuple)
		p.block(s.Body, level)
		p.orelse(s.Orelse, level)
	case *ast.While:
		p.write("while")
		p.sp()
		p.test(s.Test)
		p.block(s.Body, level)
		p.orelse(s.Orelse, level)
	case *ast.If:
		p.write("if")
		p.sp()
		p.test(s.Test)
		p.block(s.Body, level)
		for {
			if len(s.Orelse) == 1 {
				if elif, ok := s.Orelse[0].(*ast.If); ok {
					p.newline(level)
					p.write("elif")
					p.sp()
					p.test(elif.Test)
					p.block(elif.Body, level)
					s = elif
					continue
				}
			}
			p.orelse(s.Orelse, level)
			break
		}
	case *ast.With:
		if s.Async {
			p.write("async")
		}
		p.write("with")
		p.sp()
		for i, item := range s.Items {
			if i > 0 {
				p.comma()
			}
			p.expr(item.Context, precTest)
			if item.Vars != nil {
				p.sp()
				p.write("as")
				p.sp()
				p.expr(item.Vars, precTest)
			}
		}
		p.block(s.Body, level)
	case *ast.Raise:
		p.write("raise")
		if s.Exc != nil {
			p.sp()
			p.expr(s.Exc, precTest)
			if s.Cause != nil {
				p.sp()
				p.write("from")
				p.sp()
				p.expr(s.Cause, precTest)
			}
		}
	case *ast.Try:
		p.write("try")
		p.block(s.Body, level)
		for _, h := range s.Handlers {
			p.newline(level)
			p.write("except")
			if h.Type != nil {
				p.sp()
				p.expr(h.Type, precTest)
				if h.Name != nil {
					p.sp()
					p.write("as")
					p.sp()
					p.write(h.Name.ID)
				}
			}
			p.block(h.Body, level)
		}
		p.orelse(s.Orelse, level)
		if len(s.Finalbody) > 0 {
			p.newline(level)
			p.write("finally")
			p.block(s.Finalbody, level)
		}
	case *ast.Assert:
		p.write("assert")
		p.sp()
		p.expr(s.Test, precTest)
		if s.Msg != nil {
			p.comma()
			p.expr(s.Msg, precTest)
		}
	case *ast.Import:
		p.write("import")
		p.sp()
		p.aliases(s.Names)
	case *ast.ImportFrom:
		p.write("from")
		p.sp()
		if s.Level > 0 {
			p.write(strings.Repeat(".", s.Level))
		}
		if s.Module != "" {
			p.write(s.Module)
		}
		p.sp()
		p.write("import")
		p.sp()
		p.aliases(s.Names)
	case *ast.Global:
		p.write("global")
		p.sp()
		p.names(s.Names)
	case *ast.Nonlocal:
		p.write("nonlocal")
		p.sp()
		p.names(s.Names)
	case *ast.ExprStmt:
		p.expr(s.Value, precYield)
	case *ast.Pass:
		p.write("pass")
	case *ast.Break:
		p.write("break")
	case *ast.Continue:
		p.write("continue")
	default:
		p.fail(s)
	}
}

func (p *printer) decorators(decorators []ast.Expr, level int) {
	for _, d := range decorators {
		p.write("@")
		p.expr(d, precTest)
		p.newline(level)
	}
}

func (p *printer) orelse(body []ast.Stmt, level int) {
	if len(body) == 0 {
		return
	}
	p.newline(level)
	p.write("else")
	p.block(body, level)
}

// test writes the condition of an if or while statement, where an
// assignment expression needs no parentheses.
func (p *printer) test(e ast.Expr) {
	if _, ok := e.(*ast.NamedExpr); ok {
		p.expr(e, precNamed)
		return
	}
	p.expr(e, precTest)
}

func (p *printer) aliases(names []*ast.Alias) {
	for i, a := range names {
		if i > 0 {
			p.comma()
		}
		p.write(a.Name)
		if a.AsName != "" {
			p.sp()
			p.write("as")
			p.sp()
			p.write(a.AsName)
		}
	}
}

func (p *printer) names(names []string) {
	for i, name := range names {
		if i > 0 {
			p.comma()
		}
		p.write(name)
	}
}
