package parser

import (
	"testing"

	"github.com/gnolang/pygolf/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(nodes []ast.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Kind().String())
	}
	return out
}

func TestParseStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"assign", "x = 1\n", []string{"Assign"}},
		{"simple statements on one line", "a = 1; b = 2; pass\n", []string{"Assign", "Assign", "Pass"}},
		{"no trailing newline", "x", []string{"Expr"}},
		{"augmented", "x += 1", []string{"AugAssign"}},
		{"annotated", "x: int = 1", []string{"AnnAssign"}},
		{"function", "def f(a, b=1, *c, d, **e):\n    return a\n", []string{"FunctionDef"}},
		{"class", "class A(B, metaclass=M):\n    x = 1\n", []string{"ClassDef"}},
		{"if elif else", "if a:\n  b\nelif c:\n  d\nelse:\n  e\n", []string{"If"}},
		{"for else", "for i in range(3):\n    pass\nelse:\n    pass\n", []string{"For"}},
		{"while", "while x: x -= 1\n", []string{"While"}},
		{"try", "try:\n  a\nexcept E as e:\n  b\nexcept:\n  c\nelse:\n  d\nfinally:\n  e\n", []string{"Try"}},
		{"with", "with open(f) as g, h:\n  pass\n", []string{"With"}},
		{"parenthesized with", "with (open(f) as g, h as i):\n  pass\n", []string{"With"}},
		{"imports", "import os.path as p, sys\nfrom . import (a as b, c,)\nfrom m import *\n", []string{"Import", "ImportFrom", "ImportFrom"}},
		{"global", "def f():\n global a, b\n nonlocal c\n", []string{"FunctionDef"}},
		{"decorated", "@d\n@e.f(1)\ndef g(): pass\n", []string{"FunctionDef"}},
		{"async", "async def f():\n  async for x in y: await z\n  async with a: pass\n", []string{"FunctionDef"}},
		{"comments and blank lines", "# c\n\nx = 1  # c\n\n   # indented comment\ny = 2\n", []string{"Assign", "Assign"}},
		{"continuation", "x = 1 + \\\n    2\n", []string{"Assign"}},
		{"bracket joining", "x = [\n  1,\n  2,\n]\n", []string{"Assign"}},
		{"del assert raise", "del a, b[0]\nassert x, 'm'\nraise E from c\n", []string{"Delete", "Assert", "Raise"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mod, err := Parse(tt.src)
			require.NoError(t, err)
			var got []ast.Node
			for _, s := range mod.Body {
				got = append(got, s)
			}
			assert.Equal(t, tt.want, kinds(got))
		})
	}
}

func TestParseTargets(t *testing.T) {
	t.Parallel()

	mod, err := Parse("a, (b, *c) = x = f()\nfor i, j in y: pass\n")
	require.NoError(t, err)

	assign := mod.Body[0].(*ast.Assign)
	require.Len(t, assign.Targets, 2)
	tuple := assign.Targets[0].(*ast.Tuple)
	assert.IsType(t, &ast.AssignName{}, tuple.Elts[0])
	inner := tuple.Elts[1].(*ast.Tuple)
	star := inner.Elts[1].(*ast.Starred)
	assert.Equal(t, "c", star.Value.(*ast.AssignName).ID)
	assert.Equal(t, "x", assign.Targets[1].(*ast.AssignName).ID)

	loop := mod.Body[1].(*ast.For)
	assert.Len(t, loop.Target.(*ast.Tuple).Elts, 2)
}

func TestParseExpressions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		kind ast.Kind
	}{
		{"a or b and not c", ast.KindBoolOp},
		{"a < b <= c", ast.KindCompare},
		{"a not in b", ast.KindCompare},
		{"a is not b", ast.KindCompare},
		{"-a ** -b", ast.KindUnaryOp},
		{"a if b else c", ast.KindIfExp},
		{"lambda x, *y, z=1: x", ast.KindLambda},
		{"f(x for x in y)", ast.KindCall},
		{"[x for x in y if x for z in w]", ast.KindListComp},
		{"{k: v for k, v in d}", ast.KindDictComp},
		{"{a, *b}", ast.KindSet},
		{"{**a, 'b': 1}", ast.KindDict},
		{"x[1:2, ::3]", ast.KindSubscript},
		{"(y := 10)", ast.KindNamedExpr},
		{"a.b.c(d)[e]", ast.KindSubscript},
		{"()", ast.KindTuple},
		{"1,", ast.KindTuple},
		{"...", ast.KindConst},
		{"'a' 'b'", ast.KindConst},
		{"f'{x!r:>{w}}'", ast.KindJoinedStr},
	}
	for _, tt := range tests {
		e, err := ParseExpr(tt.src)
		require.NoError(t, err, tt.src)
		assert.Equal(t, tt.kind, e.Kind(), tt.src)
	}
}

func TestPrecedence(t *testing.T) {
	t.Parallel()

	e, err := ParseExpr("1 + 2 * 3 ** 4")
	require.NoError(t, err)
	add := e.(*ast.BinOp)
	assert.Equal(t, "+", add.Op)
	mul := add.Right.(*ast.BinOp)
	assert.Equal(t, "*", mul.Op)
	pow := mul.Right.(*ast.BinOp)
	assert.Equal(t, "**", pow.Op)

	e, err = ParseExpr("a - b - c")
	require.NoError(t, err)
	sub := e.(*ast.BinOp)
	assert.IsType(t, &ast.BinOp{}, sub.Left)
	assert.IsType(t, &ast.Name{}, sub.Right)

	e, err = ParseExpr("2 ** 3 ** 2")
	require.NoError(t, err)
	assert.IsType(t, &ast.BinOp{}, e.(*ast.BinOp).Right)
}

func TestNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src   string
		typ   ast.ConstType
		value string
	}{
		{"1_000", ast.ConstInt, "1000"},
		{"0xFF", ast.ConstInt, "0xFF"},
		{"0", ast.ConstInt, "0"},
		{"00", ast.ConstInt, "00"},
		{"1.5", ast.ConstFloat, "1.5"},
		{".5", ast.ConstFloat, ".5"},
		{"1e10", ast.ConstFloat, "1e10"},
		{"2j", ast.ConstImag, "2j"},
	}
	for _, tt := range tests {
		e, err := ParseExpr(tt.src)
		require.NoError(t, err, tt.src)
		c := e.(*ast.Const)
		assert.Equal(t, tt.typ, c.Type, tt.src)
		assert.Equal(t, tt.value, c.Value, tt.src)
	}

	_, err := ParseExpr("0777")
	assert.Error(t, err)
}

func TestStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src   string
		typ   ast.ConstType
		value string
	}{
		{`'a\nb'`, ast.ConstStr, "a\nb"},
		{`r'a\nb'`, ast.ConstStr, `a\nb`},
		{`"it's"`, ast.ConstStr, "it's"},
		{`'\x41\101\u00e9'`, ast.ConstStr, "AAé"},
		{`'\q'`, ast.ConstStr, `\q`},
		{"'''a\nb'''", ast.ConstStr, "a\nb"},
		{`b'\xff'`, ast.ConstBytes, "\xff"},
		{`'a' "b" 'c'`, ast.ConstStr, "abc"},
		{"'a\\\nb'", ast.ConstStr, "ab"},
	}
	for _, tt := range tests {
		e, err := ParseExpr(tt.src)
		require.NoError(t, err, tt.src)
		c := e.(*ast.Const)
		assert.Equal(t, tt.typ, c.Type, tt.src)
		assert.Equal(t, tt.value, c.Value, tt.src)
	}

	_, err := ParseExpr(`'a' b'c'`)
	assert.Error(t, err)
	_, err = ParseExpr(`'\N{BULLET}'`)
	assert.Error(t, err)
}

func TestFormattedStrings(t *testing.T) {
	t.Parallel()

	e, err := ParseExpr(`f'a{{b}}{c!r:>{width}.2f}d' 'e'`)
	require.NoError(t, err)
	js := e.(*ast.JoinedStr)
	require.Len(t, js.Values, 3)
	assert.Equal(t, "a{b}", js.Values[0].(*ast.Const).Value)

	fv := js.Values[1].(*ast.FormattedValue)
	assert.Equal(t, "c", fv.Value.(*ast.Name).ID)
	assert.Equal(t, byte('r'), fv.Conversion)
	require.NotNil(t, fv.FormatSpec)
	require.Len(t, fv.FormatSpec.Values, 3)
	assert.Equal(t, ">", fv.FormatSpec.Values[0].(*ast.Const).Value)
	assert.Equal(t, "width", fv.FormatSpec.Values[1].(*ast.FormattedValue).Value.(*ast.Name).ID)
	assert.Equal(t, ".2f", fv.FormatSpec.Values[2].(*ast.Const).Value)

	assert.Equal(t, "de", js.Values[2].(*ast.Const).Value)

	e, err = ParseExpr(`f"{x['k']} {a!=b}"`)
	require.NoError(t, err)
	js = e.(*ast.JoinedStr)
	require.Len(t, js.Values, 3)
	assert.IsType(t, &ast.Subscript{}, js.Values[0].(*ast.FormattedValue).Value)
	assert.IsType(t, &ast.Compare{}, js.Values[2].(*ast.FormattedValue).Value)

	e, err = ParseExpr(`f'{x = }'`)
	require.NoError(t, err)
	js = e.(*ast.JoinedStr)
	assert.Equal(t, "x = ", js.Values[0].(*ast.Const).Value)
	assert.Equal(t, byte('r'), js.Values[1].(*ast.FormattedValue).Conversion)

	for _, bad := range []string{`f'{}'`, `f'}'`, `f'{x'`, `f'{x!z}'`} {
		_, err := ParseExpr(bad)
		assert.Error(t, err, bad)
	}
}

func TestLegacyStatements(t *testing.T) {
	t.Parallel()

	mod, err := Parse("print 'hello', x\nexec code in ns\ny = `1`\nprint(x)\nprint\n")
	require.NoError(t, err)
	require.Len(t, mod.Body, 5)

	p := mod.Body[0].(*ast.PrintStmt)
	assert.Len(t, p.Values, 2)
	ex := mod.Body[1].(*ast.ExecStmt)
	assert.NotNil(t, ex.Globals)
	assert.IsType(t, &ast.Repr{}, mod.Body[2].(*ast.Assign).Value)
	assert.IsType(t, &ast.ExprStmt{}, mod.Body[3])
	assert.IsType(t, &ast.ExprStmt{}, mod.Body[4])
}

func TestSyntaxErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src        string
		incomplete bool
	}{
		{"x = (1,", true},
		{"if x:\n", true},
		{"s = '''abc", true},
		{"x = 1 +\n", false},
		{"  x = 1\n", false},
		{"if x:\n    a\n  b\n", false},
		{"x = 'abc\n", false},
		{"1 = x\n", false},
		{"f() += 1\n", false},
		{"x = )\n", false},
		{"def f(a=1, b): pass\n", false},
		{"try:\n  pass\n", true},
		{"a $ b\n", false},
	}
	for _, tt := range tests {
		_, err := Parse(tt.src, WithFilename("t.py"))
		require.Error(t, err, tt.src)
		var perr *Error
		require.ErrorAs(t, err, &perr, tt.src)
		assert.Equal(t, "t.py", perr.Filename)
		assert.Equal(t, tt.incomplete, IsIncomplete(err), tt.src)
	}
}

func TestErrorPosition(t *testing.T) {
	t.Parallel()

	_, err := Parse("x = 1\ny = = 2\n", WithFilename("p.py"))
	require.Error(t, err)
	assert.Equal(t, "p.py:2:5: invalid syntax: unexpected \"=\"", err.Error())
}

func TestHooksRunBottomUp(t *testing.T) {
	t.Parallel()

	var seen []string
	mod, err := Parse("x = foo(y)\n", WithHook(func(n ast.Node) ast.Node {
		seen = append(seen, n.Kind().String())
		if name, ok := n.(*ast.Name); ok && name.ID == "foo" {
			return &ast.Name{Pos: name.Pos, ID: "bar"}
		}
		return n
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"AssignName", "Name", "Name", "Call", "Assign", "Module"}, seen)
	call := mod.Body[0].(*ast.Assign).Value.(*ast.Call)
	assert.Equal(t, "bar", call.Func.(*ast.Name).ID)
}

func TestHookReplacingModule(t *testing.T) {
	t.Parallel()

	_, err := Parse("x\n", WithHook(func(n ast.Node) ast.Node {
		if _, ok := n.(*ast.Module); ok {
			return &ast.Pass{}
		}
		return n
	}))
	assert.ErrorIs(t, err, ast.ErrBadReplacement)
}

func TestPositions(t *testing.T) {
	t.Parallel()

	mod, err := Parse("if a:\n    b = f'{c}'\n")
	require.NoError(t, err)
	assign := mod.Body[0].(*ast.If).Body[0].(*ast.Assign)
	assert.Equal(t, ast.Pos{Offset: 10, Line: 2, Column: 5}, assign.Pos)
	fv := assign.Value.(*ast.JoinedStr).Values[0].(*ast.FormattedValue)
	name := fv.Value.(*ast.Name)
	assert.Equal(t, 2, name.Pos.Line)
	assert.Equal(t, 12, name.Pos.Column)
	assert.Equal(t, 17, name.Pos.Offset)
}

func TestCRLF(t *testing.T) {
	t.Parallel()

	mod, err := Parse("if a:\r\n    b\r\n")
	require.NoError(t, err)
	assert.Len(t, mod.Body, 1)
}
