package printer

import (
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/pygolf/internal/ast"
	"github.com/gnolang/pygolf/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Module {
	t.Helper()
	m, err := parser.Parse(src)
	require.NoError(t, err)
	return m
}

func golf(t *testing.T, src string) string {
	t.Helper()
	out, err := Print(mustParse(t, src))
	require.NoError(t, err)
	return out
}

func TestPrintExpressions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want string
	}{
		{"True and '' and False", "True and''and False"},
		{"[i for i in range(10) if i < 5 if i > 8]", "[i for i in range(10)if i<5if i>8]"},
		{"{k: 2 for k, _ in things if k < 5 for things in meta_things}", "{k:2for k,_ in things if k<5for things in meta_things}"},
		{"5 if {} else 2", "5if{}else 2"},
		{"not []", "not[]"},
		{"x = 1 if y else 2", "x=1if y else 2"},
		{"x = 0 if y else 2", "x=0if y else 2"},
		{"(1).real", "1 .real"},
		{"x = -1", "x=-1"},
		{"print(*a, **k)", "print(*a,**k)"},
		{"{**a, 'b': 1}", "{**a,'b':1}"},
		{"x = [*a, *b]", "x=[*a,*b]"},
		{"f(x for x in y)", "f(x for x in y)"},
		{"f((x for x in y), z)", "f((x for x in y),z)"},
		{"a[1:2, ::3]", "a[1:2,::3]"},
		{"a[::]", "a[:]"},
		{"x[(1, 2)]", "x[1,2]"},
		{"x[()]", "x[()]"},
		{"lambda *a, **k: 0", "lambda*a,**k:0"},
		{"(lambda: 1)()", "(lambda:1)()"},
		{"a.b(c)[d]", "a.b(c)[d]"},
		{"x = a if b else c", "x=a if b else c"},
		{"a is not b not in c", "a is not b not in c"},
		{"await_ = 1", "await_=1"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, golf(t, tt.src))
		})
	}
}

func TestPrintPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want string
	}{
		{"(a + b) * c", "(a+b)*c"},
		{"a + (b + c)", "a+(b+c)"},
		{"(a + b) + c", "a+b+c"},
		{"a - (b - c)", "a-(b-c)"},
		{"a ** (b ** c)", "a**b**c"},
		{"(a ** b) ** c", "(a**b)**c"},
		{"(-1) ** 2", "(-1)**2"},
		{"2 ** -1", "2**-1"},
		{"-(-x)", "--x"},
		{"not (a and b)", "not(a and b)"},
		{"(not a) and b", "not a and b"},
		{"(a or b) and c", "(a or b)and c"},
		{"a < (b < c)", "a<(b<c)"},
		{"(a < b) == c", "(a<b)==c"},
		{"(a, b)", "a,b"},
		{"print((a, b))", "print((a,b))"},
		{"(a if b else c) if d else e", "(a if b else c)if d else e"},
		{"a if b else (c if d else e)", "a if b else c if d else e"},
		{"(x := 1)", "(x:=1)"},
		{"f(x := 1)", "f(x:=1)"},
		{"a = b = 1, 2", "a=b=1,2"},
		{"(a | b) & c", "(a|b)&c"},
		{"a << (b + c)", "a<<b+c"},
		{"(await x) ** 2", "await x**2"},
		{"await (x ** 2)", "await(x**2)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, golf(t, tt.src))
		})
	}
}

func TestPrintStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"simple statements joined", "x = 1\ny = 2\n", "x=1;y=2"},
		{"inline body", "if x:\n    a\n    b\nelse:\n    c\n", "if x:a;b\nelse:c"},
		{"nested blocks", "def f(x):\n    if x:\n        return 1\n    return 2\n", "def f(x):\n if x:return 1\n return 2"},
		{"return list", "def f():\n    return []\n", "def f():return[]"},
		{"raise from", "raise Exception('So bad') from x", "raise Exception('So bad')from x"},
		{"class", "class A(B, metaclass=M):\n    pass\n", "class A(B,metaclass=M):pass"},
		{"class without bases", "class A():\n pass\n", "class A:pass"},
		{"elif chain", "if a:\n  pass\nelif b:\n  pass\nelse:\n  pass\n", "if a:pass\nelif b:pass\nelse:pass"},
		{"try", "try:\n a\nexcept E as e:\n b\nexcept:\n c\nelse:\n d\nfinally:\n e\n", "try:a\nexcept E as e:b\nexcept:c\nelse:d\nfinally:e"},
		{"decorator", "@dec\ndef f(): pass\n", "@dec\ndef f():pass"},
		{"imports", "import a.b as c, d\nfrom .m import (x as y, z)\nfrom . import *\n", "import a.b as c,d;from.m import x as y,z;from.import*"},
		{"with", "with open(f) as g, h:\n pass\n", "with open(f)as g,h:pass"},
		{"async", "async def f():\n await x\n async for a in b: pass\n async with c: pass\n", "async def f():\n await x\n async for a in b:pass\n async with c:pass"},
		{"parameters", "def f(a, b=1, /, c=2, *d, e, f=3, **g) -> int: pass", "def f(a,b=1,/,c=2,*d,e,f=3,**g)->int:pass"},
		{"keyword only", "def f(*, a: int = 1): pass", "def f(*,a:int=1):pass"},
		{"annotated", "x: int = 5\ny: int\n", "x:int=5;y:int"},
		{"augmented", "x += 1", "x+=1"},
		{"starred target", "a, *b = c", "a,*b=c"},
		{"for", "for x, y in z: pass", "for x,y in z:pass"},
		{"while else", "while 1:\n  break\nelse:\n  pass\n", "while 1:break\nelse:pass"},
		{"assert", "assert x, 'm'", "assert x,'m'"},
		{"walrus condition", "if (x := f()):\n pass\n", "if x:=f():pass"},
		{"yield", "def g():\n x = yield a, b\n", "def g():x=yield a,b"},
		{"yield value", "def g():\n x = (yield)\n", "def g():x=yield"},
		{"global", "def f():\n global a, b\n a = 1\n", "def f():global a,b;a=1"},
		{"delete", "del a, b[0]", "del a,b[0]"},
		{"empty module", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, golf(t, tt.src))
		})
	}
}

func TestPrintStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"plain", "'a'", "'a'"},
		{"double quotes win", `'it\'s'`, `"it's"`},
		{"escaped newline", `x = 'a\nb'`, `x='a\nb'`},
		{"raw", `x = 'a\\b\\c'`, `x=r'a\b\c'`},
		{"triple", `x = '\n\n\n\n\n\n\n'`, "x='''\n\n\n\n\n\n\n'''"},
		{"bytes", `b"\xff"`, `b'\xff'`},
		{"nul", `'\0'`, `'\0'`},
		{"nul before digit", `'\x001'`, `'\x001'`},
		{"printable unicode", `'\u00e9'`, "'é'"},
		{"invisible unicode", `'\u200b'`, `'\u200b'`},
		{"implicit concatenation", `'a' "b"`, `'ab'`},
		{"string after string", `x = ['a','b']`, `x=['a','b']`},
		{"prefix after keyword", `x = 1 if b'' else 2`, `x=1if b''else 2`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, golf(t, tt.src))
		})
	}
}

func TestPrintFormattedStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"field", `f'{x}'`, `f'{x}'`},
		{"conversion and spec", `f"{x!r:>10}"`, `f'{x!r:>10}'`},
		{"nested quotes", `f"{a['k']}"`, `f'{a["k"]}'`},
		{"set needs space", `f'{ {1} }'`, `f'{ {1}}'`},
		{"lambda in call", `f'{(lambda: 1)()}'`, `f'{(lambda:1)()}'`},
		{"walrus", `f'{(x := 1)}'`, `f'{(x:=1)}'`},
		{"no fields", `f'{{}}'`, `'{}'`},
		{"literal braces", `f'{{{x}}}'`, `f'{{{x}}}'`},
		{"nested spec", `f'{x:{w}}'`, `f'{x:{w}}'`},
		{"self documenting", `f'{x=}'`, `f'x={x!r}'`},
		{"conditional", `f'{"a" if x else "b"}'`, `f'{"a"if x else"b"}'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, golf(t, tt.src))
		})
	}
}

func TestPrintUnrepresentable(t *testing.T) {
	t.Parallel()

	_, err := Print(mustParse(t, "f'{\"\\n\"}'"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrepresentable))
}

func TestPrintLegacy(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"print 'x'", "exec code", "x = `1`"} {
		_, err := Print(mustParse(t, src))
		var unsupported *UnsupportedNodeError
		require.True(t, errors.As(err, &unsupported), src)
		assert.True(t, unsupported.Kind.IsLegacy())
		assert.Contains(t, err.Error(), "python 2")
	}
}

func TestPrintEmptySet(t *testing.T) {
	t.Parallel()

	out, err := Print(&ast.Set{})
	require.NoError(t, err)
	assert.Equal(t, "{*()}", out)
}

func TestPrintTarget(t *testing.T) {
	t.Parallel()

	m := mustParse(t, "x = 1 if y else 3 or 0 or 2")
	out, err := Config{Target: semver.MustParse("3.12")}.Print(m)
	require.NoError(t, err)
	assert.Equal(t, "x=1 if y else 3 or 0 or 2", out)

	out, err = Print(m)
	require.NoError(t, err)
	assert.Equal(t, "x=1if y else 3or 0 or 2", out)
}

func TestReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want string
	}{
		{"a+b*c", "a + b * c"},
		{"x=1", "x = 1"},
		{"f(a,b=1)", "f(a, b=1)"},
		{"{a:1}", "{a: 1}"},
		{"if x:\n a\n b\n", "if x:\n    a\n    b"},
		{"n-(m)", "n - m"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			out, err := Reference(mustParse(t, tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestFormatNumbers(t *testing.T) {
	t.Parallel()

	ints := map[string]string{
		"1000":          "1000",
		"0xff":          "255",
		"0o17":          "15",
		"0b101":         "5",
		"00":            "0",
		"4294967295":    "4294967295",
		"1000000000000": "0xe8d4a51000",
	}
	for src, want := range ints {
		assert.Equal(t, want, FormatInt(src), src)
	}

	floats := map[string]string{
		"1.0":           "1.0",
		"100.0":         "1e2",
		"0.5":           ".5",
		"0.0":           ".0",
		"0.001":         ".001",
		"3.14":          "3.14",
		"15000000000.0": "15e9",
		"1.5e-10":       "15e-11",
		"1e999":         "1e999",
	}
	for src, want := range floats {
		assert.Equal(t, want, FormatFloat(src), src)
	}

	imags := map[string]string{
		"2j":     "2j",
		"0j":     "0j",
		"1.5j":   "1.5j",
		"1e999j": "1e999j",
		"100.0j": "100j",
	}
	for src, want := range imags {
		assert.Equal(t, want, FormatImag(src), src)
	}
}

// Printing the output of the printer again must give the same text, and
// both trees must be structurally equal.
func TestPrintIdempotent(t *testing.T) {
	t.Parallel()

	programs := []string{
		"import sys\nfor line in sys.stdin:\n    print(line.strip()[::-1])\n",
		"def fib(n):\n    a, b = 0, 1\n    while n:\n        a, b = b, a + b\n        n -= 1\n    return a\nprint(fib(30))\n",
		"class P:\n    def __init__(self, x):\n        self.x = x\n    def __repr__(self):\n        return f'P({self.x!r})'\n",
		"x = {'a': [1, 2.5, 3j], 'b': (None, True, ...)}\ny = x['a'][1:]\n",
		"try:\n    import foo\nexcept (ImportError, KeyError) as e:\n    foo = None\nfinally:\n    pass\n",
		"s = 'it\\'s' + \"\\\"q\\\"\" + '\\t\\\\'\nb = b'\\x00\\x01ab'\n",
		"def g(*a, k=1, **kw):\n    yield from a\n    x = lambda y=2: y ** -1\n    return [i async for i in kw] if k else {*a}\n",
		"with a as (b, c), d:\n    assert not b or c, 'msg'\n",
		"if (n := len(a)) > 10:\n    print(f'{n:>{w}} {a[0]!s}')\nelif n:\n    pass\nelse:\n    del a\n",
	}
	for _, src := range programs {
		first := golf(t, src)
		second := golf(t, first)
		assert.Equal(t, first, second, src)

		want, err := Reference(mustParse(t, src))
		require.NoError(t, err)
		got, err := Reference(mustParse(t, first))
		require.NoError(t, err)
		assert.Equal(t, want, got, src)
	}
}
