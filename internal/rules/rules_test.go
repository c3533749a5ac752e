package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/pygolf/internal/ast"
	"github.com/gnolang/pygolf/internal/parser"
	"github.com/gnolang/pygolf/internal/printer"
)

// rewrite parses src with the rules built for it and prints the result.
func rewrite(t *testing.T, src string, build func(m *ast.Module) []Rule) string {
	t.Helper()
	m, err := parser.Parse(src)
	require.NoError(t, err)
	rs := build(m)

	out, err := parser.Parse(src, parser.WithHook(func(n ast.Node) ast.Node {
		return Apply(rs, n)
	}))
	require.NoError(t, err)
	printed, err := printer.Print(out)
	require.NoError(t, err)
	return printed
}

func only(rs ...Rule) func(*ast.Module) []Rule {
	return func(*ast.Module) []Rule { return rs }
}

func withFacts(build func(f *Facts) Rule) func(*ast.Module) []Rule {
	return func(m *ast.Module) []Rule { return []Rule{build(Analyze(m))} }
}

func TestFormatCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want string
	}{
		{
			"s = 'The best {} version is {:.2f}'.format(language, version)",
			"s=f'The best {language} version is {version:.2f}'",
		},
		{"'{{}} {!r}'.format(x)", "f'{{}} {x!r}'"},
		{"'{}'.format(a + b)", "f'{a+b}'"},
		{"'{0}'.format(x)", "'{0}'.format(x)"},
		{"'{name}'.format(name=x)", "'{name}'.format(name=x)"},
		{"'{}{}'.format(x)", "'{}{}'.format(x)"},
		{"'{}'.format(*a)", "'{}'.format(*a)"},
		{"'{}'.format(\"a'b\")", "'{}'.format(\"a'b\")"},
		{"'{:>{w}}'.format(x)", "'{:>{w}}'.format(x)"},
		{"'{}'.format(x, y)", "'{}'.format(x,y)"},
		{"b'{}'.format(x)", "b'{}'.format(x)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, rewrite(t, tt.src, only(FormatCall{})))
		})
	}
	assert.Equal(t, "3.6.0", FormatCall{}.Since().String())
}

func TestRangeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"literal bounds", "for i in range(2,10,5): print('hello')", "for i in'||':print('hello')"},
		{"variable used", "for i in range(n): print(i)", "for i in range(n):print(i)"},
		{"long literal", "for i in range(10):\n pass\n", "for i in'|'*10:pass"},
		{"single variable", "for _ in range(n): pass", "for _ in'|'*n:pass"},
		{"two variables", "for _ in range(a, b): pass", "for _ in'|'*(b-a):pass"},
		{"call bound", "for _ in range(f(), b): pass", "for _ in range(f(),b):pass"},
		{"zero step", "for _ in range(0, 10, 0): pass", "for _ in range(0,10,0):pass"},
		{"empty", "for _ in range(5, 1): pass", "for _ in'':pass"},
		{"negative step", "for _ in range(10, 0, -3): pass", "for _ in'|'*4:pass"},
		{"three variables", "for _ in range(a, b, c): pass", "for _ in range(a,b,c):pass"},
		{"range rebound", "range = list\nfor _ in range(3): pass\n", "range=list\nfor _ in range(3):pass"},
		{"read after loop", "for i in range(3): pass\nprint(i)\n", "for i in range(3):pass\nprint(i)"},
		{"tuple target", "for a, b in range(3): pass", "for a,b in range(3):pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewrite(t, tt.src, withFacts(func(f *Facts) Rule { return NewRangeFor(f) }))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComprehensionMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want string
	}{
		{"a, b = [int(x) for x in input().split()]", "a,b=map(int,input().split())"},
		{"[a, b] = [m.f(x) for x in y]", "[a,b]=map(m.f,y)"},
		{"a = [int(x) for x in y]", "a=[int(x)for x in y]"},
		{"a, b = [int(x) for x in y if x]", "a,b=[int(x)for x in y if x]"},
		{"a, b = [x.f(x) for x in y]", "a,b=[x.f(x)for x in y]"},
		{"a, b = [int(x, 2) for x in y]", "a,b=[int(x,2)for x in y]"},
		{"map = 1\na, b = [int(x) for x in y]\n", "map=1;a,b=[int(x)for x in y]"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			got := rewrite(t, tt.src, withFacts(func(f *Facts) Rule { return NewComprehensionMap(f) }))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListAppend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"module level", "l = []\nl.append(1)\n", "l=[];l+=[1]"},
		{"global in function", "def f():\n l.append(1)\n", "def f():l.append(1)"},
		{"local in function", "def f():\n l = []\n l.append(1)\n", "def f():l=[];l+=[1]"},
		{"declared global", "def f():\n global l\n l.append(1)\n", "def f():global l;l+=[1]"},
		{"parameter", "def f(l):\n l.append(1)\n", "def f(l):l+=[1]"},
		{"comprehension variable", "def f():\n [l for l in x]\n l.append(1)\n", "def f():[l for l in x];l.append(1)"},
		{"attribute receiver", "a.b.append(1)", "a.b.append(1)"},
		{"value used", "x = l.append(1)", "x=l.append(1)"},
		{"starred", "l.append(*a)", "l.append(*a)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewrite(t, tt.src, func(m *ast.Module) []Rule { return []Rule{NewListAppend(m)} })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnnAssign(t *testing.T) {
	t.Parallel()

	got := rewrite(t, "x: int = 5\ny: int\nself.z: str = 'a'\n", only(AnnAssign{}))
	assert.Equal(t, "x=5;y:int;self.z='a'", got)
}

func TestRename(t *testing.T) {
	t.Parallel()

	src := "value = 1\nprint(value)\ndef f():\n global value\n value += 1\n"
	got := rewrite(t, src, only(Rename("value", "v")...))
	assert.Equal(t, "v=1\nprint(v)\ndef f():global v;v+=1", got)

	got = rewrite(t, "def g(count):\n nonlocal_ = count\n", only(Rename("count", "c")...))
	assert.Equal(t, "def g(c):nonlocal_=c", got)
}

func TestRenameCallAndAlias(t *testing.T) {
	t.Parallel()

	src := "\"\"\"doc\"\"\"\nfrom __future__ import annotations\nprint(1)\nprint(2)\nx = print\n"
	got := rewrite(t, src, only(RenameCall{Original: "print", Alias: "p"}, DefineAlias{Alias: "p", Original: "print"}))
	assert.Equal(t, "'doc';from __future__ import annotations;p=print;p(1);p(2);x=print", got)
}

func TestDefineAliasDedup(t *testing.T) {
	t.Parallel()

	def := DefineAlias{Alias: "p", Original: "print"}
	got := rewrite(t, "p(1)", only(def, def))
	assert.Equal(t, "p=print;p(1)", got)

	again := rewrite(t, got, only(def))
	assert.Equal(t, got, again)
}

func TestApplyChainsRules(t *testing.T) {
	t.Parallel()

	// each rule sees the output of the previous one
	rs := []Rule{
		RenameRead{Old: "a", New: "b"},
		RenameRead{Old: "b", New: "c"},
	}
	n := Apply(rs, &ast.Name{ID: "a"})
	assert.Equal(t, "c", n.(*ast.Name).ID)

	n = Apply(rs, &ast.AssignName{ID: "a"})
	assert.Equal(t, "a", n.(*ast.AssignName).ID)
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	src := "a = 1\nimport os.path\ndef f(b, *, c=2):\n    return b + a\nf(1, c=3)\nx.y = 2\nglobal g\n"
	m, err := parser.Parse(src)
	require.NoError(t, err)
	f := Analyze(m)

	assert.Equal(t, []string{"a", "b", "c"}, f.Assigned)
	assert.Equal(t, 1, f.Loads["a"])
	assert.Equal(t, 2, f.Loads["f"]+f.Loads["b"])
	assert.True(t, f.Defined["os"])
	assert.True(t, f.Defined["f"])
	assert.True(t, f.Keywords["c"])
	assert.True(t, f.Attrs["y"])
	assert.True(t, f.Declared["g"])
	for _, name := range []string{"a", "b", "c", "f", "g", "x"} {
		assert.True(t, f.Short[name], name)
	}

	assert.True(t, f.Rebound("os"))
	assert.False(t, f.Rebound("print"))
	assert.True(t, f.Renamable("a"))
	assert.False(t, f.Renamable("c"))
	assert.False(t, f.Renamable("f"))
	assert.False(t, f.Renamable("__x__"))
	assert.False(t, f.Renamable("len"))
}

func TestSplitTemplate(t *testing.T) {
	t.Parallel()

	lits, fields, ok := splitTemplate("a{}b{!s:>3}c{{")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c{"}, lits)
	assert.Equal(t, []field{{}, {conv: 's', spec: ">3"}}, fields)

	for _, bad := range []string{"{", "}", "{0}", "{!x}", "{:{}}", "{a}"} {
		_, _, ok := splitTemplate(bad)
		assert.False(t, ok, bad)
	}
}
