package internal

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/pygolf/internal/rules"
	tt "github.com/gnolang/pygolf/internal/types"
)

const greet = `def greet(name):
    print('Hello {}!'.format(name))
for i in range(3):
    greet('x')
`

func TestShorten(t *testing.T) {
	t.Parallel()

	res, err := NewEngine().Shorten(context.Background(), greet)
	require.NoError(t, err)

	assert.Equal(t, "def greet(a):print(f'Hello {a}!')\nfor i in'|||':greet('x')", res.Output)
	assert.Equal(t, len([]rune(greet)), res.Stats.Original)
	assert.Equal(t, len([]rune(res.Output)), res.Stats.Shortened)
	assert.Equal(t, 1, res.Applied[rules.FormatToFString])
	assert.Equal(t, 1, res.Applied[rules.RangeForToRepeat])
	assert.False(t, res.Cached)
}

func TestShortenOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opts   []Option
		src    string
		expect string
	}{
		{
			name:   "old target keeps format",
			opts:   []Option{WithTarget(semver.MustParse("3.5"))},
			src:    "s = '{}'.format(x)\n",
			expect: "s='{}'.format(x)",
		},
		{
			name:   "ignored rename",
			opts:   []Option{WithRules(map[string]tt.ConfigRule{rules.RenameAssignedName: {Enabled: false}})},
			src:    "value = 1\nprint(value)\n",
			expect: "value=1;print(value)",
		},
		{
			name:   "enabled rule stays on",
			opts:   []Option{WithRules(map[string]tt.ConfigRule{rules.RenameAssignedName: {Enabled: true}})},
			src:    "value = 1\nprint(value)\n",
			expect: "a=1;print(a)",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, err := NewEngine(tc.opts...).Shorten(context.Background(), tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, res.Output)
		})
	}
}

func TestShortenNeverLonger(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"x=1", "", "a=b"} {
		res, err := NewEngine().Shorten(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, src, res.Output)
		assert.Zero(t, res.Stats.Saved())
		assert.Nil(t, res.Applied)
	}
}

func TestShortenInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := NewEngine().Shorten(context.Background(), "def f(:\n")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewEngine().Shorten(context.Background(), "print 'hi'\n")
	require.Error(t, err)
}

func TestShortenCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine().Shorten(ctx, greet)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShortenConcurrent(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	var wg sync.WaitGroup
	outputs := make([]string, 16)
	for i := range outputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.Shorten(context.Background(), greet)
			if assert.NoError(t, err) {
				outputs[i] = res.Output
			}
		}(i)
	}
	wg.Wait()
	for _, out := range outputs {
		assert.Equal(t, outputs[0], out)
	}
}

func TestShortenFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "greet.py")
	require.NoError(t, os.WriteFile(path, []byte(greet), 0o644))

	res, err := NewEngine().ShortenFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Filename)
	assert.Positive(t, res.Stats.Saved())

	_, err = NewEngine().ShortenFile(context.Background(), filepath.Join(dir, "missing.py"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestShortenCached(t *testing.T) {
	t.Parallel()

	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)

	e := NewEngine(WithCache(cache))
	first, err := e.Shorten(context.Background(), greet)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := e.Shorten(context.Background(), greet)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Output, second.Output)

	other := NewEngine(WithCache(cache), WithTarget(semver.MustParse("3.5")))
	third, err := other.Shorten(context.Background(), greet)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.NotEqual(t, first.Output, third.Output)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := NewEngine()
	a.IgnoreRule("b-rule")
	a.IgnoreRule("a-rule")
	b := NewEngine()
	b.IgnoreRule("a-rule")
	b.IgnoreRule("b-rule")
	assert.Equal(t, a.fingerprint(), b.fingerprint())
	assert.Equal(t, "3.8.0|a-rule,b-rule", a.fingerprint())
	assert.NotEqual(t, a.fingerprint(), NewEngine().fingerprint())
}

func TestWatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	e := NewEngine()

	type report struct {
		name string
		res  *tt.Result
		err  error
	}
	reports := make(chan report, 8)
	err := e.StartWatching(context.Background(), []string{dir}, func(name string, res *tt.Result, err error) {
		reports <- report{name, res, err}
	})
	require.NoError(t, err)
	assert.Error(t, e.StartWatching(context.Background(), []string{dir}, nil))

	path := filepath.Join(dir, "prog.py")
	require.NoError(t, os.WriteFile(path, []byte(greet), 0o644))

	select {
	case r := <-reports:
		require.NoError(t, r.err)
		assert.Equal(t, path, r.name)
		out, err := os.ReadFile(e.OutputPath(path))
		require.NoError(t, err)
		assert.Equal(t, r.res.Output, string(out))
	case <-time.After(5 * time.Second):
		t.Fatal("no report from watcher")
	}

	require.NoError(t, e.StopWatching())
	assert.Error(t, e.StopWatching())
}

func TestWatched(t *testing.T) {
	t.Parallel()

	e := NewEngine(WithOutputSuffix(".min.py"))
	assert.True(t, e.watched("a/prog.py"))
	assert.False(t, e.watched("a/prog.min.py"))
	assert.False(t, e.watched("a/notes.txt"))
	assert.Equal(t, "a/prog.min.py", e.OutputPath("a/prog.py"))
}
