package golf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/pygolf/internal/rules"
	tt "github.com/gnolang/pygolf/internal/types"
)

type mockShortener struct {
	mock.Mock
}

func (m *mockShortener) Shorten(ctx context.Context, src string) (*tt.Result, error) {
	args := m.Called(ctx, src)
	res, _ := args.Get(0).(*tt.Result)
	return res, args.Error(1)
}

func (m *mockShortener) ShortenFile(ctx context.Context, filename string) (*tt.Result, error) {
	args := m.Called(ctx, filename)
	res, _ := args.Get(0).(*tt.Result)
	return res, args.Error(1)
}

func (m *mockShortener) IgnoreRule(rule string) {
	m.Called(rule)
}

func createTempFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	var paths []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func TestProcessSource(t *testing.T) {
	t.Parallel()

	expected := &tt.Result{Output: "x=1"}
	engine := new(mockShortener)
	engine.On("Shorten", mock.Anything, "x = 1").Return(expected, nil)

	res, err := ProcessSource(context.Background(), engine, "x = 1")
	require.NoError(t, err)
	assert.Equal(t, expected, res)
	engine.AssertExpectations(t)
}

func TestProcessFile(t *testing.T) {
	t.Parallel()

	expected := &tt.Result{Filename: "a.py", Output: "x=1"}
	engine := new(mockShortener)
	engine.On("ShortenFile", mock.Anything, "a.py").Return(expected, nil)

	res, err := ProcessFile(context.Background(), engine, "a.py")
	require.NoError(t, err)
	assert.Equal(t, expected, res)
	engine.AssertExpectations(t)
}

func TestProcessPath(t *testing.T) {
	t.Parallel()

	logger, _ := zap.NewDevelopment()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, "b.py", "a.py", "sub/c.py", "a.golf.py", "notes.txt")

	engine := new(mockShortener)
	for _, p := range paths[:3] {
		engine.On("ShortenFile", mock.Anything, p).Return(&tt.Result{Filename: p}, nil)
	}

	results, err := ProcessPath(context.Background(), logger, engine, dir, ".golf.py", ProcessFile)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, filepath.Join(dir, "a.py"), results[0].Filename)
	assert.Equal(t, filepath.Join(dir, "b.py"), results[1].Filename)
	assert.Equal(t, filepath.Join(dir, "sub/c.py"), results[2].Filename)
	engine.AssertExpectations(t)
	engine.AssertNotCalled(t, "ShortenFile", mock.Anything, paths[3])
}

func TestProcessPathSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := createTempFiles(t, dir, "prog.py")

	engine := new(mockShortener)
	engine.On("ShortenFile", mock.Anything, paths[0]).Return(&tt.Result{Filename: paths[0]}, nil)

	results, err := ProcessPath(context.Background(), nil, engine, paths[0], "", ProcessFile)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	_, err = ProcessPath(context.Background(), nil, engine, filepath.Join(dir, "missing.py"), "", ProcessFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessPathPartialFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := createTempFiles(t, dir, "bad.py", "good1.py", "good2.py")
	badErr := fmt.Errorf("%s: %w", paths[0], ErrInvalidInput)

	engine := new(mockShortener)
	engine.On("ShortenFile", mock.Anything, paths[0]).Return(nil, badErr)
	engine.On("ShortenFile", mock.Anything, paths[1]).Return(&tt.Result{Filename: paths[1]}, nil)
	engine.On("ShortenFile", mock.Anything, paths[2]).Return(&tt.Result{Filename: paths[2]}, nil)

	results, err := ProcessPath(context.Background(), nil, engine, dir, "", ProcessFile)
	assert.Len(t, results, 2)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []error{badErr}, Errors(err))
}

func TestProcessFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := createTempFiles(t, dir, "one.py", "two.py", "three.py")

	engine := new(mockShortener)
	engine.On("ShortenFile", mock.Anything, paths[0]).Return(&tt.Result{Filename: paths[0]}, nil)
	engine.On("ShortenFile", mock.Anything, paths[1]).Return(nil, errors.New("first"))
	engine.On("ShortenFile", mock.Anything, paths[2]).Return(nil, errors.New("second"))

	results, err := ProcessFiles(context.Background(), nil, engine, paths, "", ProcessFile)
	assert.Len(t, results, 1)
	assert.Len(t, Errors(err), 2)
	engine.AssertExpectations(t)
}

func TestProcessPathCanceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	createTempFiles(t, dir, "a.py", "b.py")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := new(mockShortener)
	engine.On("ShortenFile", mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()

	_, err := ProcessPath(ctx, nil, engine, dir, "", ProcessFile)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.CacheDir = t.TempDir()
	cfg.Rules[rules.RenameAssignedName] = tt.ConfigRule{Enabled: false}

	engine, err := New(nil, cfg)
	require.NoError(t, err)

	res, err := engine.Shorten(context.Background(), "value = '{}'.format(1)\n")
	require.NoError(t, err)
	assert.Equal(t, "value=f'{1}'", res.Output)

	res, err = engine.Shorten(context.Background(), "value = '{}'.format(1)\n")
	require.NoError(t, err)
	assert.True(t, res.Cached)

	cfg.TargetVersion = "three"
	_, err = New(nil, cfg)
	assert.Error(t, err)
}

func TestShortenEndToEnd(t *testing.T) {
	t.Parallel()

	engine, err := New(nil, DefaultConfig())
	require.NoError(t, err)

	_, err = ProcessSource(context.Background(), engine, "if x\n")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
