package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.py":                    "x = 1",
		"a.py":                    "y = 2",
		"notes.txt":               "text",
		"pkg/mod.py":              "z = 3",
		"pkg/mod.golf.py":         "z=3",
		".venv/lib/site.py":       "import os",
		"__pycache__/cached.py":   "x",
		"pkg/__pycache__/more.py": "x",
	})

	files, err := New(root).Exclude(".golf.py").Scan()
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
		assert.Positive(t, f.Size)
	}
	assert.Equal(t, []string{
		filepath.Join(root, "a.py"),
		filepath.Join(root, "b.py"),
		filepath.Join(root, "pkg/mod.py"),
	}, paths)
}

func TestScanExtensions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py":  "x = 1",
		"b.pyw": "x = 1",
	})

	files, err := New(root, ".py", ".pyw").Scan()
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScanMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "missing")).Scan()
	assert.Error(t, err)
}
