package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/ignorefile"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestWalkRecursesAndFiltersIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"))
	writeFile(t, filepath.Join(dir, "vendor", "b.go"))
	writeFile(t, filepath.Join(dir, "nested", "c.go"))

	ignorePath := filepath.Join(dir, ".ignore")
	require.NoError(t, os.WriteFile(ignorePath, []byte("vendor/\n"), 0o644))
	ignore, err := ignorefile.Load(ignorePath)
	require.NoError(t, err)

	files, err := Walk(dir, Options{Ignore: ignore})
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		rels = append(rels, filepath.ToSlash(rel))
	}
	assert.Contains(t, rels, "a.go")
	assert.Contains(t, rels, "nested/c.go")
	assert.NotContains(t, rels, "vendor/b.go")
}

func TestWalkIncludeExcludeGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"))
	writeFile(t, filepath.Join(dir, "a_test.go"))
	writeFile(t, filepath.Join(dir, "b.sql"))

	ignore, err := ignorefile.Load(filepath.Join(dir, ".ignore"))
	require.NoError(t, err)

	files, err := Walk(dir, Options{
		Ignore:       ignore,
		IncludeGlobs: []string{"*.go"},
		ExcludeGlobs: []string{"*_test.go"},
	})
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		rels = append(rels, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{"a.go"}, rels)
}

func TestWalkSingleFileRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "only.go")
	writeFile(t, path)

	ignore, err := ignorefile.Load(filepath.Join(dir, ".ignore"))
	require.NoError(t, err)

	files, err := Walk(path, Options{Ignore: ignore})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, path, files[0])
}
