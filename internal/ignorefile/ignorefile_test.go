package ignorefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileNeverMatches(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.False(t, m.Matches("anything.go"))
	assert.False(t, (*Matcher)(nil).Matches("anything.go"))
}

func TestLoadCompilesPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("vendor/\n*.log\n"), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.True(t, m.Matches("vendor/"))
	assert.True(t, m.Matches("build.log"))
	assert.False(t, m.Matches("main.go"))
}
