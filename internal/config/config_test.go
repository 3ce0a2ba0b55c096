package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("hideSqlTableColumns: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultMaxFileLines, cfg.MaxFileLines)
	assert.True(t, cfg.HideSQLTableColumns)
}

func TestLoadOverridesMaxFileLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("maxFileLines: 500\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.MaxFileLines)
}

func TestAnalyzerEnabled(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.AnalyzerEnabled("sql"), "no analyzers map: everything enabled")

	cfg.Analyzers = map[string]bool{"sql": false}
	assert.False(t, cfg.AnalyzerEnabled("sql"))
	assert.True(t, cfg.AnalyzerEnabled("cobol"), "absent key defaults to enabled")
}
