// Package config loads codeframe-config.yml, applying defaults for any
// option the file omits or that is itself absent.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

const (
	defaultMaxFileLines = 20000
	// FileName is the config file codeframe looks for in the working
	// directory unless overridden by --config.
	FileName = "codeframe-config.yml"
)

// Config is the resolved, defaults-applied run configuration.
type Config struct {
	MaxFileLines       int             `yaml:"maxFileLines"`
	HideSQLTableColumns bool           `yaml:"hideSqlTableColumns"`
	Analyzers          map[string]bool `yaml:"analyzers"`
}

// rawConfig mirrors Config but makes the scalar fields pointers (Analyzers
// stays a map, nil when absent) so Load can tell "absent from the file"
// apart from "explicitly zero".
type rawConfig struct {
	MaxFileLines       *int            `yaml:"maxFileLines"`
	HideSQLTableColumns *bool          `yaml:"hideSqlTableColumns"`
	Analyzers          map[string]bool `yaml:"analyzers"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		MaxFileLines:        defaultMaxFileLines,
		HideSQLTableColumns: false,
		Analyzers:           nil,
	}
}

// Load reads path, applying Default() for any field the file does not set.
// A missing file is not an error: it returns Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := Default()
	if raw.MaxFileLines != nil && *raw.MaxFileLines > 0 {
		cfg.MaxFileLines = *raw.MaxFileLines
	}
	if raw.HideSQLTableColumns != nil {
		cfg.HideSQLTableColumns = *raw.HideSQLTableColumns
	}
	if raw.Analyzers != nil {
		cfg.Analyzers = raw.Analyzers
	}
	return cfg, nil
}

// AnalyzerEnabled reports whether languageName is enabled. Unknown entries
// in the config map are ignored by construction (AnalyzerEnabled only ever reads
// a key the caller names); missing entries default to enabled.
func (c *Config) AnalyzerEnabled(languageName string) bool {
	if c.Analyzers == nil {
		return true
	}
	enabled, ok := c.Analyzers[languageName]
	if !ok {
		return true
	}
	return enabled
}
