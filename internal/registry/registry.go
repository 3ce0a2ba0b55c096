// Package registry builds the immutable Language -> Analyzer map a run
// dispatches against, from enable/disable configuration.
package registry

import (
	"github.com/oxhq/codeframe/internal/analyzer"
	"github.com/oxhq/codeframe/internal/model"
)

// Registry is a read-only Language -> Analyzer map, safe for concurrent
// lookups once Build returns.
type Registry struct {
	analyzers map[model.Language]analyzer.Analyzer
}

// entry binds a language to its analyzer and the config key used to
// enable/disable it.
type entry struct {
	lang         model.Language
	configKey    string
	makeAnalyzer func() analyzer.Analyzer
}

// enabledFunc reports whether languageName is enabled; satisfied by
// (*config.Config).AnalyzerEnabled without importing internal/config here.
type enabledFunc func(languageName string) bool

var registrations []entry

// Register adds a language/analyzer-constructor pair to the set Build draws
// from. Called once per language package's init, mirroring morfx's
// registry bookkeeping but trimmed to the closed language set spec.md §2
// names: no plugin loading, no aliasing, no dynamic extension tables.
func Register(lang model.Language, configKey string, makeAnalyzer func() analyzer.Analyzer) {
	registrations = append(registrations, entry{lang: lang, configKey: configKey, makeAnalyzer: makeAnalyzer})
}

// Build constructs the Registry for one run. Unknown keys in the enabled
// callback's backing config are simply never queried; missing entries
// default to enabled inside enabled itself.
func Build(enabled enabledFunc) *Registry {
	r := &Registry{analyzers: make(map[model.Language]analyzer.Analyzer, len(registrations))}
	for _, reg := range registrations {
		if !enabled(reg.configKey) {
			continue
		}
		r.analyzers[reg.lang] = reg.makeAnalyzer()
	}
	return r
}

// Lookup returns the Analyzer registered for lang, or nil if it is disabled
// or unregistered.
func (r *Registry) Lookup(lang model.Language) analyzer.Analyzer {
	return r.analyzers[lang]
}
