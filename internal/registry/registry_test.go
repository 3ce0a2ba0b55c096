package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/analyzer"
	"github.com/oxhq/codeframe/internal/model"
)

// stubAnalyzer is a minimal analyzer.Analyzer for exercising Build/Lookup
// without depending on any real language package.
type stubAnalyzer struct{ tag string }

func (s stubAnalyzer) Analyze(path string, source []byte) (any, error) {
	return s.tag, nil
}

func TestBuildAndLookup(t *testing.T) {
	// registrations accumulates across the whole test binary via init(), so
	// this test only asserts on a freshly-registered language it controls.
	const lang = model.Language("test-lang")
	Register(lang, "testlang", func() analyzer.Analyzer { return stubAnalyzer{tag: "registered"} })

	r := Build(func(key string) bool { return true })
	an := r.Lookup(lang)
	require.NotNil(t, an)
	result, err := an.Analyze("x", nil)
	require.NoError(t, err)
	assert.Equal(t, "registered", result)
}

func TestBuildSkipsDisabledAnalyzer(t *testing.T) {
	const lang = model.Language("test-lang-disabled")
	Register(lang, "disabledkey", func() analyzer.Analyzer { return stubAnalyzer{tag: "should not build"} })

	r := Build(func(key string) bool { return key != "disabledkey" })
	assert.Nil(t, r.Lookup(lang))
}

func TestLookupUnknownLanguageIsNil(t *testing.T) {
	r := Build(func(string) bool { return true })
	assert.Nil(t, r.Lookup(model.Language("never-registered")))
}
