package ruby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/model"
)

func TestAnalyzeClassWithMethod(t *testing.T) {
	source := `
require "logger"

class Greeter
  def greet(name)
    puts name
  end
end
`
	result, err := Analyze("greeter.rb", []byte(source))
	require.NoError(t, err)
	fa, ok := result.(*model.FileAnalysis)
	require.True(t, ok)

	require.Len(t, fa.Imports, 1)
	assert.Contains(t, fa.Imports[0], "logger")
	require.Len(t, fa.Types, 1)
	assert.Equal(t, "Greeter", fa.Types[0].Name)
	require.Len(t, fa.Types[0].Methods, 1)
	assert.Equal(t, "greet", fa.Types[0].Methods[0].Name)
}
