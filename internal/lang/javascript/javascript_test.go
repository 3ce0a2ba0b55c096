package javascript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/model"
)

func TestAnalyzeClassWithMethodAndCall(t *testing.T) {
	source := `
import { readFile } from "fs";

class Greeter {
  greet(name) {
    console.log(name);
  }
}
`
	result, err := Analyze("greeter.js", []byte(source))
	require.NoError(t, err)
	fa, ok := result.(*model.FileAnalysis)
	require.True(t, ok)

	require.Len(t, fa.Imports, 1)
	assert.Contains(t, fa.Imports[0], "fs")
	require.Len(t, fa.Types, 1)
	assert.Equal(t, "Greeter", fa.Types[0].Name)
	assert.Equal(t, model.KindClass, fa.Types[0].Kind)
	require.Len(t, fa.Types[0].Methods, 1)
	assert.Equal(t, "greet", fa.Types[0].Methods[0].Name)
	require.Len(t, fa.Types[0].Methods[0].MethodCalls, 1)
	assert.Equal(t, "log", fa.Types[0].Methods[0].MethodCalls[0].MethodName)
	assert.Equal(t, "console", fa.Types[0].Methods[0].MethodCalls[0].ObjectName)
}
