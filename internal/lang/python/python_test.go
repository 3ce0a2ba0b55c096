package python

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/model"
)

func TestAnalyzeClassWithMethodAndCall(t *testing.T) {
	source := `
import os

class Greeter:
    def greet(self, name):
        print(name)
`
	result, err := Analyze("greeter.py", []byte(source))
	require.NoError(t, err)
	fa, ok := result.(*model.FileAnalysis)
	require.True(t, ok)

	require.Len(t, fa.Imports, 1)
	assert.Contains(t, fa.Imports[0], "os")
	require.Len(t, fa.Types, 1)
	assert.Equal(t, "Greeter", fa.Types[0].Name)
	require.Len(t, fa.Types[0].Methods, 1)
	m := fa.Types[0].Methods[0]
	assert.Equal(t, "greet", m.Name)
	require.Len(t, m.MethodCalls, 1)
	assert.Equal(t, "print", m.MethodCalls[0].MethodName)
}
