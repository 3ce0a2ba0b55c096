package csharp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/model"
)

func TestAnalyzeClassWithMethod(t *testing.T) {
	source := `
using System;

namespace Demo {
    public class Greeter {
        public void Greet(string name) {
            Console.WriteLine(name);
        }
    }
}
`
	result, err := Analyze("Greeter.cs", []byte(source))
	require.NoError(t, err)
	fa, ok := result.(*model.FileAnalysis)
	require.True(t, ok)

	require.Len(t, fa.Imports, 1)
	assert.Contains(t, fa.Imports[0], "System")
	require.Len(t, fa.Types, 1)
	assert.Equal(t, "Greeter", fa.Types[0].Name)
	assert.Equal(t, model.KindClass, fa.Types[0].Kind)
	require.Len(t, fa.Types[0].Methods, 1)
	assert.Equal(t, "Greet", fa.Types[0].Methods[0].Name)
}
