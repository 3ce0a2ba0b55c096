package java

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/model"
)

func TestAnalyzeClassWithMethod(t *testing.T) {
	source := `
import java.util.List;

public class Greeter {
    public void greet(String name) {
        System.out.println(name);
    }
}
`
	result, err := Analyze("Greeter.java", []byte(source))
	require.NoError(t, err)
	fa, ok := result.(*model.FileAnalysis)
	require.True(t, ok)

	require.Len(t, fa.Imports, 1)
	assert.Contains(t, fa.Imports[0], "java.util.List")
	require.Len(t, fa.Types, 1)
	assert.Equal(t, "Greeter", fa.Types[0].Name)
	assert.Equal(t, model.VisPublic, fa.Types[0].Visibility)
	require.Len(t, fa.Types[0].Methods, 1)
	assert.Equal(t, "greet", fa.Types[0].Methods[0].Name)
}
