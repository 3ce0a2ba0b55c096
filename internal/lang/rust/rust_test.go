package rust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/model"
)

func TestAnalyzeStructWithImplMethod(t *testing.T) {
	source := `
use std::fmt;

struct Greeter {
    name: String,
}

impl Greeter {
    fn greet(&self) {
        println!("{}", self.name);
    }
}
`
	result, err := Analyze("greeter.rs", []byte(source))
	require.NoError(t, err)
	fa, ok := result.(*model.FileAnalysis)
	require.True(t, ok)

	require.Len(t, fa.Imports, 1)
	assert.Contains(t, fa.Imports[0], "std::fmt")
	require.Len(t, fa.Types, 1)
	assert.Equal(t, "Greeter", fa.Types[0].Name)
	assert.Equal(t, model.KindStruct, fa.Types[0].Kind)
	require.Len(t, fa.Types[0].Methods, 1)
	assert.Equal(t, "greet", fa.Types[0].Methods[0].Name)
}
