package typescript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/model"
)

func TestAnalyzeInterfaceAndClass(t *testing.T) {
	source := `
import { Logger } from "./logger";

interface Greetable {
  greet(name: string): void;
}

class Greeter implements Greetable {
  greet(name: string): void {
    console.log(name);
  }
}
`
	result, err := Analyze("greeter.ts", []byte(source))
	require.NoError(t, err)
	fa, ok := result.(*model.FileAnalysis)
	require.True(t, ok)

	require.Len(t, fa.Imports, 1)
	assert.Contains(t, fa.Imports[0], "./logger")

	var class, iface *model.TypeInfo
	for i := range fa.Types {
		switch fa.Types[i].Kind {
		case model.KindClass:
			class = &fa.Types[i]
		case model.KindInterface:
			iface = &fa.Types[i]
		}
	}
	require.NotNil(t, class)
	require.NotNil(t, iface)
	assert.Equal(t, "Greeter", class.Name)
	assert.Contains(t, class.Implements, "Greetable")
	assert.Equal(t, "Greetable", iface.Name)
	require.Len(t, class.Methods, 1)
	assert.Equal(t, "greet", class.Methods[0].Name)
}
