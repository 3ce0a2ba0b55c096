package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/model"
)

func TestAnalyzeHeadingsAndLinks(t *testing.T) {
	source := "# Title\n\nSee [docs](https://example.com/docs) for more.\n\n## Section\n"

	result, err := Analyze("readme.md", []byte(source))
	require.NoError(t, err)
	fa, ok := result.(*model.FileAnalysis)
	require.True(t, ok)

	require.Len(t, fa.Headings, 2)
	assert.Equal(t, 1, fa.Headings[0].Level)
	assert.Equal(t, "Title", fa.Headings[0].Text)
	assert.Equal(t, 1, fa.Headings[0].Line)
	assert.Equal(t, 2, fa.Headings[1].Level)
	assert.Equal(t, "Section", fa.Headings[1].Text)

	require.Len(t, fa.Links, 1)
	assert.Equal(t, "docs", fa.Links[0].Text)
	assert.Equal(t, "https://example.com/docs", fa.Links[0].URL)
	assert.Equal(t, 3, fa.Links[0].Line)
}
