package langdetect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/codeframe/internal/model"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		path string
		want model.Language
		ok   bool
	}{
		{"main.go.java", model.LangJava, true},
		{"App.TSX", model.LangTypeScript, true},
		{"script.js", model.LangJavaScript, true},
		{"report.SQL", model.LangSQL, true},
		{"PROG.CBL", model.LangCOBOL, true},
		{"CUSTREC.cpy", model.LangCOBOL, true},
		{"README.md", model.LangMarkdown, true},
		{"Makefile", "", false},
		{"archive.tar.gz", "", false},
	}
	for _, c := range cases {
		got, ok := Detect(c.path)
		assert.Equalf(t, c.ok, ok, "path %q", c.path)
		assert.Equalf(t, c.want, got, "path %q", c.path)
	}
}

func TestIsCopybook(t *testing.T) {
	assert.True(t, IsCopybook("CUSTREC.cpy"))
	assert.True(t, IsCopybook("copy/CUSTREC.CPY"))
	assert.False(t, IsCopybook("prog.cbl"))
	assert.False(t, IsCopybook("prog.cob"))
}
