// Package langdetect maps a file path to a supported Language by extension.
package langdetect

import (
	"path/filepath"
	"strings"

	"github.com/oxhq/codeframe/internal/model"
)

// extensions is the single, closed table of recognized suffixes. No other
// place in this codebase may list an extension.
var extensions = map[string]model.Language{
	".java":   model.LangJava,
	".js":     model.LangJavaScript,
	".jsx":    model.LangJavaScript,
	".ts":     model.LangTypeScript,
	".tsx":    model.LangTypeScript,
	".py":     model.LangPython,
	".cs":     model.LangCSharp,
	".php":    model.LangPHP,
	".rb":     model.LangRuby,
	".sql":    model.LangSQL,
	".cbl":    model.LangCOBOL,
	".cob":    model.LangCOBOL,
	".cpy":    model.LangCOBOL,
	".rs":     model.LangRust,
	".md":     model.LangMarkdown,
}

// Detect returns the language for path and true, or "" and false when the
// extension is not in the recognized set. Matching is case-insensitive.
func Detect(path string) (model.Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extensions[ext]
	return lang, ok
}

// IsCopybook reports whether path is a COBOL copybook (.cpy) rather than a
// main COBOL program (.cbl/.cob). Both detect as LangCOBOL; the distinction
// only matters to the copybook repository builder.
func IsCopybook(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".cpy"
}
