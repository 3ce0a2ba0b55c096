// Package ignorefile wraps a gitignore-compatible matcher over the
// working-directory .ignore file, the way morfx's scanner loads .gitignore.
package ignorefile

import (
	"os"

	ignore "github.com/sabhiram/go-gitignore"
)

// FileName is the ignore file codeframe looks for unless overridden by
// --ignore-file.
const FileName = ".ignore"

// Matcher answers whether a relative path should be skipped. A nil Matcher
// (constructed when no ignore file exists) never matches.
type Matcher struct {
	gi *ignore.GitIgnore
}

// Load compiles path into a Matcher. A missing file yields an empty,
// always-false Matcher rather than an error, since absence means "no
// filtering" per spec.md §6.
func Load(path string) (*Matcher, error) {
	if _, err := os.Stat(path); err != nil {
		return &Matcher{}, nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, err
	}
	return &Matcher{gi: gi}, nil
}

// Matches reports whether relPath (slash-separated, relative to the scan
// root) is ignored.
func (m *Matcher) Matches(relPath string) bool {
	if m == nil || m.gi == nil {
		return false
	}
	return m.gi.MatchesPath(relPath)
}
