// Package walker discovers candidate files under a root path, consulting an
// ignore-file matcher and optional include/exclude globs. It is the ambient
// "small layer" spec.md §1 calls out as an external collaborator to the
// extraction core; maxFileLines gating happens later, in the orchestrator,
// since that check needs the file already read into memory.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/codeframe/internal/ignorefile"
)

// Options configures a single Walk call.
type Options struct {
	Ignore         *ignorefile.Matcher
	IncludeGlobs   []string
	ExcludeGlobs   []string
}

// Walk returns every regular file under root that passes the ignore
// matcher and the include/exclude globs, in filesystem traversal order. A
// root that is itself a regular file is returned as a single-element slice.
func Walk(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err == nil && !info.IsDir() {
		if accept(root, root, opts) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil && opts.Ignore.Matches(filepath.ToSlash(rel)+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if accept(root, path, opts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: walk %s: %w", root, err)
	}
	return files, nil
}

func accept(root, path string, opts Options) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	if opts.Ignore.Matches(rel) {
		return false
	}
	if len(opts.IncludeGlobs) > 0 && !matchesAny(opts.IncludeGlobs, rel) {
		return false
	}
	if len(opts.ExcludeGlobs) > 0 && matchesAny(opts.ExcludeGlobs, rel) {
		return false
	}
	return true
}

func matchesAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}
