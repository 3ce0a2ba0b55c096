package cobol

import (
	"path"
	"sort"
	"strings"
)

// File is one copybook source file made available to the preprocessor.
type File struct {
	Path   string
	Source []byte
}

// Repository is the run-scoped, deduplicated copybook lookup table built
// once from the filtered copybook file list (spec.md §4.5). Keys are
// normalized tokens: lowercase, quotes and trailing punctuation stripped,
// backslashes folded to forward slashes, last path segment only, kept both
// with and without extension.
type Repository struct {
	byKey    map[string]File
	Warnings []string
}

// NewRepository builds a Repository from files, deterministically resolving
// duplicate keys to the entry with the shortest path, then the
// lexicographically smallest path.
func NewRepository(files []File) *Repository {
	sorted := make([]File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i].Path) != len(sorted[j].Path) {
			return len(sorted[i].Path) < len(sorted[j].Path)
		}
		return sorted[i].Path < sorted[j].Path
	})

	r := &Repository{byKey: map[string]File{}}
	for _, f := range sorted {
		for _, key := range normalizedKeys(f.Path) {
			if existing, ok := r.byKey[key]; ok {
				if existing.Path != f.Path {
					r.Warnings = append(r.Warnings, "duplicate copybook key "+key+": keeping "+existing.Path+", ignoring "+f.Path)
				}
				continue
			}
			r.byKey[key] = f
		}
	}
	return r
}

// Lookup resolves a COPY directive's book name (possibly quoted, possibly
// with an extension) against the repository.
func (r *Repository) Lookup(name string) (File, bool) {
	if r == nil {
		return File{}, false
	}
	for _, key := range normalizedKeys(name) {
		if f, ok := r.byKey[key]; ok {
			return f, true
		}
	}
	return File{}, false
}

func normalizedKeys(p string) []string {
	base := path.Base(strings.ReplaceAll(p, `\`, "/"))
	base = strings.ToLower(strings.Trim(base, `"'. `))
	ext := path.Ext(base)
	if ext == "" {
		return []string{base}
	}
	return []string{base, strings.TrimSuffix(base, ext)}
}
