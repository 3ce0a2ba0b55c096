package cobol

import (
	"regexp"
	"strings"
)

// copyRe matches a COPY directive: COPY bookname [REPLACING ...] . Library
// qualifiers ("OF"/"IN") are tolerated but ignored — resolution is purely
// by book name against the Repository.
var copyRe = regexp.MustCompile(`(?is)\bCOPY\s+("[^"]+"|'[^']+'|[A-Za-z0-9_-]+)(?:\s+(?:OF|IN)\s+[A-Za-z0-9_-]+)?\s*(?:REPLACING\s+(.*?))?\s*\.`)

// CopyExpansion records one encountered COPY directive, resolved or not.
type CopyExpansion struct {
	CopybookName string
	ReplacedBy   string
	Resolved     bool
}

// Expand performs left-to-right COPY/REPLACE expansion against repo,
// returning the expanded source and every COPY directive encountered. An
// unresolved COPY is left in place as a comment so the rest of the file can
// still be parsed best-effort, per spec.md §7.
func Expand(source string, repo *Repository) (string, []CopyExpansion) {
	var copies []CopyExpansion
	for depth := 0; depth < 25; depth++ {
		loc := copyRe.FindStringSubmatchIndex(source)
		if loc == nil {
			break
		}
		name := trimCopyName(source[loc[2]:loc[3]])
		replacing := ""
		if loc[4] >= 0 {
			replacing = strings.TrimSpace(source[loc[4]:loc[5]])
		}
		file, ok := repo.Lookup(name)
		copies = append(copies, CopyExpansion{CopybookName: name, ReplacedBy: replacing, Resolved: ok})
		if !ok {
			source = source[:loc[0]] + "*> UNRESOLVED COPY " + name + "\n" + source[loc[1]:]
			continue
		}
		body := string(file.Source)
		if replacing != "" {
			body = applyReplacing(body, replacing)
		}
		source = source[:loc[0]] + "\n" + body + "\n" + source[loc[1]:]
	}
	return source, copies
}

func trimCopyName(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}

type replacingPair struct{ from, to string }

var pseudoTextRe = regexp.MustCompile(`(?is)==(.*?)==\s+BY\s+==(.*?)==`)
var plainReplaceRe = regexp.MustCompile(`(?is)([A-Za-z0-9_-]+)\s+BY\s+([A-Za-z0-9_-]+)`)

// applyReplacing performs simple pseudo-text / identifier substitution
// inside a copybook body for a "REPLACING ... BY ..." clause.
func applyReplacing(body, clause string) string {
	pairs := splitReplacingPairs(clause)
	for _, p := range pairs {
		body = strings.ReplaceAll(body, p.from, p.to)
	}
	return body
}

func splitReplacingPairs(clause string) []replacingPair {
	var pairs []replacingPair
	for _, m := range pseudoTextRe.FindAllStringSubmatch(clause, -1) {
		pairs = append(pairs, replacingPair{from: strings.TrimSpace(m[1]), to: strings.TrimSpace(m[2])})
	}
	if len(pairs) > 0 {
		return pairs
	}
	for _, m := range plainReplaceRe.FindAllStringSubmatch(clause, -1) {
		pairs = append(pairs, replacingPair{from: m[1], to: m[2]})
	}
	return pairs
}
