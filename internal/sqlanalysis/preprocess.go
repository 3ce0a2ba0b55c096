package sqlanalysis

import (
	"regexp"
	"strings"
)

var delimiterLineRe = regexp.MustCompile(`(?i)^\s*DELIMITER\b`)

// Preprocess applies spec.md §4.6.2's line-oriented transform: GO/DELIMITER
// lines removed, MySQL routine bodies collapsed to a single "END;" stub so
// the statement splitter and DDL handlers only ever see a routine's
// signature. The original raw source (not this preprocessed copy) is what
// routine-body location re-scans for body content.
func Preprocess(source string) string {
	lines := strings.Split(source, "\n")
	kept := lines[:0:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.EqualFold(trimmed, "GO") {
			continue
		}
		if delimiterLineRe.MatchString(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	return collapseMySQLRoutineBodies(strings.Join(kept, "\n"))
}

var (
	mysqlRoutineHeaderRe = regexp.MustCompile(`(?is)CREATE\s+(?:OR\s+REPLACE\s+)?(?:FUNCTION|PROCEDURE)\b.*?\bBEGIN\b`)
	mysqlRoutineEndRe    = regexp.MustCompile(`(?i)END\s*\$\$|END\s*\$`)
	standaloneEndRe      = regexp.MustCompile(`(?i)\bEND\s*\$\$?`)
)

// collapseMySQLRoutineBodies finds each "CREATE FUNCTION|PROCEDURE ... BEGIN"
// header and replaces everything from BEGIN through the routine's
// terminating END$$/END$ with "END;", inserting a semicolon before
// BEGIN first if the header doesn't already end one.
func collapseMySQLRoutineBodies(source string) string {
	var out strings.Builder
	cursor := 0
	for {
		hm := mysqlRoutineHeaderRe.FindStringIndex(source[cursor:])
		if hm == nil {
			break
		}
		headerEnd := cursor + hm[1]
		beginIdx := headerEnd - len("BEGIN")
		em := mysqlRoutineEndRe.FindStringIndex(source[headerEnd:])
		if em == nil {
			break
		}
		endIdx := headerEnd + em[1]

		out.WriteString(ensureTrailingSemicolon(source[cursor:beginIdx]))
		out.WriteString("END;")
		cursor = endIdx
	}
	out.WriteString(source[cursor:])
	return standaloneEndRe.ReplaceAllString(out.String(), "END;")
}

func ensureTrailingSemicolon(s string) string {
	trimmed := strings.TrimRight(s, " \t\r\n")
	if trimmed == "" || strings.HasSuffix(trimmed, ";") {
		return s
	}
	return trimmed + ";\n"
}
