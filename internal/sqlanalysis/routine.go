package sqlanalysis

import (
	"regexp"
	"strings"

	"github.com/oxhq/codeframe/internal/model"
)

var (
	funcHeaderRe = regexp.MustCompile(`(?is)CREATE\s+(OR\s+REPLACE\s+)?FUNCTION\s+([A-Za-z0-9_."` + "`" + `\[\]]+)\s*\(`)
	procHeaderRe = regexp.MustCompile(`(?is)CREATE\s+(OR\s+REPLACE\s+)?PROCEDURE\s+([A-Za-z0-9_."` + "`" + `\[\]]+)\s*\(`)
	returnsRe    = regexp.MustCompile(`(?is)\bRETURNS?\s+([A-Za-z0-9_]+(?:\s*\([^)]*\))?)`)

	paramDirRe = regexp.MustCompile(`(?is)^\s*(IN|OUT|INOUT)\s+`)
	paramNameRe = regexp.MustCompile(`(?is)^\s*([A-Za-z0-9_]+)\s+(.*)$`)
)

// parseRoutineSignature parses a preprocessed "CREATE [OR REPLACE]
// FUNCTION|PROCEDURE name(params) [RETURNS type]" declaration statement.
// stmt is only the declaration statement; the actual routine body is
// located separately, against the raw source, by locateRoutineBody.
func parseRoutineSignature(stmt string, isFunction bool) (schema, name string, orReplace bool, params []model.RoutineParameter, returnType string) {
	headerRe := procHeaderRe
	if isFunction {
		headerRe = funcHeaderRe
	}
	m := headerRe.FindStringSubmatchIndex(stmt)
	if m == nil {
		return
	}
	orReplace = m[2] >= 0
	qname := stmt[m[4]:m[5]]
	schema, name = splitSchemaName(qname)

	openParen := m[1] - 1
	closeParen := matchParen(stmt, openParen)
	if closeParen < 0 {
		return
	}
	paramBody := stmt[openParen+1 : closeParen]
	for _, p := range splitTopLevel(paramBody, ',') {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		params = append(params, parseRoutineParameter(p))
	}

	if isFunction {
		rest := stmt[closeParen+1:]
		if rm := returnsRe.FindStringSubmatch(rest); rm != nil {
			returnType = strings.TrimSpace(rm[1])
		}
	}
	return
}

func parseRoutineParameter(p string) model.RoutineParameter {
	direction := "IN"
	if dm := paramDirRe.FindStringSubmatch(p); dm != nil {
		direction = strings.ToUpper(dm[1])
		p = paramDirRe.ReplaceAllString(p, "")
	}
	nm := paramNameRe.FindStringSubmatch(p)
	if nm == nil {
		return model.RoutineParameter{Name: strings.TrimSpace(p), Direction: direction}
	}
	return model.RoutineParameter{Name: nm[1], Direction: direction, Type: strings.TrimSpace(nm[2])}
}

var routineBodyStopRe = regexp.MustCompile(`(?i)CREATE\s+(?:TABLE|VIEW|INDEX|FUNCTION|PROCEDURE)\b`)

// locateRoutineBody finds name's declaration in raw (the original,
// unpreprocessed source) and slices from just after its parameter list to
// the next "END $$"/"END$$" or the next CREATE TABLE|VIEW|INDEX|FUNCTION|
// PROCEDURE, whichever comes first, per spec.md §4.6.4 step 2.
func locateRoutineBody(raw, name string, isFunction bool) string {
	headerRe := procHeaderRe
	if isFunction {
		headerRe = funcHeaderRe
	}
	for _, m := range headerRe.FindAllStringSubmatchIndex(raw, -1) {
		qname := raw[m[4]:m[5]]
		_, short := splitSchemaName(qname)
		if !strings.EqualFold(short, name) && !strings.EqualFold(trimIdent(qname), name) {
			continue
		}
		openParen := m[1] - 1
		closeParen := matchParen(raw, openParen)
		if closeParen < 0 {
			continue
		}
		rest := raw[closeParen+1:]
		end := len(rest)
		if em := mysqlRoutineEndRe.FindStringIndex(rest); em != nil && em[1] < end {
			end = em[1]
		}
		if sm := routineBodyStopRe.FindStringIndex(rest); sm != nil && sm[0] < end {
			end = sm[0]
		}
		return rest[:end]
	}
	return ""
}

// analyzeRoutineBody classifies body's dialect hint and runs the matching
// simplifier + reference/call collectors, merging results into refs/calls.
func analyzeRoutineBody(body string, fileDialect Dialect, refs *model.ReferenceSet, calls *model.CallSet) {
	if strings.TrimSpace(body) == "" {
		return
	}
	switch classifyBodyDialect(body, fileDialect) {
	case DialectMySQL:
		body = simplifyMySQL(body)
	case DialectPLpgSQL:
		body = simplifyPLpgSQL(body)
	case DialectTSQL:
		// T-SQL routine bodies are scanned directly: EXEC/EXECUTE targets
		// and table_source_item-equivalent FROM/JOIN references need no
		// procedural-keyword stripping first.
	default:
		body = simplifyMySQL(body)
	}
	findTableReferences(body, refs)
	findFunctionCalls(body, calls)
	findProcedureCalls(body, calls)
}
