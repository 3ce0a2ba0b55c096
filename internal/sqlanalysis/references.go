package sqlanalysis

import (
	"regexp"

	"github.com/oxhq/codeframe/internal/model"
)

var tableRefRe = regexp.MustCompile(`(?i)\b(?:FROM|JOIN|UPDATE|INSERT\s+INTO)\s+([A-Za-z_][A-Za-z0-9_."` + "`" + `\[\]]*)`)

// findTableReferences scans sql for relation names following FROM/JOIN/
// UPDATE/INSERT INTO, per spec.md §4.6.8's deduplicated reference
// collector.
func findTableReferences(sql string, into *model.ReferenceSet) {
	for _, m := range tableRefRe.FindAllStringSubmatch(sql, -1) {
		into.Add(trimIdent(m[1]))
	}
}

// qualifiedCallRe matches schema.name( invocations. Requiring the
// qualifying dot is what lets this regex pick out real function calls
// without also capturing bare SQL keywords like LEFT(...)/RIGHT(...),
// mirroring spec.md §4.6.4's "requiring a qualified name" rule for the
// T-SQL scalar-function visitor, applied here as the general heuristic.
var qualifiedCallRe = regexp.MustCompile(`(?i)\b([A-Za-z_][A-Za-z0-9_]*\.[A-Za-z_][A-Za-z0-9_]*)\s*\(`)

func findFunctionCalls(sql string, into *model.CallSet) {
	for _, m := range qualifiedCallRe.FindAllStringSubmatch(sql, -1) {
		into.AddFunction(m[1])
	}
}

var procedureCallRe = regexp.MustCompile(`(?i)\b(?:EXEC|EXECUTE|CALL)\s+([A-Za-z_][A-Za-z0-9_.]*)\s*\(?`)

func findProcedureCalls(sql string, into *model.CallSet) {
	for _, m := range procedureCallRe.FindAllStringSubmatch(sql, -1) {
		into.AddProcedure(trimIdent(m[1]))
	}
}
