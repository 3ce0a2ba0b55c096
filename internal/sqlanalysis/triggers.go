package sqlanalysis

import (
	"regexp"
	"strings"

	"github.com/oxhq/codeframe/internal/model"
)

var pgTriggerRe = regexp.MustCompile(`(?is)CREATE\s+(OR\s+REPLACE\s+)?TRIGGER\s+([A-Za-z0-9_."` + "`" + `]+)\s+` +
	`(BEFORE|AFTER|INSTEAD\s+OF)\s+((?:INSERT|UPDATE|DELETE)(?:\s+OR\s+(?:INSERT|UPDATE|DELETE))*)\s+` +
	`ON\s+([A-Za-z0-9_."` + "`" + `]+)\s+FOR\s+EACH\s+ROW\s+EXECUTE\s+(FUNCTION|PROCEDURE)\s+([A-Za-z0-9_."` + "`" + `]+)\s*\(`)

var eventSplitRe = regexp.MustCompile(`(?i)\s+OR\s+`)

// ExtractTriggers applies spec.md §4.6.6's two regex fallback patterns to
// raw (the general parser cannot parse CREATE TRIGGER). Applied in order,
// deduplicated by match start offset.
func ExtractTriggers(raw string) []model.CreateTriggerOperation {
	var triggers []model.CreateTriggerOperation
	seen := map[int]bool{}

	for _, loc := range pgTriggerRe.FindAllStringSubmatchIndex(raw, -1) {
		if seen[loc[0]] {
			continue
		}
		seen[loc[0]] = true
		schema, name := splitSchemaName(raw[loc[4]:loc[5]])
		var events []string
		for _, e := range eventSplitRe.Split(raw[loc[8]:loc[9]], -1) {
			events = append(events, strings.ToUpper(strings.TrimSpace(e)))
		}
		var calls model.CallSet
		callKind := strings.ToUpper(raw[loc[12]:loc[13]])
		callName := trimIdent(raw[loc[14]:loc[15]])
		if callKind == "PROCEDURE" {
			calls.AddProcedure(callName)
		} else {
			calls.AddFunction(callName)
		}
		tableName := trimIdent(raw[loc[10]:loc[11]])
		triggers = append(triggers, model.CreateTriggerOperation{
			OrReplace:   loc[2] >= 0,
			Schema:      schema,
			TriggerName: name,
			Timing:      normalizeTiming(raw[loc[6]:loc[7]]),
			Events:      events,
			TableName:   tableName,
			Calls:       calls,
		})
	}

	for _, t := range extractMySQLTriggers(raw) {
		if seen[t.offset] {
			continue
		}
		seen[t.offset] = true
		triggers = append(triggers, t.op)
	}
	return triggers
}

func normalizeTiming(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

type mysqlTrigger struct {
	offset int
	op     model.CreateTriggerOperation
}

var mysqlTriggerHeaderRe = regexp.MustCompile(`(?is)CREATE\s+TRIGGER\s+([A-Za-z0-9_."` + "`" + `]+)\s+` +
	`(BEFORE|AFTER)\s+(INSERT|UPDATE|DELETE)\s+ON\s+([A-Za-z0-9_."` + "`" + `]+)\s+FOR\s+EACH\s+ROW\s*`)
var mysqlBeginDollarBodyRe = regexp.MustCompile(`(?is)^BEGIN(.*?)END\s*\$\$`)
var mysqlBeginBodyRe = regexp.MustCompile(`(?is)^BEGIN(.*?)END\s*;`)
var mysqlSingleStmtBodyRe = regexp.MustCompile(`(?is)^(.*?);`)

// extractMySQLTriggers handles the MySQL form: single timing/event, body
// between BEGIN...END$$ (preferred), BEGIN...END;, or a single FOR EACH ROW
// statement.
func extractMySQLTriggers(raw string) []mysqlTrigger {
	var out []mysqlTrigger
	for _, loc := range mysqlTriggerHeaderRe.FindAllStringSubmatchIndex(raw, -1) {
		schema, name := splitSchemaName(raw[loc[2]:loc[3]])
		tableSchema, table := splitSchemaName(raw[loc[8]:loc[9]])
		tableName := table
		if tableSchema != "" {
			tableName = tableSchema + "." + table
		}
		rest := raw[loc[1]:]
		var body string
		if bm := mysqlBeginDollarBodyRe.FindStringSubmatch(rest); bm != nil {
			body = bm[1]
		} else if bm := mysqlBeginBodyRe.FindStringSubmatch(rest); bm != nil {
			body = bm[1]
		} else if sm := mysqlSingleStmtBodyRe.FindStringSubmatch(rest); sm != nil {
			body = sm[1]
		}
		var refs model.ReferenceSet
		var calls model.CallSet
		analyzeRoutineBody(body, DialectMySQL, &refs, &calls)
		out = append(out, mysqlTrigger{
			offset: loc[0],
			op: model.CreateTriggerOperation{
				Schema:      schema,
				TriggerName: name,
				Timing:      strings.ToUpper(raw[loc[4]:loc[5]]),
				Events:      []string{strings.ToUpper(raw[loc[6]:loc[7]])},
				TableName:   tableName,
				References:  refs,
				Calls:       calls,
			},
		})
	}
	return out
}
