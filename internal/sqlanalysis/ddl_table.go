package sqlanalysis

import (
	"regexp"
	"strings"

	"github.com/oxhq/codeframe/internal/model"
)

var createTableRe = regexp.MustCompile(`(?is)^CREATE\s+TABLE\s+(IF\s+NOT\s+EXISTS\s+)?([A-Za-z0-9_."` + "`" + `\[\]]+)\s*\(`)

func parseCreateTable(stmt string) (model.CreateTableOperation, bool) {
	m := createTableRe.FindStringSubmatchIndex(stmt)
	if m == nil {
		return model.CreateTableOperation{}, false
	}
	openParen := m[1] - 1
	closeParen := matchParen(stmt, openParen)
	if closeParen < 0 {
		return model.CreateTableOperation{}, false
	}
	schema, table := splitSchemaName(stmt[m[4]:m[5]])
	op := model.CreateTableOperation{
		Schema:      schema,
		TableName:   table,
		IfNotExists: m[2] >= 0,
	}
	for _, seg := range splitTopLevel(stmt[openParen+1:closeParen], ',') {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		applyTableClause(seg, &op)
	}
	return op, true
}

var (
	constraintNamedRe = regexp.MustCompile(`(?is)^CONSTRAINT\s+[A-Za-z0-9_."` + "`" + `]+\s+(.*)$`)
	tablePKRe         = regexp.MustCompile(`(?is)^PRIMARY\s+KEY\s*\(([^)]*)\)`)
	tableFKRe         = regexp.MustCompile(`(?is)^FOREIGN\s+KEY\s*\(([^)]*)\)\s*REFERENCES\s+([A-Za-z0-9_."` + "`" + `]+)\s*\(([^)]*)\)\s*(.*)$`)
	onDeleteRe        = regexp.MustCompile(`(?i)ON\s+DELETE\s+(CASCADE|SET\s+NULL|SET\s+DEFAULT|RESTRICT|NO\s+ACTION)`)
	onUpdateRe        = regexp.MustCompile(`(?i)ON\s+UPDATE\s+(CASCADE|SET\s+NULL|SET\s+DEFAULT|RESTRICT|NO\s+ACTION)`)
)

func applyTableClause(seg string, op *model.CreateTableOperation) {
	if m := constraintNamedRe.FindStringSubmatch(seg); m != nil {
		seg = strings.TrimSpace(m[1])
	}
	if m := tablePKRe.FindStringSubmatch(seg); m != nil {
		op.PrimaryKeys = append(op.PrimaryKeys, splitIdentList(m[1])...)
		return
	}
	if fk, ok := parseForeignKeyClause(seg); ok {
		op.ForeignKeys = append(op.ForeignKeys, fk)
		return
	}
	if col, ok := parseColumnDef(seg); ok {
		op.Columns = append(op.Columns, col)
		if containsConstraint(col.Constraints, "PRIMARY KEY") {
			op.PrimaryKeys = append(op.PrimaryKeys, col.Name)
		}
	}
}

func parseForeignKeyClause(seg string) (model.ForeignKeyDefinition, bool) {
	m := tableFKRe.FindStringSubmatch(seg)
	if m == nil {
		return model.ForeignKeyDefinition{}, false
	}
	fk := model.ForeignKeyDefinition{
		Columns:           splitIdentList(m[1]),
		ReferencedTable:   trimIdent(m[2]),
		ReferencedColumns: splitIdentList(m[3]),
	}
	if dm := onDeleteRe.FindStringSubmatch(m[4]); dm != nil {
		fk.OnDelete = strings.ToUpper(strings.Join(strings.Fields(dm[1]), " "))
	}
	if um := onUpdateRe.FindStringSubmatch(m[4]); um != nil {
		fk.OnUpdate = strings.ToUpper(strings.Join(strings.Fields(um[1]), " "))
	}
	return fk, true
}

func splitIdentList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := trimIdent(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func containsConstraint(list []string, want string) bool {
	for _, c := range list {
		if c == want {
			return true
		}
	}
	return false
}

var (
	columnNameRe = regexp.MustCompile(`(?is)^([A-Za-z0-9_."` + "`" + `\[\]]+)\s+(.*)$`)
	columnTypeRe = regexp.MustCompile(`(?is)^([A-Za-z_][A-Za-z0-9_]*(?:\s*\([^)]*\))?(?:\s+(?:PRECISION|VARYING))?)\s*(.*)$`)
	notNullRe    = regexp.MustCompile(`(?i)\bNOT\s+NULL\b`)
	uniqueRe     = regexp.MustCompile(`(?i)\bUNIQUE\b`)
	primaryKeyRe = regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\b`)
)

// parseColumnDef parses one column definition out of a CREATE TABLE column
// list entry, per spec.md §4.6.3's {NOT NULL, UNIQUE, PRIMARY KEY} vocabulary.
func parseColumnDef(seg string) (model.ColumnDefinition, bool) {
	nm := columnNameRe.FindStringSubmatch(seg)
	if nm == nil {
		return model.ColumnDefinition{}, false
	}
	name := trimIdent(nm[1])
	rest := nm[2]
	tm := columnTypeRe.FindStringSubmatch(rest)
	if tm == nil {
		return model.ColumnDefinition{}, false
	}
	col := model.ColumnDefinition{
		Name:     name,
		Type:     strings.Join(strings.Fields(tm[1]), " "),
		Nullable: true,
	}
	tail := tm[2]
	if primaryKeyRe.MatchString(tail) {
		col.Constraints = append(col.Constraints, "PRIMARY KEY")
		col.Nullable = false
	}
	if notNullRe.MatchString(tail) {
		col.Constraints = append(col.Constraints, "NOT NULL")
		col.Nullable = false
	}
	if uniqueRe.MatchString(tail) {
		col.Constraints = append(col.Constraints, "UNIQUE")
	}
	return col, true
}
