package sqlanalysis

import (
	"regexp"
	"strings"

	"github.com/oxhq/codeframe/internal/model"
)

var alterTableHeaderRe = regexp.MustCompile(`(?is)^ALTER\s+TABLE\s+([A-Za-z0-9_."` + "`" + `\[\]]+)\s+(.*)$`)

var (
	addConstraintRe = regexp.MustCompile(`(?is)^ADD\s+CONSTRAINT\s+[A-Za-z0-9_."` + "`" + `]+\s+(.*)$`)
	addPKRe         = regexp.MustCompile(`(?is)^ADD\s+(?:CONSTRAINT\s+[A-Za-z0-9_."` + "`" + `]+\s+)?PRIMARY\s+KEY\s*\(([^)]*)\)`)
	addColumnRe     = regexp.MustCompile(`(?is)^ADD\s+(?:COLUMN\s+)?(.*)$`)
	dropColumnRe    = regexp.MustCompile(`(?is)^DROP\s+(?:COLUMN\s+)?([A-Za-z0-9_."` + "`" + `\[\]]+)$`)
	dropConstraintRe = regexp.MustCompile(`(?is)^DROP\s+CONSTRAINT\s+([A-Za-z0-9_."` + "`" + `\[\]]+)$`)
)

// parseAlterTable discriminates ALTER TABLE from ALTER VIEW by the caller
// (see dispatch in sqlanalysis.go) and splits the clause list into one
// normalized action per entry, per spec.md §4.6.3.
func parseAlterTable(stmt string) (model.AlterTableOperation, bool) {
	m := alterTableHeaderRe.FindStringSubmatch(stmt)
	if m == nil {
		return model.AlterTableOperation{}, false
	}
	schema, table := splitSchemaName(m[1])
	op := model.AlterTableOperation{Schema: schema, TableName: table}
	for _, action := range splitTopLevel(m[2], ',') {
		action = strings.TrimSpace(action)
		if action == "" {
			continue
		}
		applyAlterAction(action, &op)
	}
	return op, true
}

// applyAlterAction classifies one ALTER TABLE clause. "ADD CONSTRAINT name
// ..." always yields a canonical string in AddedConstraints; a bare "ADD
// PRIMARY KEY(...)"/"ADD FOREIGN KEY(...) REFERENCES ..." attempts
// constraint interpretation first, falling back to a column definition on
// miss, per spec.md §4.6.3.
func applyAlterAction(action string, op *model.AlterTableOperation) {
	if m := addConstraintRe.FindStringSubmatch(action); m != nil {
		op.AddedConstraints = append(op.AddedConstraints, canonicalConstraint(m[1]))
		return
	}
	if m := dropConstraintRe.FindStringSubmatch(action); m != nil {
		op.DroppedConstraints = append(op.DroppedConstraints, trimIdent(m[1]))
		return
	}
	if m := dropColumnRe.FindStringSubmatch(action); m != nil {
		op.DroppedColumns = append(op.DroppedColumns, trimIdent(m[1]))
		return
	}
	if m := addPKRe.FindStringSubmatch(action); m != nil {
		op.AddedPrimaryKey = append(op.AddedPrimaryKey, splitIdentList(m[1])...)
		return
	}
	if m := addColumnRe.FindStringSubmatch(action); m != nil {
		rest := strings.TrimSpace(m[1])
		if fk, ok := parseForeignKeyClause(rest); ok {
			op.AddedForeignKeys = append(op.AddedForeignKeys, fk)
			return
		}
		if col, ok := parseColumnDef(rest); ok {
			op.AddedColumns = append(op.AddedColumns, col)
		}
		return
	}
}

// canonicalConstraint renders an ADD CONSTRAINT clause's body as the
// canonical string spec.md §4.6.3 specifies.
func canonicalConstraint(clause string) string {
	if fk, ok := parseForeignKeyClause(clause); ok {
		s := "FOREIGN KEY (" + strings.Join(fk.Columns, ", ") + ") REFERENCES " +
			fk.ReferencedTable + "(" + strings.Join(fk.ReferencedColumns, ", ") + ")"
		if fk.OnDelete != "" {
			s += " ON DELETE " + fk.OnDelete
		}
		if fk.OnUpdate != "" {
			s += " ON UPDATE " + fk.OnUpdate
		}
		return s
	}
	if m := tablePKRe.FindStringSubmatch(clause); m != nil {
		return "PRIMARY KEY (" + strings.Join(splitIdentList(m[1]), ", ") + ")"
	}
	return strings.TrimSpace(clause)
}
