package sqlanalysis

import (
	"regexp"
	"strings"

	"github.com/oxhq/codeframe/internal/model"
)

var createViewRe = regexp.MustCompile(`(?is)^CREATE\s+(OR\s+REPLACE\s+)?VIEW\s+([A-Za-z0-9_."` + "`" + `\[\]]+)\s+AS\s+(.*)$`)

// parseCreateView returns either a CreateViewOperation or, when OR REPLACE
// is present, an AlterViewOperation (replace=true), per spec.md §4.6.3.
func parseCreateView(stmt string) (schema, name string, refs model.ReferenceSet, replace, ok bool) {
	m := createViewRe.FindStringSubmatch(stmt)
	if m == nil {
		return "", "", model.ReferenceSet{}, false, false
	}
	schema, name = splitSchemaName(m[2])
	findTableReferences(m[3], &refs)
	return schema, name, refs, m[1] != "", true
}

var alterViewRe = regexp.MustCompile(`(?is)^ALTER\s+VIEW\s+([A-Za-z0-9_."` + "`" + `\[\]]+)\s+AS\s+(.*)$`)

func parseAlterView(stmt string) (schema, name string, refs model.ReferenceSet, ok bool) {
	m := alterViewRe.FindStringSubmatch(stmt)
	if m == nil {
		return "", "", model.ReferenceSet{}, false
	}
	schema, name = splitSchemaName(m[1])
	findTableReferences(m[2], &refs)
	return schema, name, refs, true
}

var createIndexRe = regexp.MustCompile(`(?is)^CREATE\s+(UNIQUE\s+)?INDEX\s+([A-Za-z0-9_."` + "`" + `\[\]]+)\s+ON\s+([A-Za-z0-9_."` + "`" + `\[\]]+)\s*\(([^)]*)\)`)

func parseCreateIndex(stmt string) (model.CreateIndexOperation, bool) {
	m := createIndexRe.FindStringSubmatch(stmt)
	if m == nil {
		return model.CreateIndexOperation{}, false
	}
	schema, table := splitSchemaName(m[3])
	_, indexName := splitSchemaName(m[2])
	return model.CreateIndexOperation{
		IndexName: indexName,
		Schema:    schema,
		TableName: table,
		Columns:   splitIdentList(m[4]),
		Unique:    m[1] != "",
	}, true
}

var dropRe = regexp.MustCompile(`(?is)^DROP\s+(TABLE|VIEW|INDEX|FUNCTION|PROCEDURE|TRIGGER)\s+(IF\s+EXISTS\s+)?([A-Za-z0-9_."` + "`" + `\[\]]+)`)

func parseDrop(stmt string) (model.DropOperation, bool) {
	m := dropRe.FindStringSubmatch(stmt)
	if m == nil {
		return model.DropOperation{}, false
	}
	schema, name := splitSchemaName(m[3])
	return model.DropOperation{
		ObjectType: strings.ToUpper(m[1]),
		IfExists:   m[2] != "",
		Schema:     schema,
		ObjectName: name,
	}, true
}
