package sqlanalysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/model"
)

func mustAnalyze(t *testing.T, source string) *model.SQLFileAnalysis {
	t.Helper()
	result, err := Analyze("test.sql", []byte(source))
	require.NoError(t, err)
	fa, ok := result.(*model.SQLFileAnalysis)
	require.True(t, ok)
	return fa
}

func TestCreateTable(t *testing.T) {
	fa := mustAnalyze(t, `CREATE TABLE s.t(id INT PRIMARY KEY, name VARCHAR(10) NOT NULL);`)
	require.Len(t, fa.CreateTables, 1)
	tbl := fa.CreateTables[0]
	assert.Equal(t, "s", tbl.Schema)
	assert.Equal(t, "t", tbl.TableName)
	assert.Equal(t, []string{"id"}, tbl.PrimaryKeys)
	require.Len(t, tbl.Columns, 2)
	assert.Equal(t, model.ColumnDefinition{Name: "id", Type: "INT", Nullable: false, Constraints: []string{"PRIMARY KEY"}}, tbl.Columns[0])
	assert.Equal(t, model.ColumnDefinition{Name: "name", Type: "VARCHAR(10)", Nullable: false, Constraints: []string{"NOT NULL"}}, tbl.Columns[1])
}

func TestPostgresTrigger(t *testing.T) {
	fa := mustAnalyze(t, `CREATE TRIGGER trg AFTER INSERT OR UPDATE ON s.t FOR EACH ROW EXECUTE FUNCTION s.fn();`)
	require.Len(t, fa.CreateTriggers, 1)
	trg := fa.CreateTriggers[0]
	assert.Equal(t, "trg", trg.TriggerName)
	assert.Equal(t, "AFTER", trg.Timing)
	assert.Equal(t, []string{"INSERT", "UPDATE"}, trg.Events)
	assert.Equal(t, "s.t", trg.TableName)
	assert.Equal(t, []string{"s.fn"}, trg.Calls.Functions)
}

func TestMySQLRoutineBodyNoIntoLeak(t *testing.T) {
	source := "DELIMITER $$\n" +
		"CREATE PROCEDURE count_orders(IN cust_id INT, OUT cnt INT)\n" +
		"BEGIN\n" +
		"    SELECT COUNT(*) INTO cnt FROM orders WHERE customer_id = cust_id;\n" +
		"END$$\n" +
		"DELIMITER ;\n"
	fa := mustAnalyze(t, source)
	require.Len(t, fa.CreateProcedures, 1)
	proc := fa.CreateProcedures[0]
	assert.Equal(t, "count_orders", proc.Name)
	require.Len(t, proc.Parameters, 2)
	assert.Equal(t, model.RoutineParameter{Name: "cust_id", Direction: "IN", Type: "INT"}, proc.Parameters[0])
	assert.Equal(t, model.RoutineParameter{Name: "cnt", Direction: "OUT", Type: "INT"}, proc.Parameters[1])
	assert.Contains(t, proc.References.Relations, "orders")
	for _, rel := range proc.References.Relations {
		assert.NotContains(t, rel, "cnt")
	}
}

func TestReferenceSetDedupAndNonEmpty(t *testing.T) {
	var refs model.ReferenceSet
	findTableReferences("SELECT * FROM orders JOIN orders ON 1=1 FROM ''", &refs)
	assert.Equal(t, []string{"orders"}, refs.Relations)
}

func TestDropTableIfExists(t *testing.T) {
	fa := mustAnalyze(t, `DROP TABLE IF EXISTS s.old_t;`)
	require.Len(t, fa.DropOperations, 1)
	op := fa.DropOperations[0]
	assert.Equal(t, "TABLE", op.ObjectType)
	assert.True(t, op.IfExists)
	assert.Equal(t, "s", op.Schema)
	assert.Equal(t, "old_t", op.ObjectName)
}

func TestAlterTableAddColumnAndDropConstraint(t *testing.T) {
	fa := mustAnalyze(t, `ALTER TABLE s.t ADD COLUMN active BOOLEAN NOT NULL, DROP CONSTRAINT old_fk;`)
	require.Len(t, fa.AlterTables, 1)
	alt := fa.AlterTables[0]
	require.Len(t, alt.AddedColumns, 1)
	assert.Equal(t, "active", alt.AddedColumns[0].Name)
	assert.Equal(t, []string{"old_fk"}, alt.DroppedConstraints)
}

func TestCreateOrReplaceFunctionYieldsAlterFunction(t *testing.T) {
	fa := mustAnalyze(t, `CREATE OR REPLACE FUNCTION s.calc(a IN INT) RETURNS INT AS BEGIN SELECT a FROM dual; END;`)
	assert.Empty(t, fa.CreateFunctions)
	require.Len(t, fa.AlterFunctions, 1)
	assert.Equal(t, "calc", fa.AlterFunctions[0].Name)
	assert.Equal(t, "INT", fa.AlterFunctions[0].ReturnType)
}

func TestDialectDetectionPriority(t *testing.T) {
	assert.Equal(t, DialectTSQL, DetectDialect("CREATE OR ALTER PROCEDURE p AS SELECT 1"))
	assert.Equal(t, DialectMySQL, DetectDialect("DELIMITER $$\nCREATE PROCEDURE p() BEGIN SELECT 1; END$$"))
	assert.Equal(t, DialectPLpgSQL, DetectDialect("CREATE FUNCTION f() RETURNS INT AS $$ BEGIN RETURN 1; END; $$ LANGUAGE plpgsql;"))
}

func TestNormalizeIdentIdempotent(t *testing.T) {
	once := trimIdent(`"orders"`)
	twice := trimIdent(once)
	assert.Equal(t, once, twice)
}
