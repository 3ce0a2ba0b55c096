package orchestrator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/oxhq/codeframe/internal/cobol"
	"github.com/oxhq/codeframe/internal/config"
	"github.com/oxhq/codeframe/internal/ignorefile"
	"github.com/oxhq/codeframe/internal/registry"
	_ "github.com/oxhq/codeframe/internal/sqlanalysis"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func decodeRecords(t *testing.T, out []byte) []map[string]any {
	t.Helper()
	var records []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestRunProducesRunAndDoneEnvelopes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.sql", `CREATE TABLE t(id INT PRIMARY KEY);`)

	ignore, err := ignorefile.Load(filepath.Join(dir, ".ignore"))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = Run(context.Background(), &buf, Options{
		InputPath: dir,
		Config:    config.Default(),
		Registry:  registry.Build(config.Default().AnalyzerEnabled),
		Ignore:    ignore,
		Workers:   2,
	})
	require.NoError(t, err)

	records := decodeRecords(t, buf.Bytes())
	require.True(t, len(records) >= 2)
	require.Equal(t, "run", records[0]["kind"])
	require.Equal(t, "done", records[len(records)-1]["kind"])
}

func TestRunResolvesCopybooksAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "CUSTREC.cpy", "01 CUST-REC.\n    05 CUST-ID PIC 9(5).\n")
	writeFile(t, dir, "prog.cbl", ""+
		"IDENTIFICATION DIVISION.\n"+
		"PROGRAM-ID. PROG1.\n"+
		"DATA DIVISION.\n"+
		"WORKING-STORAGE SECTION.\n"+
		"COPY CUSTREC.\n"+
		"PROCEDURE DIVISION.\n"+
		"    GOBACK.\n")

	ignore, err := ignorefile.Load(filepath.Join(dir, ".ignore"))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = Run(context.Background(), &buf, Options{
		InputPath: dir,
		Config:    config.Default(),
		Registry:  registry.Build(config.Default().AnalyzerEnabled),
		Ignore:    ignore,
		Workers:   2,
	})
	require.NoError(t, err)

	var progRecord map[string]any
	for _, rec := range decodeRecords(t, buf.Bytes()) {
		if path, ok := rec["path"].(string); ok && filepath.Base(path) == "prog.cbl" {
			progRecord = rec
		}
	}
	require.NotNil(t, progRecord, "expected an analysis record for prog.cbl")
	dataItems, _ := progRecord["dataItems"].([]any)
	require.NotEmpty(t, dataItems, "COPY CUSTREC should have expanded into a data item")
}

func TestHideSQLTableColumnsStripsColumnDetail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "t.sql", `CREATE TABLE t(id INT PRIMARY KEY, name VARCHAR(10) NOT NULL);`)

	ignore, err := ignorefile.Load(filepath.Join(dir, ".ignore"))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.HideSQLTableColumns = true

	var buf bytes.Buffer
	err = Run(context.Background(), &buf, Options{
		InputPath: dir,
		Config:    cfg,
		Registry:  registry.Build(cfg.AnalyzerEnabled),
		Ignore:    ignore,
		Workers:   2,
	})
	require.NoError(t, err)

	var sqlRecord map[string]any
	for _, rec := range decodeRecords(t, buf.Bytes()) {
		if _, ok := rec["createTables"]; ok {
			sqlRecord = rec
		}
	}
	require.NotNil(t, sqlRecord)
	tables, ok := sqlRecord["createTables"].([]any)
	require.True(t, ok)
	require.Len(t, tables, 1)
	tbl := tables[0].(map[string]any)
	_, hasColumns := tbl["columns"]
	require.False(t, hasColumns, "columns should be omitted when HideSQLTableColumns is set")
	require.Equal(t, "t", tbl["tableName"])
}
