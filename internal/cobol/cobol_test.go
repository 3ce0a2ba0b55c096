package cobol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/codeframe/internal/model"
)

const sampleProgram = `       IDENTIFICATION DIVISION.
       PROGRAM-ID. SAMPLE.
       ENVIRONMENT DIVISION.
       INPUT-OUTPUT SECTION.
       FILE-CONTROL.
           SELECT CUST-FILE ASSIGN TO "CUSTFILE"
               ORGANIZATION IS INDEXED.
       DATA DIVISION.
       FILE SECTION.
       FD  CUST-FILE.
       01  CUST-RECORD.
           05  CUST-ID       PIC 9(6).
           05  CUST-NAME     PIC X(30).
       WORKING-STORAGE SECTION.
       01  WS-COUNTERS.
           05  WS-TOTAL      PIC 9(4) VALUE 0.
           05  WS-FLAG       PIC X.
       77  WS-SOLO           PIC 9(2).
       88  WS-FLAG-ON        VALUE "Y".
       PROCEDURE DIVISION.
       MAIN-PARA.
           PERFORM READ-PARA THRU READ-PARA-EXIT.
           MOVE WS-TOTAL TO WS-FLAG.
           CALL "SUBPGM" USING WS-TOTAL WS-FLAG.
           GOBACK.
       READ-PARA.
           OPEN INPUT CUST-FILE.
           READ CUST-FILE.
           EXIT.
       READ-PARA-EXIT.
           EXIT.
`

func TestAnalyzeSampleProgram(t *testing.T) {
	a := NewAnalyzer()
	result, err := a.Analyze("sample.cbl", []byte(sampleProgram))
	require.NoError(t, err)
	fa, ok := result.(*model.COBOLFileAnalysis)
	require.True(t, ok)

	assert.Equal(t, "SAMPLE", fa.ProgramID)
	require.Len(t, fa.FileControls, 1)
	assert.Equal(t, "CUST-FILE", fa.FileControls[0].FileName)
	assert.Equal(t, "INDEXED", fa.FileControls[0].Organization)

	require.Len(t, fa.FileDefinitions, 1)
	require.Len(t, fa.FileDefinitions[0].Records, 1)
	assert.Len(t, fa.FileDefinitions[0].Records[0].Children, 2)

	require.Len(t, fa.Paragraphs, 3)
	assert.Equal(t, "MAIN-PARA", fa.Paragraphs[0].Name)
	require.Len(t, fa.Paragraphs[0].PerformCalls, 1)
	assert.Equal(t, "READ-PARA", fa.Paragraphs[0].PerformCalls[0].TargetParagraph)
	assert.Equal(t, "READ-PARA-EXIT", fa.Paragraphs[0].PerformCalls[0].ThruParagraph)
	require.Len(t, fa.Paragraphs[0].ExternalCalls, 1)
	assert.Equal(t, "SUBPGM", fa.Paragraphs[0].ExternalCalls[0].ProgramName)
	assert.False(t, fa.Paragraphs[0].ExternalCalls[0].IsDynamic)
	require.Len(t, fa.Paragraphs[0].ControlFlowStatements, 1)
	assert.Equal(t, "GOBACK", fa.Paragraphs[0].ControlFlowStatements[0].Type)

	assert.Equal(t, "READ-PARA", fa.Paragraphs[1].Name)
	require.Len(t, fa.Paragraphs[1].FileOperations, 2)
	assert.Equal(t, "OPEN", fa.Paragraphs[1].FileOperations[0].Verb)
	assert.Equal(t, "CUST-FILE", fa.Paragraphs[1].FileOperations[0].Target)
	assert.Empty(t, fa.Paragraphs[1].ControlFlowStatements, "bare EXIT must not be captured")

	assert.Equal(t, "READ-PARA-EXIT", fa.Paragraphs[2].Name)
}

func TestDataItemChildrenStrictlyGreaterLevel(t *testing.T) {
	sentences := []string{
		"01 TOP-LEVEL.",
		"05 MID-LEVEL.",
		"10 LOW-LEVEL PIC X.",
		"77 STANDALONE PIC 9(2).",
		"88 COND-NAME VALUE 1.",
	}
	items := buildDataItemTree(sentences, "WORKING-STORAGE")
	require.Len(t, items, 1)
	assert.Equal(t, "TOP-LEVEL", items[0].Name)
	require.Len(t, items[0].Children, 1)
	assert.Equal(t, "MID-LEVEL", items[0].Children[0].Name)
	require.Len(t, items[0].Children[0].Children, 1)
	low := items[0].Children[0].Children[0]
	assert.Equal(t, "LOW-LEVEL", low.Name)

	// 77 and 88 are greater than 10, so both attach under LOW-LEVEL; neither
	// is pushed, so neither receives children of its own.
	require.Len(t, low.Children, 2)
	assert.Equal(t, 77, low.Children[0].Level)
	assert.Nil(t, low.Children[0].Children)
	assert.Equal(t, 88, low.Children[1].Level)
	assert.Nil(t, low.Children[1].Children)
}

func TestExpandResolvesCopybook(t *testing.T) {
	repo := NewRepository([]File{
		{Path: "copybooks/CUSTREC.cpy", Source: []byte("05 CUST-ID PIC 9(6).")},
	})
	source := "       01 CUST-RECORD.\n           COPY CUSTREC.\n"
	expanded, copies := Expand(source, repo)
	require.Len(t, copies, 1)
	assert.True(t, copies[0].Resolved)
	assert.Contains(t, expanded, "CUST-ID")
}

func TestExpandUnresolvedCopyLeavesMarker(t *testing.T) {
	repo := NewRepository(nil)
	source := "COPY MISSING-BOOK.\n"
	expanded, copies := Expand(source, repo)
	require.Len(t, copies, 1)
	assert.False(t, copies[0].Resolved)
	assert.Contains(t, expanded, "UNRESOLVED COPY")
}

func TestRepositoryDedupPrefersShortestThenLexicographic(t *testing.T) {
	repo := NewRepository([]File{
		{Path: "b/deep/path/CUSTREC.cpy", Source: []byte("first")},
		{Path: "a/CUSTREC.cpy", Source: []byte("second")},
	})
	f, ok := repo.Lookup("CUSTREC")
	require.True(t, ok)
	assert.Equal(t, "a/CUSTREC.cpy", f.Path)
	assert.NotEmpty(t, repo.Warnings)
}
