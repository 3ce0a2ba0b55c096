// Package cobol implements the COBOL analyzer: COPY/REPLACE expansion
// against a run-scoped copybook Repository, followed by a best-effort,
// standard-library-only structural walk of the four divisions. There is no
// COBOL grammar in the reference corpus to ground a parser generator on, so
// this package scans division/section/paragraph/sentence boundaries with
// regexes and a level-number stack, the same way the scanner-based SQL and
// tree-sitter query layers in this module trade a full grammar for a
// narrower, deterministic extraction pass.
package cobol

import (
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/oxhq/codeframe/internal/analyzer"
	"github.com/oxhq/codeframe/internal/model"
	"github.com/oxhq/codeframe/internal/registry"
)

func init() {
	registry.Register(model.LangCOBOL, "cobol", func() analyzer.Analyzer { return NewAnalyzer() })
}

// Analyzer is the COBOL analyzer.Analyzer. Copybooks must be supplied once
// via SetCopybooks before Analyze is called concurrently; Analyze itself
// only reads the stored Repository, never writes it.
type Analyzer struct {
	repo atomic.Pointer[Repository]
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// SetCopybooks installs the run's copybook Repository. Called once by the
// orchestrator before dispatch begins.
func (a *Analyzer) SetCopybooks(repo *Repository) {
	a.repo.Store(repo)
}

func (a *Analyzer) Analyze(path string, source []byte) (any, error) {
	raw := string(source)
	expanded, copies := Expand(raw, a.repo.Load())

	fa := &model.COBOLFileAnalysis{
		Path:          path,
		Language:      string(model.LangCOBOL),
		HasExecSQL:    execSQLRe.MatchString(raw),
		HasExecCICS:   execCICSRe.MatchString(raw),
		HasExecSQLIMS: execSQLIMSRe.MatchString(raw),
	}
	for _, c := range copies {
		fa.CopyStatements = append(fa.CopyStatements, model.COBOLCopyStatement{
			CopybookName: c.CopybookName,
			ReplacedBy:   c.ReplacedBy,
		})
	}

	divisions := splitDivisions(expanded)
	if m := programIDRe.FindStringSubmatch(divisions["IDENTIFICATION"]); m != nil {
		fa.ProgramID = strings.Trim(m[1], `"'.`)
	}

	parseEnvironmentDivision(divisions["ENVIRONMENT"], fa)
	parseDataDivision(divisions["DATA"], fa)

	if m := procedureUsingRe.FindStringSubmatch(divisions["PROCEDURE_HEADER"]); m != nil {
		for _, tok := range strings.Fields(m[1]) {
			if strings.EqualFold(tok, "BY") || strings.EqualFold(tok, "REFERENCE") || strings.EqualFold(tok, "VALUE") {
				continue
			}
			fa.ProcedureParameters = append(fa.ProcedureParameters, tok)
		}
	}

	proc := parseProcedureDivision(divisions["PROCEDURE"])
	fa.Sections = proc.sections
	fa.Paragraphs = proc.paragraphs

	return fa, nil
}

var (
	execSQLRe    = regexp.MustCompile(`(?is)\bEXEC\s+SQL\b`)
	execCICSRe   = regexp.MustCompile(`(?is)\bEXEC\s+CICS\b`)
	execSQLIMSRe = regexp.MustCompile(`(?is)\bEXEC\s+SQLIMS\b`)
	programIDRe  = regexp.MustCompile(`(?is)PROGRAM-ID\.\s*([A-Za-z0-9_-]+)`)

	divisionHeaderRe = regexp.MustCompile(`(?im)^\s*(IDENTIFICATION|ENVIRONMENT|DATA|PROCEDURE)\s+DIVISION\b[^.]*\.`)
	procedureUsingRe = regexp.MustCompile(`(?is)PROCEDURE\s+DIVISION(?:\s+USING\s+(.*?))?\s*\.`)
)

// splitDivisions slices source by its DIVISION headers. "PROCEDURE_HEADER"
// carries the PROCEDURE DIVISION header line itself (for USING parsing)
// while "PROCEDURE" carries the body that follows it.
func splitDivisions(source string) map[string]string {
	out := map[string]string{}
	matches := divisionHeaderRe.FindAllStringSubmatchIndex(source, -1)
	for i, m := range matches {
		name := source[m[2]:m[3]]
		bodyStart := m[1]
		bodyEnd := len(source)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		out[name] = source[bodyStart:bodyEnd]
		if name == "PROCEDURE" {
			out["PROCEDURE_HEADER"] = source[m[0]:m[1]]
		}
	}
	return out
}

var (
	selectRe      = regexp.MustCompile(`(?is)SELECT\s+(?:OPTIONAL\s+)?([A-Za-z0-9_-]+)\s+ASSIGN\s+(?:TO\s+)?([A-Za-z0-9_.-]+)(.*?)$`)
	organizationRe = regexp.MustCompile(`(?is)ORGANIZATION\s+(?:IS\s+)?([A-Za-z0-9-]+(?:\s+[A-Za-z0-9-]+)?)`)
)

func parseEnvironmentDivision(body string, fa *model.COBOLFileAnalysis) {
	for _, sent := range splitSentences(body) {
		m := selectRe.FindStringSubmatch(sent)
		if m == nil {
			continue
		}
		fc := model.COBOLFileControl{FileName: m[1], AssignTo: m[2]}
		if om := organizationRe.FindStringSubmatch(m[3]); om != nil {
			fc.Organization = strings.ToUpper(om[1])
		}
		fa.FileControls = append(fa.FileControls, fc)
	}
}

var (
	sectionHeaderRe = regexp.MustCompile(`(?im)^\s*(WORKING-STORAGE|LINKAGE|LOCAL-STORAGE|FILE)\s+SECTION\b`)
	fdHeaderRe      = regexp.MustCompile(`(?is)^FD\s+([A-Za-z0-9_-]+)`)
)

// parseDataDivision splits body on WORKING-STORAGE/LINKAGE/LOCAL-STORAGE/
// FILE SECTION headers. The FILE SECTION is further split per FD entry,
// each producing a COBOLFileDef; the other three feed fa.DataItems with
// their section name attached to every item.
func parseDataDivision(body string, fa *model.COBOLFileAnalysis) {
	matches := sectionHeaderRe.FindAllStringSubmatchIndex(body, -1)
	for i, m := range matches {
		name := body[m[2]:m[3]]
		start := m[1]
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		section := body[start:end]
		if name == "FILE" {
			fa.FileDefinitions = append(fa.FileDefinitions, parseFileSection(section)...)
			continue
		}
		fa.DataItems = append(fa.DataItems, buildDataItemTree(splitSentences(section), name)...)
	}
}

func parseFileSection(body string) []model.COBOLFileDef {
	var defs []model.COBOLFileDef
	sentences := splitSentences(body)
	var current *model.COBOLFileDef
	var pending []string
	flush := func() {
		if current == nil {
			return
		}
		current.Records = buildDataItemTree(pending, "FILE")
		defs = append(defs, *current)
		current = nil
		pending = nil
	}
	for _, sent := range sentences {
		if m := fdHeaderRe.FindStringSubmatch(sent); m != nil {
			flush()
			current = &model.COBOLFileDef{FileName: m[1]}
			continue
		}
		if current != nil {
			pending = append(pending, sent)
		}
	}
	flush()
	return defs
}
