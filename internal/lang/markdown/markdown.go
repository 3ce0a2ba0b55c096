// Package markdown extracts headings and link targets from a Markdown
// file using goldmark's AST, in place of a hand-rolled regex scan: walk
// the parsed document once, collecting ast.Heading and ast.Link/
// ast.AutoLink nodes with their source line number.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/oxhq/codeframe/internal/analyzer"
	"github.com/oxhq/codeframe/internal/model"
	"github.com/oxhq/codeframe/internal/registry"
)

func init() {
	registry.Register(model.LangMarkdown, "markdown", func() analyzer.Analyzer {
		return analyzer.Func(Analyze)
	})
}

// Analyze parses source as Markdown and builds a FileAnalysis populated
// with only Headings and Links, per spec.
func Analyze(path string, source []byte) (any, error) {
	reader := text.NewReader(source)
	root := goldmark.DefaultParser().Parse(reader)

	fa := &model.FileAnalysis{Path: path, Language: string(model.LangMarkdown)}
	lines := newLineIndex(source)

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			fa.Headings = append(fa.Headings, model.Heading{
				Level: node.Level,
				Text:  strings.TrimSpace(string(inlineText(node, source))),
				Line:  lines.lineAt(nodeOffset(node)),
			})
		case *ast.Link:
			fa.Links = append(fa.Links, model.Link{
				Text: strings.TrimSpace(string(inlineText(node, source))),
				URL:  string(node.Destination),
				Line: lines.lineAt(nodeOffset(node)),
			})
		case *ast.AutoLink:
			url := string(node.URL(source))
			fa.Links = append(fa.Links, model.Link{
				Text: url,
				URL:  url,
				Line: lines.lineAt(nodeOffset(node)),
			})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return fa, nil
}

// inlineText concatenates the raw source text of every *ast.Text leaf
// under node, which is how goldmark represents a heading's or link's
// rendered label rather than exposing it as a single span.
func inlineText(node ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.Write(inlineText(c, source))
		}
	}
	return buf.Bytes()
}

// nodeOffset returns the byte offset of the first text segment under
// node, used only to resolve a line number; block/inline container
// nodes carry no offset of their own in goldmark's AST.
func nodeOffset(node ast.Node) int {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			return t.Segment.Start
		}
		if off := nodeOffset(c); off >= 0 {
			return off
		}
	}
	return -1
}

// lineIndex resolves a byte offset to a 1-based line number.
type lineIndex struct {
	starts []int
}

func newLineIndex(source []byte) *lineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (l *lineIndex) lineAt(offset int) int {
	if offset < 0 {
		return 0
	}
	lo, hi := 0, len(l.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if l.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}
