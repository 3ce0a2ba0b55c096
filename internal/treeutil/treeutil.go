// Package treeutil provides generic, grammar-agnostic tree-sitter navigation
// helpers shared by every structural extractor. None of these mutate the
// tree; all treat a nil node as a no-op returning a zero value.
package treeutil

import sitter "github.com/smacker/go-tree-sitter"

// FirstChild returns the first named child of node whose Type() equals typ,
// or nil if node is nil or no such child exists.
func FirstChild(node *sitter.Node, typ string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child != nil && child.Type() == typ {
			return child
		}
	}
	return nil
}

// AllChildren returns every named child of node whose Type() equals typ, in
// source order.
func AllChildren(node *sitter.Node, typ string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child != nil && child.Type() == typ {
			out = append(out, child)
		}
	}
	return out
}

// AllDescendants returns every descendant of node (named or not) whose
// Type() equals typ, depth-first pre-order, not including node itself.
func AllDescendants(node *sitter.Node, typ string) []*sitter.Node {
	if node == nil {
		return nil
	}
	var out []*sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			if child.Type() == typ {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(node)
	return out
}

// Text returns the byte-range slice of source covered by node, using the
// byte offsets tree-sitter reports directly so any encoding the parser
// accepts is preserved. Returns "" for a nil node or an out-of-range span.
func Text(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(source) || start > end {
		return ""
	}
	return string(source[start:end])
}

// FieldName returns the field label tree-sitter's grammar assigns to the
// child at childIndex under node, or "" if the grammar exposes no label for
// that position or node/index is invalid.
func FieldName(node *sitter.Node, childIndex int) string {
	if node == nil || childIndex < 0 || childIndex >= int(node.ChildCount()) {
		return ""
	}
	return node.FieldNameForChild(childIndex)
}
