// Package php extracts a structural summary from a PHP source file.
//
// Node-type vocabulary grounded on
// termfx-morfx/providers/php/config.go (class_declaration,
// interface_declaration, trait_declaration, method_declaration,
// property_declaration with variable_name children stripped of their "$"
// prefix, namespace_use_declaration, and the visibility-modifier walk in
// ValidateVisibility).
package php

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsphp "github.com/smacker/go-tree-sitter/php"

	"github.com/oxhq/codeframe/internal/analyzer"
	"github.com/oxhq/codeframe/internal/lang/shared"
	"github.com/oxhq/codeframe/internal/model"
	"github.com/oxhq/codeframe/internal/registry"
	"github.com/oxhq/codeframe/internal/treeutil"
)

func init() {
	registry.Register(model.LangPHP, "php", func() analyzer.Analyzer {
		return analyzer.Func(Analyze)
	})
}

// Analyze parses source as PHP and builds a FileAnalysis.
func Analyze(path string, source []byte) (any, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tsphp.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	fa := &model.FileAnalysis{Path: path, Language: string(model.LangPHP)}
	e := &extractor{source: source, fa: fa}
	root := tree.RootNode()
	e.walk(root)
	model.SortMethodCalls(fa.MethodCalls)
	return fa, nil
}

type extractor struct {
	source []byte
	fa     *model.FileAnalysis
}

func (e *extractor) text(n *sitter.Node) string { return treeutil.Text(n, e.source) }

// walk descends through program/namespace_definition/declaration_list
// wrappers looking for top-level declarations.
func (e *extractor) walk(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "namespace_use_declaration":
			e.fa.Imports = append(e.fa.Imports, strings.TrimSpace(e.text(child)))
		case "namespace_definition":
			e.walk(child)
		case "class_declaration", "final_class_declaration", "abstract_class_declaration":
			if t := e.buildType(child, model.KindClass); t != nil {
				e.fa.Types = append(e.fa.Types, *t)
			}
		case "interface_declaration":
			if t := e.buildType(child, model.KindInterface); t != nil {
				e.fa.Types = append(e.fa.Types, *t)
			}
		case "trait_declaration":
			if t := e.buildType(child, model.KindTrait); t != nil {
				e.fa.Types = append(e.fa.Types, *t)
			}
		case "function_definition":
			if m := e.buildFunction(child, ""); m != nil {
				e.fa.Methods = append(e.fa.Methods, *m)
			}
		case "compound_statement", "declaration_list":
			e.walk(child)
		}
	}
}

func (e *extractor) buildType(node *sitter.Node, kind model.TypeKind) *model.TypeInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	t := &model.TypeInfo{Name: e.text(nameNode), Kind: kind, Visibility: model.VisPublic}
	if base := node.ChildByFieldName("base_clause"); base != nil {
		if base.NamedChildCount() > 0 {
			t.Extends = e.text(base.NamedChild(0))
		}
	}
	if iface := node.ChildByFieldName("interfaces"); iface != nil {
		for i := 0; i < int(iface.NamedChildCount()); i++ {
			t.Implements = append(t.Implements, e.text(iface.NamedChild(i)))
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		e.fillBody(t, body)
	}
	return t
}

func (e *extractor) fillBody(t *model.TypeInfo, body *sitter.Node) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member == nil {
			continue
		}
		switch member.Type() {
		case "method_declaration":
			if m := e.buildMethod(member, t.Name); m != nil {
				t.Methods = append(t.Methods, *m)
			}
		case "property_declaration":
			t.Fields = append(t.Fields, e.buildFields(member)...)
		case "const_declaration":
			t.Fields = append(t.Fields, e.buildConsts(member)...)
		case "use_declaration":
			for j := 0; j < int(member.NamedChildCount()); j++ {
				name := member.NamedChild(j)
				if name != nil && name.Type() == "name" {
					t.Implements = append(t.Implements, e.text(name))
				}
			}
		}
	}
}

func (e *extractor) buildFields(node *sitter.Node) []model.FieldInfo {
	var out []model.FieldInfo
	vis := visibility(node, e)
	static := hasKeyword(node, e, "static")
	var props []*sitter.Node
	props = treeutil.AllDescendants(node, "property_element")
	if len(props) == 0 {
		props = treeutil.AllDescendants(node, "variable_name")
	}
	for _, p := range props {
		nameNode := p
		if p.Type() == "property_element" {
			if n := treeutil.FirstChild(p, "variable_name"); n != nil {
				nameNode = n
			}
		}
		name := strings.TrimPrefix(e.text(nameNode), "$")
		if name == "" {
			continue
		}
		f := model.FieldInfo{Name: name, Visibility: vis}
		if static {
			f.Modifiers = append(f.Modifiers, "static")
		}
		out = append(out, f)
	}
	return out
}

func (e *extractor) buildConsts(node *sitter.Node) []model.FieldInfo {
	var out []model.FieldInfo
	vis := visibility(node, e)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Type() != "const_element" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		out = append(out, model.FieldInfo{Name: e.text(nameNode), Visibility: vis, Modifiers: []string{"const"}})
	}
	return out
}

func (e *extractor) buildMethod(node *sitter.Node, enclosingType string) *model.MethodInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	m := &model.MethodInfo{Name: e.text(nameNode), Visibility: visibility(node, e)}
	if hasKeyword(node, e, "static") {
		m.Modifiers = append(m.Modifiers, "static")
	}
	if hasKeyword(node, e, "abstract") {
		m.Modifiers = append(m.Modifiers, "abstract")
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Parameters = e.buildParameters(params)
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		m.ReturnType = e.text(rt)
	}
	localVarTypes := map[string]string{}
	if body := node.ChildByFieldName("body"); body != nil {
		e.collectLocalsAndCalls(body, enclosingType, localVarTypes, m)
	}
	model.SortMethodCalls(m.MethodCalls)
	return m
}

func (e *extractor) buildFunction(node *sitter.Node, enclosingType string) *model.MethodInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	m := &model.MethodInfo{Name: e.text(nameNode), Visibility: model.VisPublic}
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Parameters = e.buildParameters(params)
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		m.ReturnType = e.text(rt)
	}
	localVarTypes := map[string]string{}
	if body := node.ChildByFieldName("body"); body != nil {
		e.collectLocalsAndCalls(body, enclosingType, localVarTypes, m)
	}
	model.SortMethodCalls(m.MethodCalls)
	return m
}

func (e *extractor) buildParameters(params *sitter.Node) []model.Parameter {
	var out []model.Parameter
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		var nameNode *sitter.Node
		switch p.Type() {
		case "simple_parameter", "property_promotion_parameter", "variadic_parameter":
			nameNode = p.ChildByFieldName("name")
		default:
			continue
		}
		if nameNode == nil {
			continue
		}
		param := model.Parameter{Name: strings.TrimPrefix(e.text(nameNode), "$")}
		if typeNode := p.ChildByFieldName("type"); typeNode != nil {
			param.Type = e.text(typeNode)
		}
		out = append(out, param)
	}
	return out
}

func (e *extractor) collectLocalsAndCalls(node *sitter.Node, enclosingType string, localVarTypes map[string]string, m *model.MethodInfo) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_definition", "method_declaration", "class_declaration":
			continue
		case "assignment_expression":
			e.recordLocalAssignment(child, localVarTypes, m)
		case "member_call_expression", "scoped_call_expression", "function_call_expression":
			if mc := e.buildCall(child, enclosingType, localVarTypes); mc != nil {
				m.MethodCalls = append(m.MethodCalls, *mc)
			}
		}
		e.collectLocalsAndCalls(child, enclosingType, localVarTypes, m)
	}
}

func (e *extractor) recordLocalAssignment(node *sitter.Node, localVarTypes map[string]string, m *model.MethodInfo) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || left.Type() != "variable_name" {
		return
	}
	name := strings.TrimPrefix(e.text(left), "$")
	m.LocalVariables = append(m.LocalVariables, name)
	if right != nil {
		if t := literalType(right); t != "" {
			localVarTypes[name] = t
		}
		if right.Type() == "object_creation_expression" {
			if cn := right.ChildByFieldName("class"); cn != nil {
				localVarTypes[name] = e.text(cn)
			}
		}
	}
}

// buildCall handles the three PHP call shapes: a bare function call, a
// ->method() instance call, and a ::method() static/scope call.
func (e *extractor) buildCall(call *sitter.Node, enclosingType string, localVarTypes map[string]string) *model.MethodCall {
	var name string
	var kind shared.ReceiverKind
	var receiverText string

	switch call.Type() {
	case "function_call_expression":
		fn := call.ChildByFieldName("function")
		if fn == nil || fn.Type() != "name" {
			return nil
		}
		name = e.text(fn)
		kind = shared.ReceiverNone
	case "member_call_expression":
		nameNode := call.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		name = e.text(nameNode)
		obj := call.ChildByFieldName("object")
		kind, receiverText = e.classifyReceiverNode(obj)
	case "scoped_call_expression":
		nameNode := call.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		name = e.text(nameNode)
		scope := call.ChildByFieldName("scope")
		kind, receiverText = e.classifyReceiverNode(scope)
	default:
		return nil
	}
	if name == "" {
		return nil
	}

	objType, objName := shared.ClassifyReceiver(kind, receiverText, enclosingType, localVarTypes)
	args := call.ChildByFieldName("arguments")
	return &model.MethodCall{
		MethodName:     name,
		ObjectType:     objType,
		ObjectName:     objName,
		ParameterCount: argCount(args),
	}
}

func (e *extractor) classifyReceiverNode(node *sitter.Node) (shared.ReceiverKind, string) {
	if node == nil {
		return shared.ReceiverNone, ""
	}
	text := e.text(node)
	switch node.Type() {
	case "variable_name":
		name := strings.TrimPrefix(text, "$")
		if name == "this" {
			return shared.ReceiverSelf, "this"
		}
		return shared.ReceiverIdentifier, name
	case "name":
		if text == "self" || text == "static" || text == "parent" {
			return shared.ReceiverSelf, text
		}
		if shared.LooksLikeConstant(text) {
			return shared.ReceiverConstant, text
		}
		return shared.ReceiverIdentifier, text
	case "qualified_name":
		if shared.IsNamespacedConstant(text, `\`) {
			return shared.ReceiverNamespacedConstant, text
		}
		return shared.ReceiverChained, text
	default:
		return shared.ReceiverChained, text
	}
}

func argCount(args *sitter.Node) int {
	if args == nil {
		return 0
	}
	n := 0
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if c := args.NamedChild(i); c != nil && c.Type() == "argument" {
			n++
		}
	}
	return n
}

func literalType(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "string":
		return "string"
	case "integer":
		return "integer"
	case "float":
		return "float"
	case "true", "false":
		return "boolean"
	case "array_creation_expression":
		return "array"
	}
	return ""
}

// visibility walks a property/method/const declaration's own children for
// an explicit visibility_modifier, defaulting to public as PHP itself does
// when none is given.
func visibility(node *sitter.Node, e *extractor) model.Visibility {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		if c.Type() == "visibility_modifier" {
			switch e.text(c) {
			case "private":
				return model.VisPrivate
			case "protected":
				return model.VisProtected
			case "public":
				return model.VisPublic
			}
		}
	}
	return model.VisPublic
}

func hasKeyword(node *sitter.Node, e *extractor, keyword string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c != nil && e.text(c) == keyword {
			return true
		}
	}
	return false
}
