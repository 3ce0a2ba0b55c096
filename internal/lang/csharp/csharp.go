// Package csharp extracts a structural summary from a C# source file.
//
// Node-type vocabulary generalized from the same field-based tree-sitter
// idiom as java/python, applied to tree-sitter-c-sharp's own grammar
// (class_declaration/interface_declaration/struct_declaration/
// enum_declaration, method_declaration, field_declaration,
// property_declaration with accessor_list, invocation_expression with a
// member_access_expression function). No C# provider exists in the
// teacher repo to ground node names on directly (see DESIGN.md).
package csharp

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tscsharp "github.com/smacker/go-tree-sitter/csharp"

	"github.com/oxhq/codeframe/internal/analyzer"
	"github.com/oxhq/codeframe/internal/lang/shared"
	"github.com/oxhq/codeframe/internal/model"
	"github.com/oxhq/codeframe/internal/registry"
	"github.com/oxhq/codeframe/internal/treeutil"
)

func init() {
	registry.Register(model.LangCSharp, "csharp", func() analyzer.Analyzer {
		return analyzer.Func(Analyze)
	})
}

// Analyze parses source as C# and builds a FileAnalysis.
func Analyze(path string, source []byte) (any, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tscsharp.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	fa := &model.FileAnalysis{Path: path, Language: string(model.LangCSharp)}
	e := &extractor{source: source, fa: fa}
	root := tree.RootNode()
	e.walkNamespace(root)
	model.SortMethodCalls(fa.MethodCalls)
	return fa, nil
}

type extractor struct {
	source []byte
	fa     *model.FileAnalysis
}

func (e *extractor) text(n *sitter.Node) string { return treeutil.Text(n, e.source) }

// walkNamespace handles the common shape where top-level types are nested
// one level inside a namespace_declaration/file_scoped_namespace_declaration.
func (e *extractor) walkNamespace(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "using_directive":
			e.fa.Imports = append(e.fa.Imports, strings.TrimSpace(e.text(child)))
		case "namespace_declaration", "file_scoped_namespace_declaration":
			e.walkNamespace(child)
		case "class_declaration":
			if t := e.buildType(child, model.KindClass); t != nil {
				e.fa.Types = append(e.fa.Types, *t)
			}
		case "interface_declaration":
			if t := e.buildType(child, model.KindInterface); t != nil {
				e.fa.Types = append(e.fa.Types, *t)
			}
		case "struct_declaration":
			if t := e.buildType(child, model.KindStruct); t != nil {
				e.fa.Types = append(e.fa.Types, *t)
			}
		case "record_declaration":
			if t := e.buildType(child, model.KindRecord); t != nil {
				e.fa.Types = append(e.fa.Types, *t)
			}
		case "enum_declaration":
			if t := e.buildEnum(child); t != nil {
				e.fa.Types = append(e.fa.Types, *t)
			}
		}
	}
}

func (e *extractor) buildType(node *sitter.Node, kind model.TypeKind) *model.TypeInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	t := &model.TypeInfo{Name: e.text(nameNode), Kind: kind, Visibility: modifierVisibility(node, e)}
	if baseList := node.ChildByFieldName("bases"); baseList != nil {
		for i := 0; i < int(baseList.NamedChildCount()); i++ {
			name := e.text(baseList.NamedChild(i))
			if i == 0 && kind != model.KindInterface {
				t.Extends = name
			} else {
				t.Implements = append(t.Implements, name)
			}
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		e.fillBody(t, body)
	}
	return t
}

func (e *extractor) buildEnum(node *sitter.Node) *model.TypeInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	t := &model.TypeInfo{Name: e.text(nameNode), Kind: model.KindEnum, Visibility: modifierVisibility(node, e)}
	body := node.ChildByFieldName("body")
	if body == nil {
		return t
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member != nil && member.Type() == "enum_member_declaration" {
			if n := member.ChildByFieldName("name"); n != nil {
				t.Fields = append(t.Fields, model.FieldInfo{Name: e.text(n), Visibility: model.VisPublic, Modifiers: []string{"const"}})
			}
		}
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
		case "constructor_declaration":
			if m := e.buildConstructor(member, t.Name); m != nil {
				t.Methods = append(t.Methods, *m)
			}
		case "field_declaration":
			t.Fields = append(t.Fields, e.buildFields(member)...)
		case "property_declaration":
			if p := e.buildProperty(member); p != nil {
				t.Properties = append(t.Properties, *p)
			}
		case "class_declaration":
			if nested := e.buildType(member, model.KindClass); nested != nil {
				t.Types = append(t.Types, *nested)
			}
		case "struct_declaration":
			if nested := e.buildType(member, model.KindStruct); nested != nil {
				t.Types = append(t.Types, *nested)
			}
		}
	}
}

func (e *extractor) buildProperty(node *sitter.Node) *model.PropertyInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	p := &model.PropertyInfo{Name: e.text(nameNode), Visibility: modifierVisibility(node, e)}
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		p.Type = e.text(typeNode)
	}
	accessors := treeutil.FirstChild(node, "accessor_list")
	if accessors == nil {
		p.Accessors = []model.Accessor{{Kind: model.AccessorGet}, {Kind: model.AccessorSet}}
		return p
	}
	for i := 0; i < int(accessors.NamedChildCount()); i++ {
		acc := accessors.NamedChild(i)
		if acc == nil {
			continue
		}
		text := e.text(acc)
		switch {
		case strings.HasPrefix(text, "get"):
			p.Accessors = append(p.Accessors, model.Accessor{Kind: model.AccessorGet})
		case strings.HasPrefix(text, "set") || strings.HasPrefix(text, "init"):
			p.Accessors = append(p.Accessors, model.Accessor{Kind: model.AccessorSet})
		}
	}
	if len(p.Accessors) == 0 {
		p.Accessors = []model.Accessor{{Kind: model.AccessorGet}}
	}
	return p
}

func (e *extractor) buildFields(node *sitter.Node) []model.FieldInfo {
	var out []model.FieldInfo
	decl := treeutil.FirstChild(node, "variable_declaration")
	if decl == nil {
		return out
	}
	typeNode := decl.ChildByFieldName("type")
	typ := ""
	if typeNode != nil {
		typ = e.text(typeNode)
	}
	vis := modifierVisibility(node, e)
	var mods []string
	if e.hasModifier(node, "static") {
		mods = append(mods, "static")
	}
	if e.hasModifier(node, "const") || e.hasModifier(node, "readonly") {
		mods = append(mods, "const")
	}
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		declarator := decl.NamedChild(i)
		if declarator == nil || declarator.Type() != "variable_declarator" {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		out = append(out, model.FieldInfo{Name: e.text(nameNode), Type: typ, Visibility: vis, Modifiers: mods})
	}
	return out
}

func (e *extractor) buildConstructor(node *sitter.Node, enclosingType string) *model.MethodInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	m := &model.MethodInfo{Name: e.text(nameNode), Visibility: modifierVisibility(node, e)}
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Parameters = e.buildParameters(params)
	}
	localVarTypes := map[string]string{}
	if body := node.ChildByFieldName("body"); body != nil {
		e.collectLocalsAndCalls(body, enclosingType, localVarTypes, m)
	}
	model.SortMethodCalls(m.MethodCalls)
	return m
}

func (e *extractor) buildMethod(node *sitter.Node, enclosingType string) *model.MethodInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	m := &model.MethodInfo{Name: e.text(nameNode), Visibility: modifierVisibility(node, e)}
	if e.hasModifier(node, "static") {
		m.Modifiers = append(m.Modifiers, "static")
	}
	if e.hasModifier(node, "virtual") {
		m.Modifiers = append(m.Modifiers, "virtual")
	}
	if e.hasModifier(node, "override") {
		m.Modifiers = append(m.Modifiers, "override")
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Parameters = e.buildParameters(params)
	}
	if rt := node.ChildByFieldName("type"); rt != nil {
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
		if p == nil || p.Type() != "parameter" {
			continue
		}
		nameNode := p.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		param := model.Parameter{Name: e.text(nameNode)}
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
		case "method_declaration", "constructor_declaration", "class_declaration", "struct_declaration":
			continue
		case "local_declaration_statement":
			e.recordLocals(child, localVarTypes, m)
		case "invocation_expression":
			if mc := e.buildCall(child, enclosingType, localVarTypes); mc != nil {
				m.MethodCalls = append(m.MethodCalls, *mc)
			}
		}
		e.collectLocalsAndCalls(child, enclosingType, localVarTypes, m)
	}
}

func (e *extractor) recordLocals(node *sitter.Node, localVarTypes map[string]string, m *model.MethodInfo) {
	decl := treeutil.FirstChild(node, "variable_declaration")
	if decl == nil {
		return
	}
	typeNode := decl.ChildByFieldName("type")
	typ := ""
	if typeNode != nil {
		typ = e.text(typeNode)
	}
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		declarator := decl.NamedChild(i)
		if declarator == nil || declarator.Type() != "variable_declarator" {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := e.text(nameNode)
		m.LocalVariables = append(m.LocalVariables, name)
		if typ != "" && typ != "var" {
			localVarTypes[name] = typ
		}
	}
}

// buildCall resolves an invocation_expression, whose "function" field is
// either a bare identifier or a member_access_expression
// ("expression"/"name" fields).
func (e *extractor) buildCall(call *sitter.Node, enclosingType string, localVarTypes map[string]string) *model.MethodCall {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	var name string
	var kind shared.ReceiverKind
	var receiverText string

	switch fn.Type() {
	case "identifier":
		name = e.text(fn)
		kind = shared.ReceiverNone
	case "member_access_expression":
		nameNode := fn.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		name = e.text(nameNode)
		obj := fn.ChildByFieldName("expression")
		kind, receiverText = e.classifyReceiverNode(obj)
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
	case "this_expression":
		return shared.ReceiverSelf, "this"
	case "base_expression":
		return shared.ReceiverSelf, "base"
	case "identifier":
		if shared.LooksLikeConstant(text) {
			return shared.ReceiverConstant, text
		}
		return shared.ReceiverIdentifier, text
	case "member_access_expression":
		if shared.IsNamespacedConstant(text, ".") {
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

func (e *extractor) hasModifier(node *sitter.Node, keyword string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c != nil && c.Type() == "modifier" && e.text(c) == keyword {
			return true
		}
	}
	return false
}

func modifierVisibility(node *sitter.Node, e *extractor) model.Visibility {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c == nil || c.Type() != "modifier" {
			continue
		}
		switch e.text(c) {
		case "public":
			return model.VisPublic
		case "private":
			return model.VisPrivate
		case "protected":
			return model.VisProtected
		case "internal":
			return model.VisPublic
		}
	}
	return model.VisPrivate
}
