// Package java extracts a structural summary from a Java source file.
//
// Node-type vocabulary generalized from the same field-based
// ChildByFieldName("name"/"body"/"parameters") tree-sitter idiom the
// javascript/python providers demonstrate, applied to tree-sitter-java's
// own grammar (class_declaration/interface_declaration/enum_declaration,
// method_declaration/constructor_declaration, field_declaration,
// method_invocation), since no Java provider exists in the teacher repo to
// ground node names on directly (see DESIGN.md).
package java

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsjava "github.com/smacker/go-tree-sitter/java"

	"github.com/oxhq/codeframe/internal/analyzer"
	"github.com/oxhq/codeframe/internal/lang/shared"
	"github.com/oxhq/codeframe/internal/model"
	"github.com/oxhq/codeframe/internal/registry"
	"github.com/oxhq/codeframe/internal/treeutil"
)

func init() {
	registry.Register(model.LangJava, "java", func() analyzer.Analyzer {
		return analyzer.Func(Analyze)
	})
}

// Analyze parses source as Java and builds a FileAnalysis.
func Analyze(path string, source []byte) (any, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tsjava.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	fa := &model.FileAnalysis{Path: path, Language: string(model.LangJava)}
	e := &extractor{source: source, fa: fa}
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		e.topLevel(root.NamedChild(i))
	}
	model.SortMethodCalls(fa.MethodCalls)
	return fa, nil
}

type extractor struct {
	source []byte
	fa     *model.FileAnalysis
}

func (e *extractor) text(n *sitter.Node) string { return treeutil.Text(n, e.source) }

func (e *extractor) topLevel(node *sitter.Node) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "import_declaration":
		e.fa.Imports = append(e.fa.Imports, strings.TrimSpace(e.text(node)))
	case "class_declaration":
		if t := e.buildType(node, model.KindClass); t != nil {
			e.fa.Types = append(e.fa.Types, *t)
		}
	case "interface_declaration":
		if t := e.buildType(node, model.KindInterface); t != nil {
			e.fa.Types = append(e.fa.Types, *t)
		}
	case "enum_declaration":
		if t := e.buildEnum(node); t != nil {
			e.fa.Types = append(e.fa.Types, *t)
		}
	case "record_declaration":
		if t := e.buildType(node, model.KindRecord); t != nil {
			e.fa.Types = append(e.fa.Types, *t)
		}
	}
}

func (e *extractor) buildType(node *sitter.Node, kind model.TypeKind) *model.TypeInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	t := &model.TypeInfo{Name: e.text(nameNode), Kind: kind, Visibility: modifierVisibility(node, e)}
	if sc := node.ChildByFieldName("superclass"); sc != nil {
		if sc.NamedChildCount() > 0 {
			t.Extends = e.text(sc.NamedChild(0))
		}
	}
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		for i := 0; i < int(ifaces.NamedChildCount()); i++ {
			lst := ifaces.NamedChild(i)
			if lst == nil {
				continue
			}
			for j := 0; j < int(lst.NamedChildCount()); j++ {
				t.Implements = append(t.Implements, e.text(lst.NamedChild(j)))
			}
		}
	}
	if ext := node.ChildByFieldName("extends"); ext != nil {
		for i := 0; i < int(ext.NamedChildCount()); i++ {
			lst := ext.NamedChild(i)
			if lst == nil {
				continue
			}
			for j := 0; j < int(lst.NamedChildCount()); j++ {
				t.Implements = append(t.Implements, e.text(lst.NamedChild(j)))
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
		if member == nil {
			continue
		}
		switch member.Type() {
		case "enum_constant":
			if n := member.ChildByFieldName("name"); n != nil {
				t.Fields = append(t.Fields, model.FieldInfo{Name: e.text(n), Visibility: model.VisPublic, Modifiers: []string{"const"}})
			}
		case "enum_body_declarations":
			e.fillBody(t, member)
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
		case "class_declaration":
			if nested := e.buildType(member, model.KindClass); nested != nil {
				t.Types = append(t.Types, *nested)
			}
		case "interface_declaration":
			if nested := e.buildType(member, model.KindInterface); nested != nil {
				t.Types = append(t.Types, *nested)
			}
		case "enum_declaration":
			if nested := e.buildEnum(member); nested != nil {
				t.Types = append(t.Types, *nested)
			}
		}
	}
}

func (e *extractor) buildFields(node *sitter.Node) []model.FieldInfo {
	var out []model.FieldInfo
	typeNode := node.ChildByFieldName("type")
	typ := ""
	if typeNode != nil {
		typ = e.text(typeNode)
	}
	vis := modifierVisibility(node, e)
	var mods []string
	if hasModifier(node, "static") {
		mods = append(mods, "static")
	}
	if hasModifier(node, "final") {
		mods = append(mods, "const")
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl == nil || decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
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
	if hasModifier(node, "static") {
		m.Modifiers = append(m.Modifiers, "static")
	}
	if hasModifier(node, "abstract") {
		m.Modifiers = append(m.Modifiers, "abstract")
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
		if p == nil {
			continue
		}
		switch p.Type() {
		case "formal_parameter", "spread_parameter":
			nameNode := p.ChildByFieldName("name")
			typeNode := p.ChildByFieldName("type")
			if nameNode == nil {
				continue
			}
			param := model.Parameter{Name: e.text(nameNode)}
			if typeNode != nil {
				param.Type = e.text(typeNode)
			}
			out = append(out, param)
		}
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
		case "method_declaration", "constructor_declaration", "class_declaration", "interface_declaration", "enum_declaration":
			continue
		case "local_variable_declaration":
			e.recordLocals(child, localVarTypes, m)
		case "method_invocation":
			if mc := e.buildCall(child, enclosingType, localVarTypes); mc != nil {
				m.MethodCalls = append(m.MethodCalls, *mc)
			}
		}
		e.collectLocalsAndCalls(child, enclosingType, localVarTypes, m)
	}
}

func (e *extractor) recordLocals(node *sitter.Node, localVarTypes map[string]string, m *model.MethodInfo) {
	typeNode := node.ChildByFieldName("type")
	typ := ""
	if typeNode != nil {
		typ = e.text(typeNode)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl == nil || decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := e.text(nameNode)
		m.LocalVariables = append(m.LocalVariables, name)
		if typ != "" {
			localVarTypes[name] = typ
		}
	}
}

// buildCall resolves a method_invocation node, whose grammar exposes
// "object" and "name" fields directly (no intermediate member-access
// node, unlike JS/Python/C#).
func (e *extractor) buildCall(call *sitter.Node, enclosingType string, localVarTypes map[string]string) *model.MethodCall {
	nameNode := call.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := e.text(nameNode)
	obj := call.ChildByFieldName("object")
	kind, receiverText := e.classifyReceiverNode(obj)
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
	case "this":
		return shared.ReceiverSelf, "this"
	case "identifier":
		if shared.LooksLikeConstant(text) {
			return shared.ReceiverConstant, text
		}
		return shared.ReceiverIdentifier, text
	case "field_access":
		if shared.IsNamespacedConstant(text, ".") {
			return shared.ReceiverNamespacedConstant, text
		}
		return shared.ReceiverChained, text
	case "method_invocation":
		return shared.ReceiverChained, text
	default:
		return shared.ReceiverChained, text
	}
}

func argCount(args *sitter.Node) int {
	if args == nil {
		return 0
	}
	return int(args.NamedChildCount())
}

func hasModifier(node *sitter.Node, keyword string) bool {
	mods := treeutil.FirstChild(node, "modifiers")
	if mods == nil {
		return false
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		c := mods.Child(i)
		if c != nil && c.Type() == keyword {
			return true
		}
	}
	return false
}

func modifierVisibility(node *sitter.Node, e *extractor) model.Visibility {
	mods := treeutil.FirstChild(node, "modifiers")
	if mods == nil {
		return model.VisPublic
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		c := mods.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "public":
			return model.VisPublic
		case "private":
			return model.VisPrivate
		case "protected":
			return model.VisProtected
		}
	}
	return model.VisPublic
}
