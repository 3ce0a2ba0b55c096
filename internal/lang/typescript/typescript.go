// Package typescript extracts a structural summary from a TypeScript
// source file.
//
// Node-type vocabulary grounded on
// termfx-morfx/providers/typescript/config.go's alias map — this grammar
// extends JavaScript's with interface_declaration, enum_declaration,
// type_alias_declaration, property_signature/method_signature, and
// accessibility_modifier/public_field_definition/private_field_definition
// for visibility, none of which javascript's grammar exposes.
package typescript

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tstypescript "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/oxhq/codeframe/internal/analyzer"
	"github.com/oxhq/codeframe/internal/lang/shared"
	"github.com/oxhq/codeframe/internal/model"
	"github.com/oxhq/codeframe/internal/registry"
	"github.com/oxhq/codeframe/internal/treeutil"
)

func init() {
	registry.Register(model.LangTypeScript, "typescript", func() analyzer.Analyzer {
		return analyzer.Func(Analyze)
	})
}

// Analyze parses source as TypeScript and builds a FileAnalysis.
func Analyze(path string, source []byte) (any, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tstypescript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	fa := &model.FileAnalysis{Path: path, Language: string(model.LangTypeScript)}
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
	case "import_statement":
		e.fa.Imports = append(e.fa.Imports, strings.TrimSpace(e.text(node)))
	case "export_statement":
		if node.ChildByFieldName("source") != nil {
			e.fa.Imports = append(e.fa.Imports, strings.TrimSpace(e.text(node)))
			return
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			e.topLevel(node.NamedChild(i))
		}
	case "class_declaration", "class_expression":
		if t := e.buildClass(node); t != nil {
			e.fa.Types = append(e.fa.Types, *t)
		}
	case "interface_declaration":
		if t := e.buildInterface(node); t != nil {
			e.fa.Types = append(e.fa.Types, *t)
		}
	case "enum_declaration":
		if t := e.buildEnum(node); t != nil {
			e.fa.Types = append(e.fa.Types, *t)
		}
	case "function_declaration":
		if m := e.buildFunction(node, ""); m != nil {
			e.fa.Methods = append(e.fa.Methods, *m)
		}
	case "lexical_declaration", "variable_declaration":
		e.collectFileFields(node)
	case "expression_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if call := node.NamedChild(i); call != nil && call.Type() == "call_expression" {
				if mc := e.buildCall(call, "", nil); mc != nil {
					e.fa.MethodCalls = append(e.fa.MethodCalls, *mc)
				}
			}
		}
	}
}

func (e *extractor) collectFileFields(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl == nil || decl.Type() != "variable_declarator" {
			continue
		}
		idNode := decl.ChildByFieldName("name")
		if idNode == nil || idNode.Type() != "identifier" {
			continue
		}
		f := model.FieldInfo{Name: e.text(idNode), Visibility: model.VisPublic}
		if typeNode := decl.ChildByFieldName("type"); typeNode != nil {
			f.Type = strings.TrimPrefix(e.text(typeNode), ":")
			f.Type = strings.TrimSpace(f.Type)
		} else if value := decl.ChildByFieldName("value"); value != nil {
			f.Type = literalType(value)
		}
		e.fa.Fields = append(e.fa.Fields, f)
	}
}

func (e *extractor) buildInterface(node *sitter.Node) *model.TypeInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	t := &model.TypeInfo{Name: e.text(nameNode), Kind: model.KindInterface, Visibility: model.VisPublic}
	if heritage := treeutil.FirstChild(node, "extends_clause"); heritage != nil {
		for i := 0; i < int(heritage.NamedChildCount()); i++ {
			t.Implements = append(t.Implements, e.text(heritage.NamedChild(i)))
		}
	}
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
		case "property_signature":
			if nameN := member.ChildByFieldName("name"); nameN != nil {
				f := model.FieldInfo{Name: e.text(nameN), Visibility: model.VisPublic}
				if typeN := member.ChildByFieldName("type"); typeN != nil {
					f.Type = strings.TrimSpace(strings.TrimPrefix(e.text(typeN), ":"))
				}
				t.Fields = append(t.Fields, f)
			}
		case "method_signature":
			if m := e.buildMethodSignature(member); m != nil {
				t.Methods = append(t.Methods, *m)
			}
		}
	}
	return t
}

func (e *extractor) buildMethodSignature(node *sitter.Node) *model.MethodInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	m := &model.MethodInfo{Name: e.text(nameNode), Visibility: model.VisPublic}
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Parameters = e.buildParameters(params)
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		m.ReturnType = strings.TrimSpace(strings.TrimPrefix(e.text(rt), ":"))
	}
	return m
}

func (e *extractor) buildEnum(node *sitter.Node) *model.TypeInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	t := &model.TypeInfo{Name: e.text(nameNode), Kind: model.KindEnum, Visibility: model.VisPublic}
	body := node.ChildByFieldName("body")
	if body == nil {
		return t
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member != nil && member.Type() == "enum_assignment" {
			if nameN := member.ChildByFieldName("name"); nameN != nil {
				t.Fields = append(t.Fields, model.FieldInfo{Name: e.text(nameN), Visibility: model.VisPublic, Modifiers: []string{"const"}})
			}
		} else if member != nil && member.Type() == "property_identifier" {
			t.Fields = append(t.Fields, model.FieldInfo{Name: e.text(member), Visibility: model.VisPublic, Modifiers: []string{"const"}})
		}
	}
	return t
}

func (e *extractor) buildClass(node *sitter.Node) *model.TypeInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	t := &model.TypeInfo{Name: e.text(nameNode), Kind: model.KindClass, Visibility: model.VisPublic}
	if heritage := treeutil.FirstChild(node, "class_heritage"); heritage != nil {
		if ext := treeutil.FirstChild(heritage, "extends_clause"); ext != nil && ext.NamedChildCount() > 0 {
			t.Extends = e.text(ext.NamedChild(0))
		}
		if impl := treeutil.FirstChild(heritage, "implements_clause"); impl != nil {
			for i := 0; i < int(impl.NamedChildCount()); i++ {
				t.Implements = append(t.Implements, e.text(impl.NamedChild(i)))
			}
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		e.fillClassBody(t, body)
	}
	return t
}

func (e *extractor) fillClassBody(t *model.TypeInfo, body *sitter.Node) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member == nil {
			continue
		}
		switch member.Type() {
		case "method_definition":
			if m := e.buildMethodDefinition(member, t.Name); m != nil {
				t.Methods = append(t.Methods, *m)
			}
		case "public_field_definition", "field_definition", "private_field_definition":
			t.Fields = append(t.Fields, e.buildFieldDefinition(member))
		case "class_declaration", "class_expression":
			if nested := e.buildClass(member); nested != nil {
				t.Types = append(t.Types, *nested)
			}
		}
	}
}

func (e *extractor) buildFieldDefinition(node *sitter.Node) model.FieldInfo {
	f := model.FieldInfo{Visibility: e.fieldVisibility(node)}
	if prop := node.ChildByFieldName("property"); prop != nil {
		f.Name = e.text(prop)
	} else if name := node.ChildByFieldName("name"); name != nil {
		f.Name = e.text(name)
	}
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		f.Type = strings.TrimSpace(strings.TrimPrefix(e.text(typeNode), ":"))
	} else if value := node.ChildByFieldName("value"); value != nil {
		f.Type = literalType(value)
	}
	return f
}

// fieldVisibility reads the accessibility_modifier child's own text
// (public/private/protected), defaulting to public when none is present.
func (e *extractor) fieldVisibility(node *sitter.Node) model.Visibility {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c != nil && c.Type() == "accessibility_modifier" {
			return model.Visibility(e.text(c))
		}
	}
	if node.Type() == "private_field_definition" {
		return model.VisPrivate
	}
	return model.VisPublic
}

func (e *extractor) buildMethodDefinition(node *sitter.Node, enclosingType string) *model.MethodInfo {
	keyNode := node.ChildByFieldName("name")
	if keyNode == nil {
		return nil
	}
	m := &model.MethodInfo{Name: e.text(keyNode), Visibility: model.VisPublic}
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "static", "get", "set", "async":
			m.Modifiers = append(m.Modifiers, c.Type())
		case "accessibility_modifier":
			m.Visibility = model.Visibility(e.text(c))
		}
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Parameters = e.buildParameters(params)
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		m.ReturnType = strings.TrimSpace(strings.TrimPrefix(e.text(rt), ":"))
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
	m := &model.MethodInfo{Name: e.text(nameNode)}
	if params := node.ChildByFieldName("parameters"); params != nil {
		m.Parameters = e.buildParameters(params)
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		m.ReturnType = strings.TrimSpace(strings.TrimPrefix(e.text(rt), ":"))
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
		case "identifier", "required_parameter", "optional_parameter":
			name, typ := e.paramNameAndType(p)
			if name != "" {
				out = append(out, model.Parameter{Name: name, Type: typ})
			}
		case "rest_pattern":
			if p.NamedChildCount() > 0 {
				out = append(out, model.Parameter{Name: e.text(p.NamedChild(0))})
			}
		}
	}
	return out
}

func (e *extractor) paramNameAndType(p *sitter.Node) (string, string) {
	if p.Type() == "identifier" {
		return e.text(p), ""
	}
	pattern := p.ChildByFieldName("pattern")
	if pattern == nil {
		pattern = p
	}
	name := e.text(pattern)
	if pattern.Type() != "identifier" {
		if idN := treeutil.FirstChild(pattern, "identifier"); idN != nil {
			name = e.text(idN)
		}
	}
	typ := ""
	if typeNode := p.ChildByFieldName("type"); typeNode != nil {
		typ = strings.TrimSpace(strings.TrimPrefix(e.text(typeNode), ":"))
	}
	return name, typ
}

func (e *extractor) collectLocalsAndCalls(node *sitter.Node, enclosingType string, localVarTypes map[string]string, m *model.MethodInfo) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_declaration", "function_expression", "arrow_function", "method_definition", "class_declaration", "class_expression":
			continue
		case "lexical_declaration", "variable_declaration":
			e.recordLocalDeclarations(child, localVarTypes, m)
		case "call_expression":
			if mc := e.buildCall(child, enclosingType, localVarTypes); mc != nil {
				m.MethodCalls = append(m.MethodCalls, *mc)
			}
		}
		e.collectLocalsAndCalls(child, enclosingType, localVarTypes, m)
	}
}

func (e *extractor) recordLocalDeclarations(node *sitter.Node, localVarTypes map[string]string, m *model.MethodInfo) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl == nil || decl.Type() != "variable_declarator" {
			continue
		}
		idNode := decl.ChildByFieldName("name")
		if idNode == nil {
			continue
		}
		name := e.text(idNode)
		m.LocalVariables = append(m.LocalVariables, name)
		if value := decl.ChildByFieldName("value"); value != nil {
			if t := literalType(value); t != "" {
				localVarTypes[name] = t
			}
		}
	}
}

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
	case "member_expression":
		propNode := fn.ChildByFieldName("property")
		if propNode == nil {
			return nil
		}
		name = e.text(propNode)
		obj := fn.ChildByFieldName("object")
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
	case "this":
		return shared.ReceiverSelf, "this"
	case "identifier":
		if shared.IsSelfText(text) {
			return shared.ReceiverSelf, text
		}
		if shared.LooksLikeConstant(text) {
			return shared.ReceiverConstant, text
		}
		return shared.ReceiverIdentifier, text
	case "member_expression":
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
		if c := args.NamedChild(i); c != nil && c.Type() != "comment" {
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
	case "string", "template_string":
		return "string"
	case "number":
		return "number"
	case "true", "false":
		return "boolean"
	case "array":
		return "array"
	case "object":
		return "object"
	}
	return ""
}
