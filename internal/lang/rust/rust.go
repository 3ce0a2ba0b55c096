// Package rust extracts a structural summary from a Rust source file.
//
// Rust has no free-standing type/method pair the way class-based languages
// do: a struct_item/enum_item declares the shape and separate impl_item
// blocks attach methods to it. This extractor follows tree-sitter-rust's
// own node vocabulary (struct_item, enum_item, trait_item, impl_item with
// a "type" field and an optional "trait" field, function_item,
// call_expression whose "function" field is a field_expression or
// scoped_identifier) and merges impl blocks into the TypeInfo they target
// by name, the closest idiomatic match to spec.md's type/method model.
package rust

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsrust "github.com/smacker/go-tree-sitter/rust"

	"github.com/oxhq/codeframe/internal/analyzer"
	"github.com/oxhq/codeframe/internal/lang/shared"
	"github.com/oxhq/codeframe/internal/model"
	"github.com/oxhq/codeframe/internal/registry"
	"github.com/oxhq/codeframe/internal/treeutil"
)

func init() {
	registry.Register(model.LangRust, "rust", func() analyzer.Analyzer {
		return analyzer.Func(Analyze)
	})
}

// Analyze parses source as Rust and builds a FileAnalysis.
func Analyze(path string, source []byte) (any, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tsrust.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	fa := &model.FileAnalysis{Path: path, Language: string(model.LangRust)}
	e := &extractor{source: source, fa: fa, types: map[string]*model.TypeInfo{}}
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		e.topLevel(root.NamedChild(i))
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		e.applyImpl(root.NamedChild(i))
	}
	for _, t := range e.order {
		fa.Types = append(fa.Types, *t)
	}
	model.SortMethodCalls(fa.MethodCalls)
	return fa, nil
}

type extractor struct {
	source []byte
	fa     *model.FileAnalysis
	types  map[string]*model.TypeInfo
	order  []*model.TypeInfo
}

func (e *extractor) text(n *sitter.Node) string { return treeutil.Text(n, e.source) }

func (e *extractor) topLevel(node *sitter.Node) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "use_declaration":
		e.fa.Imports = append(e.fa.Imports, strings.TrimSpace(e.text(node)))
	case "mod_item":
		if body := node.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				e.topLevel(body.NamedChild(i))
			}
		}
	case "struct_item":
		e.registerType(node, model.KindStruct)
	case "enum_item":
		e.registerType(node, model.KindEnum)
	case "trait_item":
		e.registerType(node, model.KindInterface)
	case "function_item":
		if m := e.buildFunction(node, ""); m != nil {
			e.fa.Methods = append(e.fa.Methods, *m)
		}
	}
}

func (e *extractor) registerType(node *sitter.Node, kind model.TypeKind) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := e.text(nameNode)
	t := &model.TypeInfo{Name: name, Kind: kind, Visibility: visibility(node, e)}
	if kind == model.KindEnum {
		if body := node.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				variant := body.NamedChild(i)
				if variant != nil && variant.Type() == "enum_variant" {
					if vn := variant.ChildByFieldName("name"); vn != nil {
						t.Fields = append(t.Fields, model.FieldInfo{Name: e.text(vn), Visibility: model.VisPublic, Modifiers: []string{"const"}})
					}
				}
			}
		}
	}
	if kind == model.KindStruct {
		if body := node.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				field := body.NamedChild(i)
				if field == nil || field.Type() != "field_declaration" {
					continue
				}
				fn := field.ChildByFieldName("name")
				if fn == nil {
					continue
				}
				fi := model.FieldInfo{Name: e.text(fn), Visibility: visibility(field, e)}
				if ft := field.ChildByFieldName("type"); ft != nil {
					fi.Type = e.text(ft)
				}
				t.Fields = append(t.Fields, fi)
			}
		}
	}
	if kind == model.KindInterface {
		if body := node.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				member := body.NamedChild(i)
				if member == nil || member.Type() != "function_signature_item" && member.Type() != "function_item" {
					continue
				}
				if m := e.buildFunction(member, name); m != nil {
					t.Methods = append(t.Methods, *m)
				}
			}
		}
	}
	e.types[name] = t
	e.order = append(e.order, t)
}

// applyImpl attaches each impl_item's methods to the TypeInfo registered
// for its "type" field, recording the "trait" field (if any) as an
// Implements entry.
func (e *extractor) applyImpl(node *sitter.Node) {
	if node == nil {
		return
	}
	if node.Type() != "impl_item" {
		if node.Type() == "mod_item" {
			if body := node.ChildByFieldName("body"); body != nil {
				for i := 0; i < int(body.NamedChildCount()); i++ {
					e.applyImpl(body.NamedChild(i))
				}
			}
		}
		return
	}
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	targetName := e.text(typeNode)
	t, ok := e.types[targetName]
	if !ok {
		t = &model.TypeInfo{Name: targetName, Kind: model.KindStruct, Visibility: model.VisPublic}
		e.types[targetName] = t
		e.order = append(e.order, t)
	}
	if traitNode := node.ChildByFieldName("trait"); traitNode != nil {
		t.Implements = append(t.Implements, e.text(traitNode))
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member == nil || member.Type() != "function_item" {
			continue
		}
		if m := e.buildFunction(member, targetName); m != nil {
			t.Methods = append(t.Methods, *m)
		}
	}
}

func (e *extractor) buildFunction(node *sitter.Node, enclosingType string) *model.MethodInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	m := &model.MethodInfo{Name: e.text(nameNode), Visibility: visibility(node, e)}
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
		switch p.Type() {
		case "parameter":
			nameNode := p.ChildByFieldName("pattern")
			if nameNode == nil {
				continue
			}
			param := model.Parameter{Name: e.text(nameNode)}
			if typeNode := p.ChildByFieldName("type"); typeNode != nil {
				param.Type = e.text(typeNode)
			}
			out = append(out, param)
		case "self_parameter":
			out = append(out, model.Parameter{Name: "self"})
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
		case "function_item", "impl_item", "struct_item", "trait_item":
			continue
		case "let_declaration":
			e.recordLocal(child, localVarTypes, m)
		case "call_expression":
			if mc := e.buildCall(child, enclosingType, localVarTypes); mc != nil {
				m.MethodCalls = append(m.MethodCalls, *mc)
			}
		}
		e.collectLocalsAndCalls(child, enclosingType, localVarTypes, m)
	}
}

func (e *extractor) recordLocal(node *sitter.Node, localVarTypes map[string]string, m *model.MethodInfo) {
	pattern := node.ChildByFieldName("pattern")
	if pattern == nil || pattern.Type() != "identifier" {
		return
	}
	name := e.text(pattern)
	m.LocalVariables = append(m.LocalVariables, name)
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		localVarTypes[name] = e.text(typeNode)
		return
	}
	if value := node.ChildByFieldName("value"); value != nil {
		if t := literalType(value); t != "" {
			localVarTypes[name] = t
		}
	}
}

// buildCall resolves a call_expression's "function" field: a bare
// identifier, a field_expression (instance.method()), or a
// scoped_identifier (Type::method() / module::function()).
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
	case "field_expression":
		fieldNode := fn.ChildByFieldName("field")
		if fieldNode == nil {
			return nil
		}
		name = e.text(fieldNode)
		obj := fn.ChildByFieldName("value")
		kind, receiverText = e.classifyReceiverNode(obj)
	case "scoped_identifier":
		nameNode := fn.ChildByFieldName("name")
		if nameNode == nil {
			return nil
		}
		name = e.text(nameNode)
		path := fn.ChildByFieldName("path")
		kind, receiverText = e.classifyReceiverNode(path)
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
	case "self":
		return shared.ReceiverSelf, "self"
	case "identifier":
		if text == "self" {
			return shared.ReceiverSelf, "self"
		}
		if shared.LooksLikeConstant(text) {
			return shared.ReceiverConstant, text
		}
		return shared.ReceiverIdentifier, text
	case "scoped_identifier":
		if shared.IsNamespacedConstant(text, "::") {
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
	return int(args.NamedChildCount())
}

func literalType(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "string_literal":
		return "string"
	case "integer_literal":
		return "integer"
	case "float_literal":
		return "float"
	case "boolean_literal":
		return "boolean"
	case "array_expression":
		return "array"
	}
	return ""
}

// visibility reports public for any node with a visibility_modifier
// (pub/pub(crate)/...) child, private otherwise, the Rust convention of
// privacy-by-default.
func visibility(node *sitter.Node, e *extractor) model.Visibility {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c != nil && c.Type() == "visibility_modifier" {
			return model.VisPublic
		}
	}
	return model.VisPrivate
}
