// Package python extracts a structural summary from a Python source file.
//
// Node-type vocabulary grounded on
// termfx-morfx/providers/python/config.go's alias map (function_definition/
// async_function_definition, class_definition, assignment, import_statement/
// import_from_statement, and the name/body/parameters/superclasses field
// names tree-sitter-python exposes).
package python

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tspython "github.com/smacker/go-tree-sitter/python"

	"github.com/oxhq/codeframe/internal/analyzer"
	"github.com/oxhq/codeframe/internal/lang/shared"
	"github.com/oxhq/codeframe/internal/model"
	"github.com/oxhq/codeframe/internal/registry"
	"github.com/oxhq/codeframe/internal/treeutil"
)

func init() {
	registry.Register(model.LangPython, "python", func() analyzer.Analyzer {
		return analyzer.Func(Analyze)
	})
}

// Analyze parses source as Python and builds a FileAnalysis.
func Analyze(path string, source []byte) (any, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tspython.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	fa := &model.FileAnalysis{Path: path, Language: string(model.LangPython)}
	e := &extractor{source: source, fa: fa}
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		e.topLevel(unwrapDecorated(root.NamedChild(i)))
	}
	model.SortMethodCalls(fa.MethodCalls)
	return fa, nil
}

// unwrapDecorated returns the function/class a decorated_definition wraps,
// or node itself if it isn't one.
func unwrapDecorated(node *sitter.Node) *sitter.Node {
	if node != nil && node.Type() == "decorated_definition" {
		if def := node.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return node
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
	case "import_statement", "import_from_statement":
		e.fa.Imports = append(e.fa.Imports, strings.TrimSpace(e.text(node)))
	case "class_definition":
		if t := e.buildClass(node); t != nil {
			e.fa.Types = append(e.fa.Types, *t)
		}
	case "function_definition", "async_function_definition":
		if m := e.buildFunction(node, ""); m != nil {
			e.fa.Methods = append(e.fa.Methods, *m)
		}
	case "expression_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "assignment":
				e.collectFileField(child)
			case "call":
				if mc := e.buildCall(child, "", nil); mc != nil {
					e.fa.MethodCalls = append(e.fa.MethodCalls, *mc)
				}
			}
		}
	}
}

func (e *extractor) collectFileField(node *sitter.Node) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || left.Type() != "identifier" {
		return
	}
	f := model.FieldInfo{Name: e.text(left), Visibility: model.VisPublic}
	if right != nil {
		f.Type = literalType(right)
	}
	e.fa.Fields = append(e.fa.Fields, f)
}

func (e *extractor) buildClass(node *sitter.Node) *model.TypeInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	t := &model.TypeInfo{Name: e.text(nameNode), Kind: model.KindClass, Visibility: model.VisPublic}
	if superclasses := node.ChildByFieldName("superclasses"); superclasses != nil {
		for i := 0; i < int(superclasses.NamedChildCount()); i++ {
			base := superclasses.NamedChild(i)
			if base == nil {
				continue
			}
			if t.Extends == "" {
				t.Extends = e.text(base)
			} else {
				t.Implements = append(t.Implements, e.text(base))
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
		stmt := unwrapDecorated(body.NamedChild(i))
		if stmt == nil {
			continue
		}
		switch stmt.Type() {
		case "function_definition", "async_function_definition":
			if m := e.buildFunction(stmt, t.Name); m != nil {
				m.Visibility = pythonVisibility(m.Name)
				t.Methods = append(t.Methods, *m)
			}
		case "class_definition":
			if nested := e.buildClass(stmt); nested != nil {
				t.Types = append(t.Types, *nested)
			}
		case "expression_statement":
			for j := 0; j < int(stmt.NamedChildCount()); j++ {
				if assign := stmt.NamedChild(j); assign != nil && assign.Type() == "assignment" {
					e.collectClassField(assign, t)
				}
			}
		}
	}
}

func (e *extractor) collectClassField(node *sitter.Node, t *model.TypeInfo) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || left.Type() != "identifier" {
		return
	}
	name := e.text(left)
	f := model.FieldInfo{Name: name, Visibility: pythonVisibility(name)}
	if right != nil {
		f.Type = literalType(right)
	}
	t.Fields = append(t.Fields, f)
}

// pythonVisibility applies the conventional underscore-prefix rule: a
// single leading underscore is protected, a double leading underscore
// (without a trailing dunder) is private, otherwise public.
func pythonVisibility(name string) model.Visibility {
	switch {
	case strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__"):
		return model.VisPrivate
	case strings.HasPrefix(name, "_"):
		return model.VisProtected
	default:
		return model.VisPublic
	}
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
		case "identifier":
			out = append(out, model.Parameter{Name: e.text(p)})
		case "typed_parameter":
			name, typ := "", ""
			if p.NamedChildCount() > 0 {
				if id := p.NamedChild(0); id != nil && id.Type() == "identifier" {
					name = e.text(id)
				}
			}
			if typeNode := p.ChildByFieldName("type"); typeNode != nil {
				typ = e.text(typeNode)
			}
			if name != "" {
				out = append(out, model.Parameter{Name: name, Type: typ})
			}
		case "default_parameter", "typed_default_parameter":
			if nameNode := p.ChildByFieldName("name"); nameNode != nil {
				out = append(out, model.Parameter{Name: e.text(nameNode)})
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			if p.NamedChildCount() > 0 {
				out = append(out, model.Parameter{Name: e.text(p.NamedChild(0))})
			}
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
		case "function_definition", "async_function_definition", "class_definition":
			continue
		case "assignment":
			e.recordLocalAssignment(child, localVarTypes, m)
		case "call":
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
	if left == nil || left.Type() != "identifier" {
		return
	}
	name := e.text(left)
	m.LocalVariables = append(m.LocalVariables, name)
	if right != nil {
		if t := literalType(right); t != "" {
			localVarTypes[name] = t
		}
	}
}

// buildCall resolves a "call" node's function/arguments. The function
// field is either a bare identifier or an "attribute" (object.attribute).
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
	case "attribute":
		attrNode := fn.ChildByFieldName("attribute")
		if attrNode == nil {
			return nil
		}
		name = e.text(attrNode)
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
	case "identifier":
		if shared.IsSelfText(text) || text == "cls" {
			return shared.ReceiverSelf, text
		}
		if shared.LooksLikeConstant(text) {
			return shared.ReceiverConstant, text
		}
		return shared.ReceiverIdentifier, text
	case "attribute":
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
	case "string":
		return "string"
	case "integer":
		return "integer"
	case "float":
		return "float"
	case "true", "false":
		return "boolean"
	case "list":
		return "array"
	case "dictionary":
		return "hash"
	}
	return ""
}
