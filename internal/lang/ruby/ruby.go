// Package ruby extracts a structural summary from a Ruby source file.
//
// Grounded on the tree-sitter-ruby node vocabulary demonstrated in
// other_examples' mind-palace Ruby parser (class/module/method/
// singleton_method/call/assignment, the "receiver"/"method"/"arguments"/
// "name"/"body"/"superclass" field names) and on spec.md §4.4's
// visibility-cursor, mixin, DSL-annotation and accessor rules, which have
// no teacher analogue and are implemented directly from the spec text.
package ruby

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsruby "github.com/smacker/go-tree-sitter/ruby"

	"github.com/oxhq/codeframe/internal/analyzer"
	"github.com/oxhq/codeframe/internal/lang/shared"
	"github.com/oxhq/codeframe/internal/model"
	"github.com/oxhq/codeframe/internal/registry"
	"github.com/oxhq/codeframe/internal/treeutil"
)

func init() {
	registry.Register(model.LangRuby, "ruby", func() analyzer.Analyzer {
		return analyzer.Func(Analyze)
	})
}

// Analyze parses source as Ruby and builds a FileAnalysis.
func Analyze(path string, source []byte) (any, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tsruby.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	fa := &model.FileAnalysis{Path: path, Language: string(model.LangRuby)}
	root := tree.RootNode()

	e := &extractor{source: source, fa: fa}
	e.collectImportsAndTopLevelCalls(root)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if t := e.topLevelType(child); t != nil {
			fa.Types = append(fa.Types, *t)
		}
	}
	model.SortMethodCalls(fa.MethodCalls)
	return fa, nil
}

type extractor struct {
	source []byte
	fa     *model.FileAnalysis
}

func (e *extractor) text(n *sitter.Node) string { return treeutil.Text(n, e.source) }

// collectImportsAndTopLevelCalls walks the whole tree (not gated to
// top-level) for require/require_relative, recording them as imports and
// excluding them from file-level method calls, per spec.md §4.4.
func (e *extractor) collectImportsAndTopLevelCalls(root *sitter.Node) {
	var walk func(n *sitter.Node, inType bool)
	walk = func(n *sitter.Node, inType bool) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "call":
				method := e.callMethodName(child)
				if method == "require" || method == "require_relative" {
					e.fa.Imports = append(e.fa.Imports, strings.TrimSpace(e.text(child)))
					continue // not a file-level call
				}
				if !inType {
					if mc := e.buildMethodCall(child, "", nil); mc != nil {
						e.fa.MethodCalls = append(e.fa.MethodCalls, *mc)
					}
				}
			case "class", "module":
				walk(child, true)
				continue
			}
			walk(child, inType)
		}
	}
	walk(root, false)
}

// topLevelType builds a TypeInfo for a direct program-level class/module
// node, or nil if node isn't one.
func (e *extractor) topLevelType(node *sitter.Node) *model.TypeInfo {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "class":
		t := e.buildClass(node)
		return t
	case "module":
		t := e.buildModule(node)
		return t
	}
	return nil
}

func (e *extractor) buildClass(node *sitter.Node) *model.TypeInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	t := &model.TypeInfo{Name: e.text(nameNode), Kind: model.KindClass, Visibility: model.VisPublic}
	if sc := node.ChildByFieldName("superclass"); sc != nil {
		t.Extends = strings.TrimPrefix(e.text(sc), "< ")
		t.Extends = strings.TrimSpace(t.Extends)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		e.fillBody(t, body)
	}
	return t
}

func (e *extractor) buildModule(node *sitter.Node) *model.TypeInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	t := &model.TypeInfo{Name: e.text(nameNode), Kind: model.KindModule, Visibility: model.VisPublic}
	if body := node.ChildByFieldName("body"); body != nil {
		e.fillBody(t, body)
	}
	return t
}

// fillBody walks one class/module body in source order, tracking the
// visibility cursor described by spec.md §4.4 and dispatching each
// statement kind to its builder.
func (e *extractor) fillBody(t *model.TypeInfo, body *sitter.Node) {
	visibility := model.VisPublic
	methodIndexByName := map[string][]int{}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt == nil {
			continue
		}
		switch stmt.Type() {
		case "method":
			m := e.buildMethod(stmt, t.Name)
			if m == nil {
				continue
			}
			m.Visibility = visibility
			t.Methods = append(t.Methods, *m)
			methodIndexByName[m.Name] = append(methodIndexByName[m.Name], len(t.Methods)-1)
		case "singleton_method":
			m := e.buildMethod(stmt, t.Name)
			if m != nil {
				m.Visibility = model.VisPublic
				t.Methods = append(t.Methods, *m)
			}
		case "class":
			if nested := e.buildClass(stmt); nested != nil {
				t.Types = append(t.Types, *nested)
			}
		case "module":
			if nested := e.buildModule(stmt); nested != nil {
				t.Types = append(t.Types, *nested)
			}
		case "assignment":
			e.collectConstant(stmt, t)
		case "call":
			newVis, inlineMethod := e.handleTypeBodyCall(stmt, t, methodIndexByName)
			if inlineMethod != nil {
				inlineMethod.Visibility = visibility
				t.Methods = append(t.Methods, *inlineMethod)
				methodIndexByName[inlineMethod.Name] = append(methodIndexByName[inlineMethod.Name], len(t.Methods)-1)
			}
			if newVis != "" {
				visibility = newVis
			}
		case "identifier":
			// A bare public/protected/private parses as an identifier, not a call.
			switch name := e.text(stmt); name {
			case "public", "protected", "private":
				visibility = model.Visibility(name)
			}
		case "alias":
			if stmt.NamedChildCount() >= 2 {
				newName := strings.TrimPrefix(e.text(stmt.NamedChild(0)), ":")
				oldName := strings.TrimPrefix(e.text(stmt.NamedChild(1)), ":")
				t.Annotations = append(t.Annotations, "@alias("+newName+"="+oldName+")")
			}
		case "instance_variable", "class_variable":
			e.collectDirectVar(stmt, t)
		}
	}

	// instance/class variables can also appear inside assignment left sides
	// scanned above via collectConstant's sibling handling; direct bare
	// variable references (not assignments) are covered by the case above.
}

// handleTypeBodyCall recognizes the Ruby class/module-body call forms
// spec.md §4.4 names: visibility changes, symbol-list retroactive
// visibility, inline "private def ... end", mixins, attr_* accessors,
// Rails DSL annotations, and alias_method (the alias keyword and a bare
// visibility keyword are not call nodes; fillBody handles those). Returns a
// non-empty newVisibility
// when the cursor should change, and/or an inline method when the call
// wrapped a method definition directly.
func (e *extractor) handleTypeBodyCall(call *sitter.Node, t *model.TypeInfo, methodIndexByName map[string][]int) (newVisibility model.Visibility, inlineMethod *model.MethodInfo) {
	method := e.callMethodName(call)
	args := call.ChildByFieldName("arguments")

	switch method {
	case "public", "protected", "private":
		vis := model.Visibility(method)
		if args == nil || args.NamedChildCount() == 0 {
			return vis, nil // bare form: changes the cursor going forward
		}
		// Inline "private def foo; end": first argument is a method node.
		if first := args.NamedChild(0); first != nil && first.Type() == "method" {
			m := e.buildMethod(first, t.Name)
			return "", m
		}
		// Symbol-list form: private :a, :b — retroactive visibility.
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			name := e.symbolName(arg)
			if name == "" {
				continue
			}
			for _, idx := range methodIndexByName[name] {
				t.Methods[idx].Visibility = vis
			}
		}
		return "", nil
	case "include", "extend", "prepend":
		if args != nil && args.NamedChildCount() > 0 {
			if first := args.NamedChild(0); first != nil {
				t.Mixins = append(t.Mixins, e.text(first))
			}
		}
	case "attr_reader":
		e.addAccessorProps(t, args, true, false)
	case "attr_writer":
		e.addAccessorProps(t, args, false, true)
	case "attr_accessor":
		e.addAccessorProps(t, args, true, true)
	case "has_many", "belongs_to", "has_one":
		if target := e.firstArgText(args); target != "" {
			t.Annotations = append(t.Annotations, "@"+method+"("+target+")")
		}
	case "validates":
		if target := e.firstArgText(args); target != "" {
			t.Annotations = append(t.Annotations, "@validates("+target+")")
		}
	case "scope":
		if name := e.firstArgText(args); name != "" {
			t.Annotations = append(t.Annotations, "@scope("+name+")")
		}
	case "alias_method":
		if args != nil && args.NamedChildCount() >= 2 {
			newName := e.symbolName(args.NamedChild(0))
			oldName := e.symbolName(args.NamedChild(1))
			if newName != "" && oldName != "" {
				t.Annotations = append(t.Annotations, "@alias("+newName+"="+oldName+")")
			}
		}
	default:
		if strings.HasPrefix(method, "before_") || strings.HasPrefix(method, "after_") || strings.HasPrefix(method, "around_") {
			t.Annotations = append(t.Annotations, "@"+method)
		}
	}
	return "", nil
}

func (e *extractor) addAccessorProps(t *model.TypeInfo, args *sitter.Node, get, set bool) {
	if args == nil {
		return
	}
	var accessors []model.Accessor
	if get {
		accessors = append(accessors, model.Accessor{Kind: model.AccessorGet})
	}
	if set {
		accessors = append(accessors, model.Accessor{Kind: model.AccessorSet})
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		name := e.symbolName(args.NamedChild(i))
		if name == "" {
			continue
		}
		t.Properties = append(t.Properties, model.PropertyInfo{
			Name:       name,
			Visibility: model.VisPublic,
			Accessors:  accessors,
		})
	}
}

func (e *extractor) symbolName(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "simple_symbol", "symbol":
		return strings.TrimPrefix(e.text(n), ":")
	case "string":
		return shared.TrimImport(e.text(n))
	}
	return ""
}

func (e *extractor) firstArgText(args *sitter.Node) string {
	if args == nil || args.NamedChildCount() == 0 {
		return ""
	}
	first := args.NamedChild(0)
	if name := e.symbolName(first); name != "" {
		return name
	}
	return e.text(first)
}

// buildMethod builds a MethodInfo for a "method" or "singleton_method" node.
func (e *extractor) buildMethod(node *sitter.Node, enclosingType string) *model.MethodInfo {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	m := &model.MethodInfo{Name: e.text(nameNode)}
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
		case "optional_parameter", "keyword_parameter":
			if nameNode := p.ChildByFieldName("name"); nameNode != nil {
				out = append(out, model.Parameter{Name: e.text(nameNode)})
			}
		case "splat_parameter", "hash_splat_parameter":
			if nameNode := p.ChildByFieldName("name"); nameNode != nil {
				out = append(out, model.Parameter{Name: e.text(nameNode)})
			}
		case "block_parameter":
			if nameNode := p.ChildByFieldName("name"); nameNode != nil {
				out = append(out, model.Parameter{Name: "&" + e.text(nameNode)})
			}
		}
	}
	return out
}

// collectLocalsAndCalls walks a method body recording local-variable
// literal-type assignments and call expressions, stopping recursion at
// nested method/class/module boundaries (their own calls belong to them).
func (e *extractor) collectLocalsAndCalls(node *sitter.Node, enclosingType string, localVarTypes map[string]string, m *model.MethodInfo) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "method", "singleton_method", "class", "module":
			continue // owned by its own builder
		case "assignment":
			e.recordLocalAssignment(child, localVarTypes)
			if m.LocalVariables == nil || !contains(m.LocalVariables, e.assignmentName(child)) {
				if name := e.assignmentName(child); name != "" {
					m.LocalVariables = append(m.LocalVariables, name)
				}
			}
		case "call":
			method := e.callMethodName(child)
			if method == "require" || method == "require_relative" {
				continue
			}
			if mc := e.buildMethodCall(child, enclosingType, localVarTypes); mc != nil {
				m.MethodCalls = append(m.MethodCalls, *mc)
			}
		}
		e.collectLocalsAndCalls(child, enclosingType, localVarTypes, m)
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func (e *extractor) assignmentName(node *sitter.Node) string {
	left := node.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return ""
	}
	return e.text(left)
}

func (e *extractor) recordLocalAssignment(node *sitter.Node, localVarTypes map[string]string) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "identifier" {
		return
	}
	if t := literalType(right); t != "" {
		localVarTypes[e.text(left)] = t
	}
}

// collectConstant records a type-body-level constant assignment
// (UPPERCASE = value); instance/class-variable assignments at the same
// level are recorded with conservative visibility per spec.md §4.4.
func (e *extractor) collectConstant(node *sitter.Node, t *model.TypeInfo) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if left == nil {
		return
	}
	switch left.Type() {
	case "constant":
		f := model.FieldInfo{Name: e.text(left), Visibility: model.VisPublic, Modifiers: []string{"const"}}
		if right != nil {
			f.Type = literalType(right)
		}
		t.Fields = append(t.Fields, f)
	case "instance_variable":
		f := model.FieldInfo{Name: e.text(left), Visibility: model.VisPrivate}
		if right != nil {
			f.Type = literalType(right)
		}
		t.Fields = append(t.Fields, f)
	case "class_variable":
		f := model.FieldInfo{Name: e.text(left), Visibility: model.VisPrivate}
		if right != nil {
			f.Type = literalType(right)
		}
		t.Fields = append(t.Fields, f)
	}
}

func (e *extractor) collectDirectVar(node *sitter.Node, t *model.TypeInfo) {
	// A bare instance/class-variable reference at type-body level (not an
	// assignment) still establishes the field if not already recorded.
	name := e.text(node)
	for _, f := range t.Fields {
		if f.Name == name {
			return
		}
	}
	t.Fields = append(t.Fields, model.FieldInfo{Name: name, Visibility: model.VisPrivate})
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
	case "array":
		return "array"
	case "hash":
		return "hash"
	}
	return ""
}

// callMethodName resolves the method-name field with a positional
// fallback, per spec.md §4.4.
func (e *extractor) callMethodName(call *sitter.Node) string {
	if n := call.ChildByFieldName("method"); n != nil {
		return e.text(n)
	}
	for i := 0; i < int(call.NamedChildCount()); i++ {
		c := call.NamedChild(i)
		if c != nil && c.Type() == "identifier" {
			return e.text(c)
		}
	}
	return ""
}

func (e *extractor) firstStringArg(call *sitter.Node) string {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg != nil && arg.Type() == "string" {
			return shared.TrimImport(e.text(arg))
		}
	}
	return ""
}

// buildMethodCall resolves receiver/name/argument-count per spec.md §4.4's
// table, returning nil only when no method name could be resolved.
func (e *extractor) buildMethodCall(call *sitter.Node, enclosingType string, localVarTypes map[string]string) *model.MethodCall {
	name := e.callMethodName(call)
	if name == "" {
		return nil
	}
	receiver := call.ChildByFieldName("receiver")
	kind, text := e.classifyReceiverNode(receiver)
	objType, objName := shared.ClassifyReceiver(kind, text, enclosingType, localVarTypes)

	args := call.ChildByFieldName("arguments")
	return &model.MethodCall{
		MethodName:     name,
		ObjectType:     objType,
		ObjectName:     objName,
		ParameterCount: int(argCount(args)),
	}
}

func (e *extractor) classifyReceiverNode(receiver *sitter.Node) (shared.ReceiverKind, string) {
	if receiver == nil {
		return shared.ReceiverNone, ""
	}
	text := e.text(receiver)
	switch receiver.Type() {
	case "self":
		return shared.ReceiverSelf, text
	case "identifier":
		if shared.IsSelfText(text) {
			return shared.ReceiverSelf, text
		}
		return shared.ReceiverIdentifier, text
	case "constant":
		return shared.ReceiverConstant, text
	case "scope_resolution":
		return shared.ReceiverNamespacedConstant, text
	case "instance_variable", "class_variable", "global_variable":
		return shared.ReceiverVariable, text
	case "call":
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
