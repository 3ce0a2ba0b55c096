package treeutil

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	tspython "github.com/smacker/go-tree-sitter/python"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePython(t *testing.T, source string) (*sitter.Node, []byte) {
	t.Helper()
	src := []byte(source)
	parser := sitter.NewParser()
	parser.SetLanguage(tspython.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.RootNode(), src
}

func TestFirstChild(t *testing.T) {
	root, _ := parsePython(t, "class Foo:\n    def bar(self):\n        pass\n")
	class := FirstChild(root, "class_definition")
	require.NotNil(t, class)
	assert.Nil(t, FirstChild(root, "does_not_exist"))
	assert.Nil(t, FirstChild(nil, "anything"))
}

func TestAllChildrenAndDescendants(t *testing.T) {
	root, _ := parsePython(t, "def a():\n    pass\n\ndef b():\n    pass\n")
	top := AllChildren(root, "function_definition")
	assert.Len(t, top, 2)

	descendants := AllDescendants(root, "identifier")
	assert.GreaterOrEqual(t, len(descendants), 2)
	assert.Empty(t, AllDescendants(nil, "identifier"))
}

func TestText(t *testing.T) {
	root, src := parsePython(t, "x = 1\n")
	assignment := FirstChild(FirstChild(root, "expression_statement"), "assignment")
	require.NotNil(t, assignment)
	assert.Equal(t, "x = 1", Text(assignment, src))
	assert.Equal(t, "", Text(nil, src))
}

func TestFieldName(t *testing.T) {
	root, _ := parsePython(t, "class Foo:\n    pass\n")
	class := FirstChild(root, "class_definition")
	require.NotNil(t, class)
	found := false
	for i := 0; i < int(class.ChildCount()); i++ {
		if FieldName(class, i) == "name" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, "", FieldName(class, -1))
	assert.Equal(t, "", FieldName(nil, 0))
}
