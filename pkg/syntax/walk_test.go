package syntax_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/parser"
)

const walkSource = "var a = 1;\nif (a) { f(a); } else { g(); }\n"

func parseWalkSource(t *testing.T) *syntax.File {
	t.Helper()
	file, err := parser.ParseFile("walk.tw", []byte(walkSource))
	require.NoError(t, err)
	return file
}

func TestWalk_PreOrder(t *testing.T) {
	t.Parallel()

	file := parseWalkSource(t)

	var visited []syntax.NodeKind
	err := syntax.Walk(file.Root, func(n *syntax.Node) error {
		visited = append(visited, n.Kind)
		return nil
	})
	require.NoError(t, err)

	expected := []syntax.NodeKind{
		syntax.KindProgram,
		syntax.KindVariableDeclaration, syntax.KindSimpleName, syntax.KindLiteral,
		syntax.KindIfStatement, syntax.KindSimpleName,
		syntax.KindBlock, syntax.KindExpressionStatement, syntax.KindMethodInvocation,
		syntax.KindSimpleName, syntax.KindSimpleName,
		syntax.KindBlock, syntax.KindExpressionStatement, syntax.KindMethodInvocation, syntax.KindSimpleName,
	}
	assert.Equal(t, expected, visited)
}

func TestWalk_StopsOnError(t *testing.T) {
	t.Parallel()

	file := parseWalkSource(t)
	stop := errors.New("stop")

	count := 0
	err := syntax.Walk(file.Root, func(_ *syntax.Node) error {
		count++
		if count == 3 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 3, count)

	assert.NoError(t, syntax.Walk(nil, func(_ *syntax.Node) error { return stop }))
}

func TestWalkWithContext_LeaveOrder(t *testing.T) {
	t.Parallel()

	file := parseWalkSource(t)
	decl := file.Root.List(syntax.ProgramStatements)[0]

	var events []string
	err := syntax.WalkWithContext(decl,
		func(n *syntax.Node) error {
			events = append(events, "enter "+n.Kind.String())
			return nil
		},
		func(n *syntax.Node) error {
			events = append(events, "leave "+n.Kind.String())
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"enter VariableDeclaration",
		"enter SimpleName", "leave SimpleName",
		"enter Literal", "leave Literal",
		"leave VariableDeclaration",
	}, events)
}

func TestFind(t *testing.T) {
	t.Parallel()

	file := parseWalkSource(t)

	calls := syntax.FindByKind(file.Root, syntax.KindMethodInvocation)
	require.Len(t, calls, 2)
	assert.Equal(t, "f(a)", string(file.Text(calls[0])))

	first := syntax.FindFirst(file.Root, func(n *syntax.Node) bool {
		return n.Kind == syntax.KindBlock
	})
	require.NotNil(t, first)
	assert.Equal(t, "{ f(a); }", string(file.Text(first)))

	assert.Nil(t, syntax.FindFirst(file.Root, func(n *syntax.Node) bool {
		return n.Kind == syntax.KindClassDeclaration
	}))
}

func TestCovering(t *testing.T) {
	t.Parallel()

	file := parseWalkSource(t)

	// Offset of "f" inside the then-block.
	offset := len("var a = 1;\nif (a) { ")
	node := syntax.Covering(file.Root, offset)
	require.NotNil(t, node)
	assert.Equal(t, syntax.KindSimpleName, node.Kind)
	assert.Equal(t, "f", node.Attr(syntax.SimpleNameIdentifier))
}
