package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/syntax"
)

func name(id string) *syntax.Node {
	n := syntax.New(syntax.KindSimpleName)
	n.SetAttr(syntax.SimpleNameIdentifier, id)
	return n
}

func exprStmt(id string) *syntax.Node {
	n := syntax.New(syntax.KindExpressionStatement)
	n.SetChild(syntax.ExpressionStatementExpression, name(id))
	return n
}

func TestNew_IsSynthetic(t *testing.T) {
	t.Parallel()

	n := syntax.New(syntax.KindBlock)
	assert.False(t, n.HasRange())
	assert.Equal(t, syntax.Range{Start: -1, End: -1}, n.Range())
	assert.Equal(t, "Block[synthetic]", n.String())

	n.SetRange(4, 10)
	assert.True(t, n.HasRange())
	assert.Equal(t, 10, n.End())
	assert.Equal(t, "Block[4,10)", n.String())
}

func TestNode_SetChildMaintainsParent(t *testing.T) {
	t.Parallel()

	stmt := syntax.New(syntax.KindReturnStatement)
	first := name("a")
	stmt.SetChild(syntax.ReturnExpression, first)

	assert.Equal(t, stmt, first.Parent())
	assert.Equal(t, syntax.ReturnExpression, first.Location())

	second := name("b")
	stmt.SetChild(syntax.ReturnExpression, second)
	assert.Nil(t, first.Parent(), "replaced child is detached")
	assert.Equal(t, second, stmt.Child(syntax.ReturnExpression))

	stmt.SetChild(syntax.ReturnExpression, nil)
	assert.Nil(t, stmt.Child(syntax.ReturnExpression))
}

func TestNode_ListIsCopied(t *testing.T) {
	t.Parallel()

	block := syntax.New(syntax.KindBlock)
	block.Append(syntax.BlockStatements, exprStmt("a"), exprStmt("b"))

	items := block.List(syntax.BlockStatements)
	require.Len(t, items, 2)
	items[0] = nil

	assert.NotNil(t, block.List(syntax.BlockStatements)[0])
	assert.Equal(t, 2, block.Len(syntax.BlockStatements))
	assert.Len(t, block.Children(), 2)
}

func TestNode_UndeclaredPropertyPanics(t *testing.T) {
	t.Parallel()

	block := syntax.New(syntax.KindBlock)
	assert.Panics(t, func() {
		block.Child(syntax.IfThen)
	})
	assert.Panics(t, func() {
		block.Attr(syntax.BlockStatements)
	})
}

func TestNode_AncestryAndClearRanges(t *testing.T) {
	t.Parallel()

	block := syntax.New(syntax.KindBlock)
	stmt := exprStmt("x")
	block.Append(syntax.BlockStatements, stmt)
	block.SetRange(0, 10)
	stmt.SetRange(2, 4)

	inner := stmt.Child(syntax.ExpressionStatementExpression)
	assert.True(t, block.IsAncestorOf(inner))
	assert.False(t, inner.IsAncestorOf(block))
	assert.False(t, block.IsAncestorOf(block))
	assert.Equal(t, block, inner.Root())

	syntax.ClearRanges(block)
	assert.False(t, block.HasRange())
	assert.False(t, stmt.HasRange())
}

func TestProperties(t *testing.T) {
	t.Parallel()

	for _, kind := range syntax.Kinds() {
		for idx, prop := range syntax.PropertiesOf(kind) {
			assert.Equal(t, kind, prop.Owner)
			assert.Equal(t, idx, prop.Index())
			assert.True(t, syntax.Declares(kind, prop))

			found, ok := syntax.LookupProperty(kind, prop.Name)
			require.True(t, ok)
			assert.Same(t, prop, found)
		}
	}

	assert.False(t, syntax.Declares(syntax.KindBlock, syntax.IfThen))
	assert.Equal(t, "IfStatement.elseStatement", syntax.IfElse.String())
	assert.Equal(t, syntax.LayoutJoined, syntax.InvocationArguments.Layout)
	assert.True(t, syntax.IfThen.Mandatory)
	assert.False(t, syntax.IfElse.Mandatory)
}

func TestCategory_Accepts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category syntax.Category
		kind     syntax.NodeKind
		want     bool
	}{
		{syntax.CategoryStatement, syntax.KindReturnStatement, true},
		{syntax.CategoryStatement, syntax.KindFunctionDeclaration, false},
		{syntax.CategoryTopLevel, syntax.KindFunctionDeclaration, true},
		{syntax.CategoryTopLevel, syntax.KindBlock, true},
		{syntax.CategoryMember, syntax.KindVariableDeclaration, true},
		{syntax.CategoryMember, syntax.KindIfStatement, false},
		{syntax.CategoryExpression, syntax.KindLiteral, true},
		{syntax.CategoryExpression, syntax.KindSimpleType, false},
		{syntax.CategoryName, syntax.KindSimpleName, true},
		{syntax.CategoryNone, syntax.KindSimpleName, false},
	}

	for _, tt := range tests {
		t.Run(tt.category.String()+"/"+tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.category.Accepts(tt.kind))
		})
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, kind := range syntax.Kinds() {
		got, ok := syntax.ParseKind(kind.String())
		require.True(t, ok, kind.String())
		assert.Equal(t, kind, got)
	}

	_, ok := syntax.ParseKind("Unknown")
	assert.False(t, ok)
}
