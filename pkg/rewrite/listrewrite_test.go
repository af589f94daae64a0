package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/rewrite"
	"github.com/yaklabco/treewrite/pkg/syntax"
)

func TestListRewrite_RejectsNonLists(t *testing.T) {
	t.Parallel()

	file := parse(t, "var a = 1;\n")
	store := rewrite.NewStore()

	_, err := rewrite.NewListRewrite(store, rewrite.NewRegistry(store), statements(file)[0], syntax.VariableInitializer)
	require.ErrorIs(t, err, rewrite.ErrInvalidArgument)

	_, err = rewrite.NewListRewrite(store, rewrite.NewRegistry(store), file.Root, syntax.BlockStatements)
	require.ErrorIs(t, err, rewrite.ErrInvalidArgument, "property not declared by program")
}

func TestListRewrite_RelativeInsertions(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "a;\nb;\n")
	lr := programList(t, rw)
	a, b := lr.Original()[0], lr.Original()[1]

	x := fragment(t, "x;", syntax.CategoryStatement)
	y := fragment(t, "y;", syntax.CategoryStatement)
	z := fragment(t, "z;", syntax.CategoryStatement)

	require.NoError(t, lr.InsertBefore(x, b))
	require.NoError(t, lr.InsertAfter(y, x))
	require.NoError(t, lr.InsertBefore(z, a))
	require.NoError(t, lr.Remove(a))

	assert.Equal(t, []*syntax.Node{z, x, y, b}, lr.Rewritten())
	assert.Equal(t, []*syntax.Node{a, b}, lr.Original(), "original list is never touched")

	err := lr.InsertAfter(fragment(t, "w;", syntax.CategoryStatement), fragment(t, "v;", syntax.CategoryStatement))
	require.ErrorIs(t, err, rewrite.ErrInvalidArgument)

	assert.Equal(t, "z;\nx;\ny;\nb;\n", result(t, rw))
}

func TestListRewrite_DropInsertion(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "a;\n")
	lr := programList(t, rw)

	x := fragment(t, "x;", syntax.CategoryStatement)
	require.NoError(t, lr.InsertLast(x))
	require.NoError(t, lr.Remove(x))

	assert.Equal(t, lr.Original(), lr.Rewritten())
	assert.Equal(t, "a;\n", result(t, rw))
}

func TestListRewrite_BindToPrevious(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bind bool
		want string
	}{
		{
			name: "indent of previous sibling",
			bind: true,
			want: "{\n    a;\n    x;\n        b;\n}\n",
		},
		{
			name: "indent of next sibling",
			bind: false,
			want: "{\n    a;\n        x;\n        b;\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rw := newRewriter(t, "{\n    a;\n        b;\n}\n")
			lr, err := rw.ListRewrite(statements(rw.File())[0], syntax.BlockStatements)
			require.NoError(t, err)
			lr.SetBindToPrevious(tt.bind)

			require.NoError(t, lr.InsertAfter(fragment(t, "x;", syntax.CategoryStatement), lr.Original()[0]))
			assert.Equal(t, tt.bind, rw.Store().IsInsertBoundToPrevious(lr.Rewritten()[1]))
			assert.Equal(t, tt.want, result(t, rw))
		})
	}
}

func TestListRewrite_MoveTargetRemovesEntries(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "a;\nb;\nc;\n")
	lr := programList(t, rw)
	items := lr.Original()

	placeholder, err := lr.CreateMoveTarget(items[0], items[1])
	require.NoError(t, err)
	assert.Equal(t, rewrite.CollapsePlaceholder, rw.Registry().Kind(placeholder))
	assert.Equal(t, []*syntax.Node{items[2]}, lr.Rewritten())
	assert.True(t, rw.Store().IsMoveSource(items[0]))
	assert.True(t, rw.Store().IsMoveSource(items[1]))

	_, err = lr.CreateMoveTarget(fragment(t, "q;", syntax.CategoryStatement), nil)
	require.ErrorIs(t, err, rewrite.ErrInvalidArgument)

	require.NoError(t, lr.InsertLast(placeholder))
	assert.Equal(t, "c;\na;\nb;\n", result(t, rw))
}

func TestListRewrite_RejectedMoveTargetRecordsNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, lr *rewrite.ListRewrite) []*syntax.Node
		first   int
		last    int
		wantErr error
		want    string
	}{
		{
			name: "entry already replaced",
			setup: func(t *testing.T, lr *rewrite.ListRewrite) []*syntax.Node {
				items := lr.Original()
				z := fragment(t, "z;", syntax.CategoryStatement)
				require.NoError(t, lr.Replace(items[2], z))
				return []*syntax.Node{items[0], items[1], z, items[3]}
			},
			first:   1,
			last:    2,
			wantErr: rewrite.ErrConflict,
			want:    "a;\nb;\nz;\nd;\n",
		},
		{
			name: "entry already removed",
			setup: func(t *testing.T, lr *rewrite.ListRewrite) []*syntax.Node {
				items := lr.Original()
				require.NoError(t, lr.Remove(items[1]))
				return []*syntax.Node{items[0], items[2], items[3]}
			},
			first:   0,
			last:    1,
			wantErr: rewrite.ErrConflict,
			want:    "a;\nc;\nd;\n",
		},
		{
			name: "reversed range",
			setup: func(_ *testing.T, lr *rewrite.ListRewrite) []*syntax.Node {
				return lr.Original()
			},
			first:   2,
			last:    0,
			wantErr: rewrite.ErrInvalidArgument,
			want:    "a;\nb;\nc;\nd;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rw := newRewriter(t, "a;\nb;\nc;\nd;\n")
			lr := programList(t, rw)
			items := lr.Original()
			wantList := tt.setup(t, lr)

			_, err := lr.CreateMoveTarget(items[tt.first], items[tt.last])
			require.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, wantList, lr.Rewritten())
			for _, item := range items {
				assert.False(t, rw.Store().IsMoveSource(item), "%v", item)
			}
			assert.Empty(t, rw.Registry().Placeholders())
			assert.Equal(t, tt.want, result(t, rw))
		})
	}
}

func TestListRewrite_MoveAfterRejectedMove(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "a;\nb;\nc;\nd;\n")
	lr := programList(t, rw)
	a, b, c, d := lr.Original()[0], lr.Original()[1], lr.Original()[2], lr.Original()[3]

	require.NoError(t, lr.Replace(c, fragment(t, "z;", syntax.CategoryStatement)))
	_, err := lr.CreateMoveTarget(b, c)
	require.ErrorIs(t, err, rewrite.ErrConflict)

	placeholder, err := lr.CreateMoveTarget(a, b)
	require.NoError(t, err)
	require.NoError(t, lr.InsertAfter(placeholder, d))

	_, err = lr.CreateMoveTarget(a, a)
	require.ErrorIs(t, err, rewrite.ErrConflict, "entries already moved out")

	assert.True(t, rw.Store().IsMoveSource(a))
	assert.True(t, rw.Store().IsMoveSource(b))
	assert.Equal(t, "z;\nd;\na;\nb;\n", result(t, rw))
}
