package rewrite_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/rewrite"
	"github.com/yaklabco/treewrite/pkg/syntax"
)

// result computes the edits of rw and applies them.
func result(t *testing.T, rw *rewrite.Rewriter) string {
	t.Helper()

	out, edits, err := rw.Result()
	require.NoError(t, err)
	require.NoError(t, edit.DetectConflicts(edits))
	return string(out)
}

func newRewriter(t *testing.T, src string) *rewrite.Rewriter {
	t.Helper()

	return rewrite.NewRewriter(parse(t, src), rewrite.DefaultOptions())
}

func programList(t *testing.T, rw *rewrite.Rewriter) *rewrite.ListRewrite {
	t.Helper()

	lr, err := rw.ListRewrite(rw.File().Root, syntax.ProgramStatements)
	require.NoError(t, err)
	return lr
}

func TestComputeEdits_NoOp(t *testing.T) {
	t.Parallel()

	src := "func f(a: int) {\n    return a;\n}\n"
	rw := newRewriter(t, src)

	edits, err := rw.Rewrite()
	require.NoError(t, err)
	assert.Empty(t, edits)
	assert.Equal(t, src, string(edit.Apply(rw.File().Content, edits)))
}

func TestComputeEdits_SingleReplace(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "var a = 1;\nb;\n")
	decl := statements(rw.File())[0]

	_, err := rw.Store().MarkReplace(decl, syntax.VariableInitializer, fragment(t, "2+3", syntax.CategoryExpression))
	require.NoError(t, err)

	edits, err := rw.Rewrite()
	require.NoError(t, err)
	want := []edit.TextEdit{{Offset: 8, Length: 1, Text: "2 + 3"}}
	if diff := cmp.Diff(want, edits); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeEdits_ScenarioRemoveMiddleLine(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "a;\nb;\nc;\n")
	require.NoError(t, programList(t, rw).Remove(statements(rw.File())[1]))

	assert.Equal(t, "a;\nc;\n", result(t, rw))
}

func TestComputeEdits_ScenarioInsertAfterLast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		list func(file *syntax.File) (*syntax.Node, *syntax.Property)
		want string
	}{
		{
			name: "top level",
			src:  "a;\nb;\nc;\n",
			list: func(file *syntax.File) (*syntax.Node, *syntax.Property) {
				return file.Root, syntax.ProgramStatements
			},
			want: "a;\nb;\nc;\nd;\n",
		},
		{
			name: "indented like the previous entry",
			src:  "{\n    a;\n    b;\n    c;\n}\n",
			list: func(file *syntax.File) (*syntax.Node, *syntax.Property) {
				return statements(file)[0], syntax.BlockStatements
			},
			want: "{\n    a;\n    b;\n    c;\n    d;\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rw := newRewriter(t, tt.src)
			parent, prop := tt.list(rw.File())
			lr, err := rw.ListRewrite(parent, prop)
			require.NoError(t, err)

			items := lr.Original()
			require.NoError(t, lr.InsertAfter(fragment(t, "d;", syntax.CategoryStatement), items[len(items)-1]))
			assert.Equal(t, tt.want, result(t, rw))
		})
	}
}

func TestComputeEdits_ScenarioReplaceCondition(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "if (x) {}\n")
	ifStmt := statements(rw.File())[0]

	_, err := rw.Store().MarkReplace(ifStmt, syntax.IfExpression, fragment(t, "x && y", syntax.CategoryExpression))
	require.NoError(t, err)

	assert.Equal(t, "if (x && y) {}\n", result(t, rw))
}

func TestComputeEdits_InsertionOrderIndependence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		list     func(file *syntax.File) (*syntax.Node, *syntax.Property)
		category syntax.Category
		first    string
		second   string
		want     string
	}{
		{
			name: "block statements",
			src:  "{}\n",
			list: func(file *syntax.File) (*syntax.Node, *syntax.Property) {
				return statements(file)[0], syntax.BlockStatements
			},
			category: syntax.CategoryStatement,
			first:    "x;",
			second:   "y;",
			want:     "{\n    x;\n    y;\n}\n",
		},
		{
			name: "call arguments",
			src:  "f();\n",
			list: func(file *syntax.File) (*syntax.Node, *syntax.Property) {
				return statements(file)[0].Child(syntax.ExpressionStatementExpression), syntax.InvocationArguments
			},
			category: syntax.CategoryExpression,
			first:    "a",
			second:   "b",
			want:     "f(a, b);\n",
		},
	}

	for _, tt := range tests {
		for _, reversed := range []bool{false, true} {
			name := tt.name
			if reversed {
				name += " reversed"
			}
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				rw := newRewriter(t, tt.src)
				parent, prop := tt.list(rw.File())
				lr, err := rw.ListRewrite(parent, prop)
				require.NoError(t, err)

				first := fragment(t, tt.first, tt.category)
				second := fragment(t, tt.second, tt.category)
				if reversed {
					require.NoError(t, lr.InsertAt(second, 1))
					require.NoError(t, lr.InsertAt(first, 0))
				} else {
					require.NoError(t, lr.InsertAt(first, 0))
					require.NoError(t, lr.InsertAt(second, 1))
				}

				assert.Equal(t, []*syntax.Node{first, second}, lr.Rewritten())
				assert.Equal(t, tt.want, result(t, rw))
			})
		}
	}
}

func TestComputeEdits_CopyFidelity(t *testing.T) {
	t.Parallel()

	src := "func f() {\n    if (x) {\n        g(); // keep\n    }\n}\n"
	rw := newRewriter(t, src)
	fn := statements(rw.File())[0]
	ifStmt := fn.Child(syntax.FunctionBody).List(syntax.BlockStatements)[0]

	placeholder, err := rw.Registry().CreateCopyPlaceholder(ifStmt)
	require.NoError(t, err)
	require.NoError(t, programList(t, rw).InsertLast(placeholder))
	assert.Equal(t, 1, rw.Store().CopyCount(ifStmt))

	assert.Equal(t, src+"if (x) {\n    g(); // keep\n}\n", result(t, rw))
}

func TestComputeEdits_CopyCarriesNestedEdits(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "f(a);\ng();\n")
	stmts := statements(rw.File())
	arg := stmts[0].Child(syntax.ExpressionStatementExpression).List(syntax.InvocationArguments)[0]

	_, err := rw.Store().SetAttribute(arg, syntax.SimpleNameIdentifier, "b")
	require.NoError(t, err)
	placeholder, err := rw.Registry().CreateCopyPlaceholder(stmts[0])
	require.NoError(t, err)
	require.NoError(t, programList(t, rw).InsertLast(placeholder))

	assert.Equal(t, "f(b);\ng();\nf(b);\n", result(t, rw))
}

func TestComputeEdits_MoveCompleteness(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "a;\nb;\nc;\n")
	stmts := statements(rw.File())
	lr := programList(t, rw)

	placeholder, err := lr.CreateMoveTarget(stmts[0], stmts[0])
	require.NoError(t, err)
	require.NoError(t, lr.InsertAfter(placeholder, stmts[2]))
	assert.True(t, rw.Store().IsMoveSource(stmts[0]))

	assert.Equal(t, "b;\nc;\na;\n", result(t, rw))
}

func TestComputeEdits_MoveRangeWithComments(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "a;\n// about b\nb; // trailing\nc;\nd;\n")
	stmts := statements(rw.File())
	lr := programList(t, rw)

	placeholder, err := lr.CreateMoveTarget(stmts[1], stmts[2])
	require.NoError(t, err)
	require.NoError(t, lr.InsertAfter(placeholder, stmts[3]))

	assert.Equal(t, "a;\nd;\n// about b\nb; // trailing\nc;\n", result(t, rw))
}

func TestComputeEdits_MoveIntoFreshNode(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "f();\n")
	stmt := statements(rw.File())[0]

	moved, err := rw.Registry().CreateMovePlaceholder(stmt)
	require.NoError(t, err)

	body := syntax.New(syntax.KindBlock)
	body.Append(syntax.BlockStatements, moved)
	guard := syntax.New(syntax.KindIfStatement)
	guard.SetChild(syntax.IfExpression, fragment(t, "ready", syntax.CategoryExpression))
	guard.SetChild(syntax.IfThen, body)

	lr := programList(t, rw)
	require.NoError(t, lr.Replace(stmt, guard))

	assert.Equal(t, "if (ready) {\n    f();\n}\n", result(t, rw))
}

func TestComputeEdits_Determinism(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "class C {\n    var a: int = 1;\n    func m(x: int) {\n        x = x + 1;\n    }\n}\n")
	class := statements(rw.File())[0]
	members := class.List(syntax.ClassMembers)

	_, err := rw.Store().MarkRemove(members[0], syntax.VariableType, nil)
	require.NoError(t, err)
	lr, err := rw.ListRewrite(class, syntax.ClassMembers)
	require.NoError(t, err)
	require.NoError(t, lr.InsertFirst(fragment(t, "var b = 2;", syntax.CategoryMember)))
	params, err := rw.ListRewrite(members[1], syntax.FunctionParameters)
	require.NoError(t, err)
	require.NoError(t, params.InsertLast(fragment(t, "y: int", syntax.CategoryParameter)))

	first, err := rw.Rewrite()
	require.NoError(t, err)
	second, err := rw.Rewrite()
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	require.NoError(t, edit.DetectConflicts(first))

	assert.Equal(t,
		"class C {\n    var b = 2;\n    var a = 1;\n    func m(x: int, y: int) {\n        x = x + 1;\n    }\n}\n",
		string(edit.Apply(rw.File().Content, first)))
}

func TestComputeEdits_Slots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		edit func(t *testing.T, store *rewrite.Store, stmt *syntax.Node)
		want string
	}{
		{
			name: "remove else",
			src:  "if (x) {} else { y; }\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				_, err := store.MarkRemove(stmt, syntax.IfElse, nil)
				require.NoError(t, err)
			},
			want: "if (x) {}\n",
		},
		{
			name: "insert else",
			src:  "if (x) {}\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				_, err := store.MarkInsert(stmt, syntax.IfElse, fragment(t, "{ y; }", syntax.CategoryStatement))
				require.NoError(t, err)
			},
			want: "if (x) {} else {\n    y;\n}\n",
		},
		{
			name: "remove initializer",
			src:  "var a: int = 1;\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				_, err := store.MarkRemove(stmt, syntax.VariableInitializer, nil)
				require.NoError(t, err)
			},
			want: "var a: int;\n",
		},
		{
			name: "insert initializer",
			src:  "var a;\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				_, err := store.MarkInsert(stmt, syntax.VariableInitializer, fragment(t, "f(1)", syntax.CategoryExpression))
				require.NoError(t, err)
			},
			want: "var a = f(1);\n",
		},
		{
			name: "insert type",
			src:  "var a = 1;\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				_, err := store.MarkInsert(stmt, syntax.VariableType, fragment(t, "int", syntax.CategoryType))
				require.NoError(t, err)
			},
			want: "var a: int = 1;\n",
		},
		{
			name: "remove type",
			src:  "var a: int = 1;\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				_, err := store.MarkRemove(stmt, syntax.VariableType, nil)
				require.NoError(t, err)
			},
			want: "var a = 1;\n",
		},
		{
			name: "insert return value",
			src:  "return;\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				_, err := store.MarkInsert(stmt, syntax.ReturnExpression, fragment(t, "x", syntax.CategoryExpression))
				require.NoError(t, err)
			},
			want: "return x;\n",
		},
		{
			name: "remove return value",
			src:  "return a + b;\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				_, err := store.MarkRemove(stmt, syntax.ReturnExpression, nil)
				require.NoError(t, err)
			},
			want: "return;\n",
		},
		{
			name: "insert return type",
			src:  "func f(a: int) {}\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				_, err := store.MarkInsert(stmt, syntax.FunctionReturnType, fragment(t, "int", syntax.CategoryType))
				require.NoError(t, err)
			},
			want: "func f(a: int): int {}\n",
		},
		{
			name: "remove return type",
			src:  "func f(): int {}\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				_, err := store.MarkRemove(stmt, syntax.FunctionReturnType, nil)
				require.NoError(t, err)
			},
			want: "func f() {}\n",
		},
		{
			name: "insert receiver",
			src:  "f();\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				call := stmt.Child(syntax.ExpressionStatementExpression)
				_, err := store.MarkInsert(call, syntax.InvocationExpression, fragment(t, "obj", syntax.CategoryExpression))
				require.NoError(t, err)
			},
			want: "obj.f();\n",
		},
		{
			name: "remove receiver",
			src:  "obj . f();\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				call := stmt.Child(syntax.ExpressionStatementExpression)
				_, err := store.MarkRemove(call, syntax.InvocationExpression, nil)
				require.NoError(t, err)
			},
			want: "f();\n",
		},
		{
			name: "replace operator",
			src:  "a + b;\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				infix := stmt.Child(syntax.ExpressionStatementExpression)
				_, err := store.SetAttribute(infix, syntax.InfixOperator, "-")
				require.NoError(t, err)
			},
			want: "a - b;\n",
		},
		{
			name: "replace prefix operator",
			src:  "!ok;\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				prefix := stmt.Child(syntax.ExpressionStatementExpression)
				_, err := store.SetAttribute(prefix, syntax.PrefixOperator, "-")
				require.NoError(t, err)
			},
			want: "-ok;\n",
		},
		{
			name: "rename import",
			src:  "import a.b;\n",
			edit: func(t *testing.T, store *rewrite.Store, stmt *syntax.Node) {
				_, err := store.SetAttribute(stmt, syntax.ImportName, "c.d.e")
				require.NoError(t, err)
			},
			want: "import c.d.e;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rw := newRewriter(t, tt.src)
			tt.edit(t, rw.Store(), statements(rw.File())[0])
			assert.Equal(t, tt.want, result(t, rw))
		})
	}
}

func TestComputeEdits_LineListEdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		edit func(t *testing.T, lr *rewrite.ListRewrite)
		want string
	}{
		{
			name: "only statement on the brace line",
			src:  "{ a; }\n",
			edit: func(t *testing.T, lr *rewrite.ListRewrite) {
				require.NoError(t, lr.Remove(lr.Original()[0]))
			},
			want: "{ }\n",
		},
		{
			name: "only statement on its own line",
			src:  "{\n    a;\n}\n",
			edit: func(t *testing.T, lr *rewrite.ListRewrite) {
				require.NoError(t, lr.Remove(lr.Original()[0]))
			},
			want: "{\n}\n",
		},
		{
			name: "adjacent removals",
			src:  "{\n    a;\n    b;\n    c;\n    d;\n}\n",
			edit: func(t *testing.T, lr *rewrite.ListRewrite) {
				items := lr.Original()
				require.NoError(t, lr.Remove(items[1]))
				require.NoError(t, lr.Remove(items[2]))
			},
			want: "{\n    a;\n    d;\n}\n",
		},
		{
			name: "removal with comments",
			src:  "{\n    a;\n    // about b\n    b; // trailing\n    c;\n}\n",
			edit: func(t *testing.T, lr *rewrite.ListRewrite) {
				require.NoError(t, lr.Remove(lr.Original()[1]))
			},
			want: "{\n    a;\n    c;\n}\n",
		},
		{
			name: "shared line keeps neighbours",
			src:  "{\n    a; b; c;\n}\n",
			edit: func(t *testing.T, lr *rewrite.ListRewrite) {
				require.NoError(t, lr.Remove(lr.Original()[1]))
			},
			want: "{\n    a; c;\n}\n",
		},
		{
			name: "last on shared line",
			src:  "{\n    a; b;\n}\n",
			edit: func(t *testing.T, lr *rewrite.ListRewrite) {
				require.NoError(t, lr.Remove(lr.Original()[1]))
			},
			want: "{\n    a;\n}\n",
		},
		{
			name: "insert before first",
			src:  "{\n    a;\n}\n",
			edit: func(t *testing.T, lr *rewrite.ListRewrite) {
				require.NoError(t, lr.InsertFirst(fragment(t, "x;", syntax.CategoryStatement)))
			},
			want: "{\n    x;\n    a;\n}\n",
		},
		{
			name: "replace removed entry in place",
			src:  "{\n    a;\n    b;\n    c;\n}\n",
			edit: func(t *testing.T, lr *rewrite.ListRewrite) {
				items := lr.Original()
				require.NoError(t, lr.InsertAfter(fragment(t, "x;", syntax.CategoryStatement), items[1]))
				require.NoError(t, lr.Remove(items[1]))
			},
			want: "{\n    a;\n    x;\n    c;\n}\n",
		},
		{
			name: "replace everything",
			src:  "{ a; }\n",
			edit: func(t *testing.T, lr *rewrite.ListRewrite) {
				require.NoError(t, lr.Remove(lr.Original()[0]))
				require.NoError(t, lr.InsertLast(fragment(t, "x;", syntax.CategoryStatement)))
			},
			want: "{\n    x;\n}\n",
		},
		{
			name: "multi-line replacement is reindented",
			src:  "{\n    a;\n    b;\n}\n",
			edit: func(t *testing.T, lr *rewrite.ListRewrite) {
				require.NoError(t, lr.Replace(lr.Original()[1], fragment(t, "if (x) { y; }", syntax.CategoryStatement)))
			},
			want: "{\n    a;\n    if (x) {\n        y;\n    }\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rw := newRewriter(t, tt.src)
			lr, err := rw.ListRewrite(statements(rw.File())[0], syntax.BlockStatements)
			require.NoError(t, err)
			tt.edit(t, lr)
			assert.Equal(t, tt.want, result(t, rw))
		})
	}
}

func TestComputeEdits_JoinedListEdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		remove []int
		insert string
		want   string
	}{
		{name: "remove first", remove: []int{0}, want: "f(b, c);\n"},
		{name: "remove middle", remove: []int{1}, want: "f(a, c);\n"},
		{name: "remove last", remove: []int{2}, want: "f(a, b);\n"},
		{name: "remove trailing run", remove: []int{1, 2}, want: "f(a);\n"},
		{name: "remove all", remove: []int{0, 1, 2}, want: "f();\n"},
		{name: "replace all", remove: []int{0, 1, 2}, insert: "z", want: "f(z);\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rw := newRewriter(t, "f(a, b, c);\n")
			call := statements(rw.File())[0].Child(syntax.ExpressionStatementExpression)
			lr, err := rw.ListRewrite(call, syntax.InvocationArguments)
			require.NoError(t, err)

			items := lr.Original()
			for _, idx := range tt.remove {
				require.NoError(t, lr.Remove(items[idx]))
			}
			if tt.insert != "" {
				require.NoError(t, lr.InsertLast(fragment(t, tt.insert, syntax.CategoryExpression)))
			}
			assert.Equal(t, tt.want, result(t, rw))
		})
	}
}

func TestComputeEdits_TopLevelContainer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		clear bool
		want  string
	}{
		{name: "empty file", src: "", want: "x;\n"},
		{name: "missing final newline", src: "a;", want: "a;\nx;"},
		{name: "everything removed", src: "a;\nb;\n", clear: true, want: "x;\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rw := newRewriter(t, tt.src)
			lr := programList(t, rw)
			if tt.clear {
				for _, item := range lr.Original() {
					require.NoError(t, lr.Remove(item))
				}
			}
			require.NoError(t, lr.InsertLast(fragment(t, "x;", syntax.CategoryStatement)))
			assert.Equal(t, tt.want, result(t, rw))
		})
	}
}

func TestComputeEdits_StringPlaceholder(t *testing.T) {
	t.Parallel()

	rw := newRewriter(t, "func f() {\n    a;\n}\n")
	body := statements(rw.File())[0].Child(syntax.FunctionBody)

	text, err := rw.Registry().CreateStringPlaceholder("if (debug) {\n    log(a);\n}", syntax.KindIfStatement)
	require.NoError(t, err)
	lr, err := rw.ListRewrite(body, syntax.BlockStatements)
	require.NoError(t, err)
	require.NoError(t, lr.InsertLast(text))

	assert.Equal(t, "func f() {\n    a;\n    if (debug) {\n        log(a);\n    }\n}\n", result(t, rw))
}

func TestComputeEdits_DetachComments(t *testing.T) {
	t.Parallel()

	opts := rewrite.DefaultOptions()
	opts.DetachComments = true
	rw := rewrite.NewRewriter(parse(t, "a;\nb; // note\nc;\n"), opts)
	require.NoError(t, programList(t, rw).Remove(statements(rw.File())[1]))

	assert.Equal(t, "a;\n// note\nc;\n", result(t, rw))
}

func TestComputeEdits_ConsistencyErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		setup func(t *testing.T, rw *rewrite.Rewriter)
	}{
		{
			name: "move source left in place",
			src:  "a;\nb;\n",
			setup: func(t *testing.T, rw *rewrite.Rewriter) {
				stmts := statements(rw.File())
				moved, err := rw.Registry().CreateMovePlaceholder(stmts[0])
				require.NoError(t, err)
				require.NoError(t, programList(t, rw).InsertAfter(moved, stmts[1]))
			},
		},
		{
			name: "move target never inserted",
			src:  "a;\nb;\n",
			setup: func(t *testing.T, rw *rewrite.Rewriter) {
				lr := programList(t, rw)
				_, err := lr.CreateMoveTarget(lr.Original()[0], lr.Original()[0])
				require.NoError(t, err)
			},
		},
		{
			name: "moved twice",
			src:  "a;\nb;\n",
			setup: func(t *testing.T, rw *rewrite.Rewriter) {
				stmts := statements(rw.File())
				lr := programList(t, rw)
				first, err := lr.CreateMoveTarget(stmts[0], stmts[0])
				require.NoError(t, err)
				second, err := rw.Registry().CreateMovePlaceholder(stmts[0])
				require.NoError(t, err)
				require.NoError(t, lr.InsertLast(first))
				require.NoError(t, lr.InsertLast(second))
			},
		},
		{
			name: "insertion inside removed text",
			src:  "{\n    a;\n}\n",
			setup: func(t *testing.T, rw *rewrite.Rewriter) {
				block := statements(rw.File())[0]
				require.NoError(t, programList(t, rw).Remove(block))
				lr, err := rw.ListRewrite(block, syntax.BlockStatements)
				require.NoError(t, err)
				require.NoError(t, lr.InsertLast(fragment(t, "x;", syntax.CategoryStatement)))
			},
		},
		{
			name: "copy of itself",
			src:  "{\n    a;\n}\n",
			setup: func(t *testing.T, rw *rewrite.Rewriter) {
				block := statements(rw.File())[0]
				copied, err := rw.Registry().CreateCopyPlaceholder(block)
				require.NoError(t, err)
				lr, err := rw.ListRewrite(block, syntax.BlockStatements)
				require.NoError(t, err)
				require.NoError(t, lr.InsertLast(copied))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rw := newRewriter(t, tt.src)
			tt.setup(t, rw)

			edits, err := rw.Rewrite()
			require.ErrorIs(t, err, rewrite.ErrConsistency)
			assert.Nil(t, edits)
		})
	}
}

func TestComputeEdits_InvalidArguments(t *testing.T) {
	t.Parallel()

	file := parse(t, "a;\n")
	store := rewrite.NewStore()

	_, err := rewrite.ComputeEdits(nil, store, nil, rewrite.Options{})
	require.ErrorIs(t, err, rewrite.ErrInvalidArgument)

	_, err = rewrite.ComputeEdits(file, nil, nil, rewrite.Options{})
	require.ErrorIs(t, err, rewrite.ErrInvalidArgument)

	_, err = rewrite.ComputeEdits(file, store, rewrite.NewRegistry(rewrite.NewStore()), rewrite.Options{})
	require.ErrorIs(t, err, rewrite.ErrInvalidArgument)
}

func TestComputeEdits_IndentUnitFollowsFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		unit   string
		target int
		code   string
		want   string
	}{
		{
			name:   "nested block in tab indented file",
			src:    "func f() {\n\ta;\n}\n",
			target: 0,
			code:   "if (x) { y; z; }",
			want:   "func f() {\n\ta;\n\tif (x) {\n\t\ty;\n\t\tz;\n\t}\n}\n",
		},
		{
			name:   "empty body in tab indented file",
			src:    "func f() {\n\ta;\n}\nfunc g() {}\n",
			target: 1,
			code:   "x;",
			want:   "func f() {\n\ta;\n}\nfunc g() {\n\tx;\n}\n",
		},
		{
			name:   "empty body in two space file",
			src:    "func f() {\n  a;\n}\nfunc g() {}\n",
			target: 1,
			code:   "x;",
			want:   "func f() {\n  a;\n}\nfunc g() {\n  x;\n}\n",
		},
		{
			name:   "configured unit wins",
			src:    "func f() {\n\ta;\n}\nfunc g() {}\n",
			unit:   "    ",
			target: 1,
			code:   "x;",
			want:   "func f() {\n\ta;\n}\nfunc g() {\n    x;\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := rewrite.DefaultOptions()
			opts.IndentUnit = tt.unit
			rw := rewrite.NewRewriter(parse(t, tt.src), opts)

			body := statements(rw.File())[tt.target].Child(syntax.FunctionBody)
			lr, err := rw.ListRewrite(body, syntax.BlockStatements)
			require.NoError(t, err)
			require.NoError(t, lr.InsertLast(fragment(t, tt.code, syntax.CategoryStatement)))

			assert.Equal(t, tt.want, result(t, rw))
		})
	}
}

func TestDetectIndentUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "tabs", src: "func f() {\n\ta;\n}\n", want: "\t"},
		{name: "two spaces", src: "{\n  a;\n  {\n    b;\n  }\n}\n", want: "  "},
		{name: "outermost wins", src: "{\n    {\n\t\tb;\n    }\n}\n", want: "    "},
		{name: "argument on its own line", src: "f(a,\n  b);\n", want: "  "},
		{name: "flat file", src: "a;\nb;\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, rewrite.DetectIndentUnit(parse(t, tt.src)))
		})
	}
}
