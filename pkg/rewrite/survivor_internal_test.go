package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/treewrite/pkg/syntax"
)

func TestSurvivorPosition(t *testing.T) {
	t.Parallel()

	a, b, c := syntax.New(syntax.KindBlock), syntax.New(syntax.KindBlock), syntax.New(syntax.KindBlock)
	x := syntax.New(syntax.KindBlock)

	kept := func(n *syntax.Node) *NodeEvent { return &NodeEvent{original: n, value: n} }
	removed := func(n *syntax.Node) *NodeEvent { return &NodeEvent{original: n} }
	inserted := func(n *syntax.Node) *NodeEvent { return &NodeEvent{value: n} }

	tests := []struct {
		name    string
		entries []*NodeEvent
		index   int
		want    int
	}{
		{name: "empty list appends", entries: nil, index: 0, want: 0},
		{name: "negative index appends", entries: []*NodeEvent{kept(a), kept(b)}, index: -1, want: 2},
		{name: "first survivor", entries: []*NodeEvent{kept(a), kept(b)}, index: 0, want: 0},
		{name: "index equal to count appends", entries: []*NodeEvent{kept(a), kept(b)}, index: 2, want: 2},
		{name: "index past count appends", entries: []*NodeEvent{kept(a)}, index: 5, want: 1},
		{
			name:    "removed entries are skipped",
			entries: []*NodeEvent{removed(a), kept(b), kept(c)},
			index:   1,
			want:    2,
		},
		{
			name:    "insertion lands before the survivor, after removed ones",
			entries: []*NodeEvent{kept(a), removed(b), kept(c)},
			index:   1,
			want:    2,
		},
		{
			name:    "earlier insertions count as survivors",
			entries: []*NodeEvent{inserted(x), kept(a)},
			index:   1,
			want:    1,
		},
		{
			name:    "all removed appends",
			entries: []*NodeEvent{removed(a), removed(b)},
			index:   0,
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, survivorPosition(tt.entries, tt.index))
		})
	}
}

func TestReindent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "if (x) {\n    y;\n}", reindent("if (x) {\n    y;\n}", ""))
	assert.Equal(t, "if (x) {\n        y;\n    }", reindent("if (x) {\n    y;\n}", "    "))
	assert.Equal(t, "a\n\n\tb", reindent("a\n\nb", "\t"), "blank lines stay blank")
}

func TestDedent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "if (x) {\n    y;\n}", dedent("if (x) {\n        y;\n    }", 4, 4))
	assert.Equal(t, "a\n\tb\nc", dedent("a\n\t\tb\n\tc", 4, 4), "tabs count as tab width")
	assert.Equal(t, "a\nb", dedent("a\n  b", 4, 4), "shallower lines lose what they have")
	assert.Equal(t, 8, indentWidth("\t  \t", 4))
}
