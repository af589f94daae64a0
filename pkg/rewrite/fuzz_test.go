package rewrite_test

import (
	"testing"

	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/rewrite"
	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/parser"
)

type listSlot struct {
	parent *syntax.Node
	prop   *syntax.Property
}

func listSlots(root *syntax.Node) []listSlot {
	var slots []listSlot
	queue := []*syntax.Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, prop := range n.Properties() {
			if prop.IsList() {
				slots = append(slots, listSlot{n, prop})
			}
		}
		queue = append(queue, n.Children()...)
	}
	return slots
}

func within(removed []*syntax.Node, n *syntax.Node) bool {
	for _, r := range removed {
		if r == n || r.IsAncestorOf(n) {
			return true
		}
	}
	return false
}

func FuzzComputeEdits(f *testing.F) {
	f.Add("a;\nb;\nc;\n", []byte{0, 1, 0, 0x80})
	f.Add("func f(a: int, b: int) {\n    g(a, b);\n}\n", []byte{1, 0, 3, 0x81, 2, 0x80})
	f.Add("class C {\n    var a: int;\n    var b = 1;\n}\n", []byte{1, 0, 1, 0x81, 0, 0x80})
	f.Add("func f() {\n\ta;\n\t// note\n\tb;\n}\n", []byte{2, 1, 2, 0x80, 2, 0x81})
	f.Add("if (x) {\r\n    y();\r\n}\r\n", []byte{1, 0, 2, 0x80})

	fragments := map[syntax.Category]string{
		syntax.CategoryTopLevel:   "q;",
		syntax.CategoryMember:     "var q;",
		syntax.CategoryStatement:  "q;",
		syntax.CategoryExpression: "q",
		syntax.CategoryParameter:  "q: int",
	}

	f.Fuzz(func(t *testing.T, src string, ops []byte) {
		if len(src) > 4096 || len(ops) > 64 {
			return
		}
		file, err := parser.ParseFile("fuzz.tw", []byte(src))
		if err != nil {
			return
		}
		slots := listSlots(file.Root)
		if len(slots) == 0 {
			return
		}

		rw := rewrite.NewRewriter(file, rewrite.DefaultOptions())
		var removed, touched []*syntax.Node
		for idx := 0; idx+1 < len(ops); idx += 2 {
			slot := slots[int(ops[idx])%len(slots)]
			if within(removed, slot.parent) {
				continue
			}
			lr, err := rw.ListRewrite(slot.parent, slot.prop)
			if err != nil {
				t.Fatalf("ListRewrite(%v): %v", slot.prop, err)
			}

			insert, pick := ops[idx+1]&0x80 != 0, int(ops[idx+1]&0x7f)
			if insert {
				code, ok := fragments[slot.prop.Accepts]
				if !ok {
					continue
				}
				node, err := parser.ParseFragment(code, slot.prop.Accepts)
				if err != nil {
					t.Fatalf("ParseFragment(%q): %v", code, err)
				}
				if pick%2 == 0 {
					err = lr.InsertFirst(node)
				} else {
					err = lr.InsertLast(node)
				}
				if err != nil {
					t.Fatalf("insert into %v: %v", slot.prop, err)
				}
				touched = append(touched, slot.parent)
				continue
			}

			items := lr.Original()
			if len(items) == 0 {
				continue
			}
			entry := items[pick%len(items)]
			if containsTouched(entry, touched) {
				continue
			}
			if err := lr.Remove(entry); err != nil {
				t.Fatalf("remove %v: %v", entry, err)
			}
			removed = append(removed, entry)
			touched = append(touched, slot.parent)
		}

		out, edits, err := rw.Result()
		if err != nil {
			t.Fatalf("Result: %v\ninput:\n%s", err, src)
		}
		prepared, err := edit.Prepare(edits, len(file.Content))
		if err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		if got := edit.Apply(file.Content, prepared); string(got) != string(out) {
			t.Fatalf("applied edits differ from result:\n%q\n%q", got, out)
		}
		if _, err := parser.ParseFile("fuzz.tw", out); err != nil {
			t.Fatalf("rewritten source does not parse: %v\ninput:\n%s\noutput:\n%s", err, src, out)
		}
	})
}

// containsTouched reports whether a list inside entry has already been edited.
func containsTouched(entry *syntax.Node, touched []*syntax.Node) bool {
	for _, parent := range touched {
		if entry.IsAncestorOf(parent) {
			return true
		}
	}
	return false
}
