package rewrite

import (
	"fmt"
	"strings"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/scanner"
)

// visitList handles one list property of an original node.
func (a *analyzer) visitList(parent *syntax.Node, prop *syntax.Property) error {
	ev := a.store.lookupList(parent, prop)
	if ev == nil || ev.Kind() == Unchanged {
		for _, item := range parent.List(prop) {
			if err := a.visit(item); err != nil {
				return err
			}
		}
		return nil
	}

	entries := ev.Entries()
	a.log.Debug("list changed", logging.FieldProperty, prop.String(), logging.FieldEvents, len(entries))
	if prop.Layout == syntax.LayoutJoined {
		return a.joinedList(parent, entries)
	}
	return a.lineList(parent, entries)
}

// visitSurvivors visits kept originals and rewrites replaced ones in place.
// Insertions sharing an offset keep generation order, so callers emit
// insertions in front of a survivor before this and the rest after it.
func (a *analyzer) visitSurvivors(entries []*NodeEvent) error {
	for _, entry := range entries {
		original := entry.Original()
		if original == nil {
			continue
		}
		switch entry.Kind() {
		case Unchanged:
			if err := a.visit(original); err != nil {
				return err
			}
		case Replaced:
			text, err := a.serialize(entry.New(), a.lineIndent(original.Start))
			if err != nil {
				return err
			}
			a.out.Replace(original.Start, original.End(), text)
			a.consume(entry)
		case Inserted, Removed, ChildrenChanged:
		}
	}
	return nil
}

// survivors returns the nearest original entries around position pos that
// keep a place in the rewritten list, or nil when there is none.
func survivors(entries []*NodeEvent, pos int) (*syntax.Node, *syntax.Node) {
	var prev, next *syntax.Node
	for idx := pos - 1; idx >= 0; idx-- {
		if isSurvivor(entries[idx]) {
			prev = entries[idx].Original()
			break
		}
	}
	for idx := pos + 1; idx < len(entries); idx++ {
		if isSurvivor(entries[idx]) {
			next = entries[idx].Original()
			break
		}
	}
	return prev, next
}

func isSurvivor(entry *NodeEvent) bool {
	return entry.Original() != nil && entry.New() != nil
}

// removedRuns groups consecutive removed originals, ignoring insertions in between.
func removedRuns(entries []*NodeEvent) [][]*syntax.Node {
	var (
		runs [][]*syntax.Node
		run  []*syntax.Node
	)
	for _, entry := range entries {
		if entry.Original() == nil {
			continue
		}
		if entry.Kind() == Removed {
			run = append(run, entry.Original())
			continue
		}
		if len(run) > 0 {
			runs = append(runs, run)
			run = nil
		}
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

func countSurvivors(entries []*NodeEvent) int {
	count := 0
	for _, entry := range entries {
		if isSurvivor(entry) {
			count++
		}
	}
	return count
}

// lineList rewrites a list that holds one entry per line.
func (a *analyzer) lineList(parent *syntax.Node, entries []*NodeEvent) error {
	var inserted []int
	originals := 0
	for pos, entry := range entries {
		if entry.Original() != nil {
			originals++
		}
		if entry.Kind() == Inserted {
			inserted = append(inserted, pos)
		}
	}

	if countSurvivors(entries) == 0 && len(inserted) > 0 && parent.Kind != syntax.KindProgram {
		return a.fillContainer(parent, entries, inserted)
	}

	// Entries ahead of the first survivor go in front of it.
	var rest []int
	for _, pos := range inserted {
		prev, next := survivors(entries, pos)
		if prev != nil || next == nil {
			rest = append(rest, pos)
			continue
		}
		value := entries[pos].New()
		text, err := a.serialize(value, a.insertIndent(parent, value, prev, next))
		if err != nil {
			return err
		}
		start, _ := a.extendedRange(next)
		a.out.Insert(start, text+a.delim+a.lineIndent(next.Start))
		a.consume(entries[pos])
	}

	if err := a.visitSurvivors(entries); err != nil {
		return err
	}

	firstRemoval := -1
	for _, run := range removedRuns(entries) {
		start, end := a.lineRemoval(run)
		if firstRemoval < 0 {
			firstRemoval = start
		}
		a.out.Delete(start, end)
	}

	for idx, pos := range rest {
		entry := entries[pos]
		prev, next := survivors(entries, pos)
		indent := a.insertIndent(parent, entry.New(), prev, next)
		text, err := a.serialize(entry.New(), indent)
		if err != nil {
			return err
		}

		switch {
		case prev != nil:
			_, end := a.extendedRange(prev)
			a.out.Insert(end, a.delim+indent+text)
		case originals > 0:
			a.out.Insert(firstRemoval, text+a.delim)
		default:
			content := a.file.Content
			if idx == 0 && len(content) > 0 && content[len(content)-1] != '\n' {
				text = a.delim + text
			}
			a.out.Insert(len(content), text+a.delim)
		}
		a.consume(entry)
	}
	return nil
}

// insertIndent chooses the indentation of an inserted line entry.
func (a *analyzer) insertIndent(parent, value, prev, next *syntax.Node) string {
	switch {
	case prev != nil && a.store.IsInsertBoundToPrevious(value):
		return a.lineIndent(prev.Start)
	case next != nil:
		return a.lineIndent(next.Start)
	case prev != nil:
		return a.lineIndent(prev.Start)
	case parent.Kind == syntax.KindProgram:
		return ""
	}
	return a.lineIndent(parent.Start) + a.indent
}

// lineRemoval returns the range deleted for a run of adjacent removed entries.
// Lines left blank are removed with their line break; otherwise the
// horizontal whitespace separating the run from its neighbours goes with it.
func (a *analyzer) lineRemoval(run []*syntax.Node) (int, int) {
	start, _ := a.extendedRange(run[0])
	_, end := a.extendedRange(run[len(run)-1])
	content := a.file.Content

	before, after := a.blankBefore(start), a.blankAfter(end)
	switch {
	case before && after:
		return a.file.Line(start).StartOffset, a.file.Line(end).EndOffset
	case after:
		for start > 0 && isSpace(content[start-1]) {
			start--
		}
		return start, a.file.Line(end).NewlineStart
	default:
		for end < len(content) && isSpace(content[end]) {
			end++
		}
		return start, end
	}
}

// fillContainer writes the insertions of a braced list that keeps no original entry.
func (a *analyzer) fillContainer(parent *syntax.Node, entries []*NodeEvent, inserted []int) error {
	open, closing, err := a.braces(parent)
	if err != nil {
		return err
	}
	outer := a.lineIndent(open.Start)
	inner := outer + a.indent

	var texts []string
	for _, pos := range inserted {
		text, err := a.serialize(entries[pos].New(), inner)
		if err != nil {
			return err
		}
		texts = append(texts, a.delim+inner+text)
		a.consume(entries[pos])
	}

	if a.interiorBlank(open.End, closing.Start, entries) {
		a.out.Replace(open.End, closing.Start, strings.Join(texts, "")+a.delim+outer)
		return nil
	}

	for _, run := range removedRuns(entries) {
		start, end := a.lineRemoval(run)
		a.out.Delete(start, end)
	}
	a.out.Insert(open.End, strings.Join(texts, ""))
	return nil
}

// interiorBlank reports whether [start, end) holds only whitespace once the
// removed entries are cut out.
func (a *analyzer) interiorBlank(start, end int, entries []*NodeEvent) bool {
	content := a.file.Content
	cursor := start
	for _, entry := range entries {
		if entry.Original() == nil {
			continue
		}
		from, to := a.extendedRange(entry.Original())
		if !isBlank(string(content[cursor:from])) {
			return false
		}
		cursor = to
	}
	return isBlank(string(content[cursor:end]))
}

// braces returns the tokens delimiting the list of a block or class.
func (a *analyzer) braces(parent *syntax.Node) (scanner.Token, scanner.Token, error) {
	var (
		open scanner.Token
		err  error
	)
	switch parent.Kind {
	case syntax.KindBlock:
		open, err = a.expectAt(parent.Start, "{")
	case syntax.KindClassDeclaration:
		open, err = a.scan.FindNext("{", parent.Child(syntax.ClassName).End(), parent.End())
	default:
		err = fmt.Errorf("%w: %v has no braces", ErrConsistency, parent.Kind)
	}
	if err != nil {
		return open, scanner.Token{}, err
	}

	closing, err := a.scan.PreviousToken(parent.End())
	if err != nil {
		return open, closing, err
	}
	if !closing.Is("}") {
		return open, closing, fmt.Errorf("%w: %q at end of %v", scanner.ErrAnchorNotFound, "}", parent)
	}
	return open, closing, nil
}

// joinedList rewrites a comma separated list so that k surviving entries
// keep exactly k-1 separators.
func (a *analyzer) joinedList(parent *syntax.Node, entries []*NodeEvent) error {
	var originals []*syntax.Node
	for _, entry := range entries {
		if entry.Original() != nil {
			originals = append(originals, entry.Original())
		}
	}

	// Entries ahead of the first survivor go in front of it.
	for pos, entry := range entries {
		if entry.Kind() != Inserted {
			continue
		}
		if prev, next := survivors(entries, pos); prev == nil && next != nil {
			text, err := a.serialize(entry.New(), a.lineIndent(next.Start))
			if err != nil {
				return err
			}
			a.out.Insert(next.Start, text+", ")
			a.consume(entry)
		}
	}

	if err := a.visitSurvivors(entries); err != nil {
		return err
	}

	for _, run := range removedRuns(entries) {
		first := indexOf(originals, run[0])
		last := first + len(run) - 1
		switch {
		case last+1 < len(originals):
			a.out.Delete(run[0].Start, originals[last+1].Start)
		case first > 0:
			a.out.Delete(originals[first-1].End(), run[len(run)-1].End())
		default:
			a.out.Delete(run[0].Start, run[len(run)-1].End())
		}
	}

	// With no survivor left, insertions take the place of the whole list.
	var offset int
	if len(originals) > 0 {
		offset = originals[0].Start
	} else {
		tok, err := a.openParen(parent)
		if err != nil {
			return err
		}
		offset = tok.End
	}

	leading := true
	for pos, entry := range entries {
		if entry.Kind() != Inserted {
			continue
		}
		prev, next := survivors(entries, pos)
		if prev == nil && next != nil {
			continue
		}
		anchor := offset
		if prev != nil {
			anchor = prev.Start
		}
		text, err := a.serialize(entry.New(), a.lineIndent(anchor))
		if err != nil {
			return err
		}

		switch {
		case prev != nil:
			a.out.Insert(prev.End(), ", "+text)
		case leading:
			a.out.Insert(offset, text)
			leading = false
		default:
			a.out.Insert(offset, ", "+text)
		}
		a.consume(entry)
	}
	return nil
}

// openParen returns the "(" opening the parameter or argument list of parent.
func (a *analyzer) openParen(parent *syntax.Node) (scanner.Token, error) {
	var name *syntax.Node
	switch parent.Kind {
	case syntax.KindFunctionDeclaration:
		name = parent.Child(syntax.FunctionName)
	case syntax.KindMethodInvocation:
		name = parent.Child(syntax.InvocationName)
	default:
		return scanner.Token{}, fmt.Errorf("%w: %v has no argument list", ErrConsistency, parent.Kind)
	}
	return a.scan.FindNext("(", name.End(), parent.End())
}
