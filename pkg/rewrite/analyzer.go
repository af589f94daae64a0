package rewrite

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/format"
	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/scanner"
)

// session holds the bookkeeping shared by an analyzer and the nested
// analyzers it starts for copied text.
type session struct {
	consumed   map[*NodeEvent]bool
	emitted    map[*syntax.Node]bool
	inProgress map[*syntax.Node]bool
	rules      map[syntax.NodeKind]flattenRule
}

// analyzer walks the original tree and turns recorded events into text edits.
type analyzer struct {
	file      *syntax.File
	scan      *scanner.Scanner
	store     *Store
	registry  *Registry
	opts      Options
	formatter format.Formatter
	indent    string
	delim     string
	log       *log.Logger

	out    *edit.Builder
	shared *session
}

func newAnalyzer(file *syntax.File, store *Store, registry *Registry, opts Options, logger *log.Logger) *analyzer {
	delim := opts.LineDelimiter
	if delim == "" {
		delim = file.LineDelimiter()
	}
	indentUnit := opts.effectiveIndentUnit(file)
	formatter := opts.Formatter
	if formatter == nil {
		formatter = format.NewTokenFormatter(format.Options{
			IndentUnit:    indentUnit,
			LineDelimiter: delim,
		})
	}
	return &analyzer{
		file:      file,
		scan:      scanner.New(file.Content),
		store:     store,
		registry:  registry,
		opts:      opts,
		formatter: formatter,
		indent:    indentUnit,
		delim:     delim,
		log:       logger,
		out:       edit.NewBuilder(),
		shared: &session{
			consumed:   make(map[*NodeEvent]bool),
			emitted:    make(map[*syntax.Node]bool),
			inProgress: make(map[*syntax.Node]bool),
			rules:      flattenRules(),
		},
	}
}

// nested returns an analyzer sharing everything but the edit builder.
func (a *analyzer) nested() *analyzer {
	sub := *a
	sub.out = edit.NewBuilder()
	return &sub
}

func (a *analyzer) consume(ev *NodeEvent) {
	a.shared.consumed[ev] = true
}

// run produces the sorted edit list for the whole file.
func (a *analyzer) run() ([]edit.TextEdit, error) {
	if err := a.visit(a.file.Root); err != nil {
		return nil, err
	}
	if err := a.checkConsumed(); err != nil {
		return nil, err
	}
	if err := a.checkMoves(); err != nil {
		return nil, err
	}

	edits := a.out.Edits
	if err := edit.Validate(edits, len(a.file.Content)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConsistency, err)
	}
	edit.Sort(edits)
	if err := edit.DetectConflicts(edits); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConsistency, err)
	}
	return edits, nil
}

// visit descends into the properties of an original node in declaration order.
func (a *analyzer) visit(n *syntax.Node) error {
	for _, prop := range n.Properties() {
		var err error
		switch prop.Cardinality {
		case syntax.CardinalityChild:
			err = a.visitChild(n, prop)
		case syntax.CardinalityList:
			err = a.visitList(n, prop)
		case syntax.CardinalityAttribute:
			err = a.visitAttribute(n, prop)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// serialize returns the text of a new value with every line after the first
// indented by indent.
func (a *analyzer) serialize(n *syntax.Node, indent string) (string, error) {
	text, err := a.text(n)
	if err != nil {
		return "", err
	}
	return reindent(text, indent), nil
}

// text returns the text of a new value relative to column zero.
func (a *analyzer) text(n *syntax.Node) (string, error) {
	switch a.registry.Kind(n) {
	case StringPlaceholder:
		return a.registry.Text(n), nil
	case CopyPlaceholder, MovePlaceholder:
		a.shared.emitted[n] = true
		return a.sourceText(a.registry.Source(n))
	case CollapsePlaceholder:
		a.shared.emitted[n] = true
		collapsed, _ := a.registry.Collapsed(n)
		return a.collapsedText(n, collapsed)
	case NotPlaceholder:
	}
	if n.HasRange() {
		return a.sourceText(n)
	}
	return a.freshText(n)
}

// sourceText returns the original text of src, comments that travel with it
// included, with the edits recorded inside src applied.
func (a *analyzer) sourceText(src *syntax.Node) (string, error) {
	if src == nil || !src.HasRange() {
		return "", fmt.Errorf("%w: copy source %v is not part of the original tree", ErrConsistency, src)
	}
	if a.shared.inProgress[src] {
		return "", fmt.Errorf("%w: %v contains a copy of itself", ErrConsistency, src)
	}
	a.shared.inProgress[src] = true
	defer delete(a.shared.inProgress, src)

	start, end := a.extendedRange(src)
	return a.rangeText(start, end, src)
}

func (a *analyzer) collapsedText(placeholder *syntax.Node, collapsed Collapsed) (string, error) {
	if a.shared.inProgress[placeholder] {
		return "", fmt.Errorf("%w: %v..%v contains a copy of itself", ErrConsistency, collapsed.First, collapsed.Last)
	}
	a.shared.inProgress[placeholder] = true
	defer delete(a.shared.inProgress, placeholder)

	start, _ := a.extendedRange(collapsed.First)
	_, end := a.extendedRange(collapsed.Last)
	return a.rangeText(start, end, collapsed.Entries()...)
}

// rangeText returns [start, end) of the buffer with the edits recorded inside
// nodes applied, dedented to the indentation of its first line.
func (a *analyzer) rangeText(start, end int, nodes ...*syntax.Node) (string, error) {
	sub := a.nested()
	for _, n := range nodes {
		if err := sub.visit(n); err != nil {
			return "", err
		}
	}

	edits := make([]edit.TextEdit, 0, sub.out.Len())
	for _, e := range sub.out.Edits {
		if e.Offset < start || e.End() > end {
			return "", fmt.Errorf("%w: edit %v escapes copied range [%d,%d)", ErrConsistency, e, start, end)
		}
		e.Offset -= start
		edits = append(edits, e)
	}
	text, err := edit.ApplyString(string(a.file.Content[start:end]), edits)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConsistency, err)
	}

	width := indentWidth(a.lineIndent(start), a.opts.effectiveTabWidth())
	return dedent(text, width, a.opts.effectiveTabWidth()), nil
}

// freshText flattens and formats a newly built node, then substitutes the
// text of the placeholders and original nodes it holds.
func (a *analyzer) freshText(n *syntax.Node) (string, error) {
	flat, markers, err := newFlattener(a.store, a.registry, a.shared.rules).flatten(n)
	if err != nil {
		return "", err
	}

	text, err := a.formatter.Format(flat, n.Kind, 0)
	if err != nil {
		a.log.Debug("formatter failed; keeping flat text", logging.FieldKind, n.Kind.String(), logging.FieldError, err)
		text = flat
	}

	for _, m := range markers {
		token := m.text
		if m.terminated && strings.Contains(text, token+";") {
			token += ";"
		}
		idx := strings.Index(text, token)
		if idx < 0 {
			return "", fmt.Errorf("%w: placeholder for %v lost while formatting", ErrConsistency, m.node)
		}
		body, err := a.text(m.node)
		if err != nil {
			return "", err
		}
		text = text[:idx] + reindent(body, leadingIndent(text, idx)) + text[idx+len(token):]
	}
	return text, nil
}

// checkConsumed fails when a new value was recorded but never written out,
// which happens when its slot lies inside text that was removed or replaced.
func (a *analyzer) checkConsumed() error {
	for _, ev := range a.store.Events() {
		var pending []*NodeEvent
		switch ev := ev.(type) {
		case *NodeEvent:
			pending = []*NodeEvent{ev}
		case *ListEvent:
			pending = ev.Entries()
		}
		for _, entry := range pending {
			kind := entry.Kind()
			if (kind == Inserted || kind == Replaced) && !a.shared.consumed[entry] {
				return fmt.Errorf("%w: %v of %v is %s but never emitted", ErrConsistency,
					entry.Property(), entry.Parent(), kind)
			}
		}
	}
	return nil
}

// checkMoves fails when moved text would appear twice or not at all.
func (a *analyzer) checkMoves() error {
	for _, src := range a.store.moveSources() {
		if count := a.store.moveCounts[src]; count != 1 {
			return fmt.Errorf("%w: %v is moved %d times", ErrConsistency, src, count)
		}
		if !a.leavesOriginalSite(src) {
			return fmt.Errorf("%w: moved %v is neither removed nor replaced", ErrConsistency, src)
		}
	}
	for _, placeholder := range a.registry.Placeholders() {
		moved := a.registry.Kind(placeholder) == MovePlaceholder
		if collapsed, ok := a.registry.Collapsed(placeholder); ok {
			moved = collapsed.Move
		}
		if moved && !a.shared.emitted[placeholder] {
			return fmt.Errorf("%w: move target for %v is never inserted", ErrConsistency, a.describe(placeholder))
		}
	}
	return nil
}

// leavesOriginalSite reports whether src or one of its ancestors is removed or replaced.
func (a *analyzer) leavesOriginalSite(src *syntax.Node) bool {
	for n := src; n != nil; n = n.Parent() {
		if kind := a.store.ChangeKind(n); kind == Removed || kind == Replaced {
			return true
		}
	}
	return false
}

func (a *analyzer) describe(placeholder *syntax.Node) string {
	if collapsed, ok := a.registry.Collapsed(placeholder); ok {
		return fmt.Sprintf("%v..%v", collapsed.First, collapsed.Last)
	}
	return a.registry.Source(placeholder).String()
}
