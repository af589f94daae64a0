package rewrite

import (
	"fmt"

	"github.com/yaklabco/treewrite/pkg/syntax"
)

// ListRewrite edits one list property through sibling-relative intents.
type ListRewrite struct {
	store          *Store
	registry       *Registry
	parent         *syntax.Node
	prop           *syntax.Property
	bindToPrevious bool
}

// NewListRewrite creates a list rewrite for parent's list property prop.
// Insertions into line-oriented lists are bound to their previous sibling.
func NewListRewrite(store *Store, registry *Registry, parent *syntax.Node, prop *syntax.Property) (*ListRewrite, error) {
	if err := store.checkSlot(parent, prop); err != nil {
		return nil, err
	}
	if !prop.IsList() {
		return nil, fmt.Errorf("%w: %v is not a list property", ErrInvalidArgument, prop)
	}
	return &ListRewrite{
		store:          store,
		registry:       registry,
		parent:         parent,
		prop:           prop,
		bindToPrevious: prop.Layout == syntax.LayoutLines,
	}, nil
}

// SetBindToPrevious changes whether later insertions take their indentation
// from the previous sibling rather than the next one.
func (l *ListRewrite) SetBindToPrevious(bind bool) {
	l.bindToPrevious = bind
}

// Parent returns the node owning the list.
func (l *ListRewrite) Parent() *syntax.Node {
	return l.parent
}

// Property returns the list property.
func (l *ListRewrite) Property() *syntax.Property {
	return l.prop
}

func (l *ListRewrite) bind(entry *NodeEvent, err error) error {
	if err != nil {
		return err
	}
	if l.bindToPrevious {
		return l.store.SetInsertBoundToPrevious(entry.New(), true)
	}
	return nil
}

// InsertFirst inserts node before every surviving entry.
func (l *ListRewrite) InsertFirst(node *syntax.Node) error {
	return l.bind(l.store.InsertEntry(l.parent, l.prop, 0, node))
}

// InsertLast appends node.
func (l *ListRewrite) InsertLast(node *syntax.Node) error {
	return l.bind(l.store.InsertEntry(l.parent, l.prop, -1, node))
}

// InsertAt inserts node before the index-th surviving entry; see ListEvent.InsertEntry.
func (l *ListRewrite) InsertAt(node *syntax.Node, index int) error {
	return l.bind(l.store.InsertEntry(l.parent, l.prop, index, node))
}

// InsertBefore inserts node directly before sibling, which may be an original
// entry or an earlier insertion.
func (l *ListRewrite) InsertBefore(node, sibling *syntax.Node) error {
	return l.insertRelative(node, sibling, 0)
}

// InsertAfter inserts node directly after sibling.
func (l *ListRewrite) InsertAfter(node, sibling *syntax.Node) error {
	return l.insertRelative(node, sibling, 1)
}

func (l *ListRewrite) insertRelative(node, sibling *syntax.Node, offset int) error {
	ev, err := l.store.ListEvent(l.parent, l.prop, true)
	if err != nil {
		return err
	}
	pos := ev.Index(sibling, IndexBoth)
	if pos < 0 {
		return fmt.Errorf("%w: %v is not an entry of %v", ErrInvalidArgument, sibling, l.prop)
	}
	return l.bind(l.store.insertEntry(l.parent, l.prop, node, func(*ListEvent) int {
		return pos + offset
	}))
}

// Remove removes an original entry or drops an earlier insertion.
func (l *ListRewrite) Remove(node *syntax.Node) error {
	_, err := l.store.RemoveEntry(l.parent, l.prop, node)
	return err
}

// Replace replaces an original entry with replacement.
func (l *ListRewrite) Replace(node, replacement *syntax.Node) error {
	_, err := l.store.ReplaceEntry(l.parent, l.prop, node, replacement)
	return err
}

// Original returns the list as parsed.
func (l *ListRewrite) Original() []*syntax.Node {
	return l.parent.List(l.prop)
}

// Rewritten returns the list as it reads after the recorded changes.
func (l *ListRewrite) Rewritten() []*syntax.Node {
	if ev := l.store.lookupList(l.parent, l.prop); ev != nil {
		return ev.New()
	}
	return l.Original()
}

// CreateCopyTarget returns a placeholder copying the entries first..last.
func (l *ListRewrite) CreateCopyTarget(first, last *syntax.Node) (*syntax.Node, error) {
	if first == last {
		if indexOf(l.Original(), first) < 0 {
			return nil, fmt.Errorf("%w: %v is not an entry of %v", ErrInvalidArgument, first, l.prop)
		}
		return l.registry.CreateCopyPlaceholder(first)
	}
	return l.registry.CreateCollapsePlaceholder(l.parent, l.prop, first, last, false)
}

// CreateMoveTarget returns a placeholder moving the entries first..last and
// removes those entries from this list.
func (l *ListRewrite) CreateMoveTarget(first, last *syntax.Node) (*syntax.Node, error) {
	items := l.Original()
	firstIdx, lastIdx := indexOf(items, first), indexOf(items, last)
	if firstIdx < 0 || lastIdx < 0 || firstIdx > lastIdx {
		return nil, fmt.Errorf("%w: %v..%v is not a range of %v", ErrInvalidArgument, first, last, l.prop)
	}
	moved := items[firstIdx : lastIdx+1]
	for _, entry := range moved {
		if err := l.store.CheckMoveSource(l.parent, l.prop, entry); err != nil {
			return nil, err
		}
	}

	var (
		placeholder *syntax.Node
		err         error
	)
	if first == last {
		placeholder, err = l.registry.CreateMovePlaceholder(first)
	} else {
		placeholder, err = l.registry.CreateCollapsePlaceholder(l.parent, l.prop, first, last, true)
	}
	if err != nil {
		return nil, err
	}
	for _, entry := range moved {
		if err := l.Remove(entry); err != nil {
			return nil, err
		}
	}
	return placeholder, nil
}
