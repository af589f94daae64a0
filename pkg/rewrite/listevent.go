package rewrite

import (
	"fmt"

	"github.com/yaklabco/treewrite/pkg/syntax"
)

// IndexMode selects which entries ListEvent.Index counts.
type IndexMode uint8

const (
	// IndexOriginal counts entries that have an original value.
	IndexOriginal IndexMode = iota

	// IndexNew counts entries that have a new value (survivors and insertions).
	IndexNew

	// IndexBoth counts every entry, removed ones included.
	IndexBoth
)

// ListEvent records changes to a list property as a sequence of per-entry events.
// The sequence is built from the original list on first mutation.
type ListEvent struct {
	parent   *syntax.Node
	prop     *syntax.Property
	original []*syntax.Node
	entries  []*NodeEvent
}

func newListEvent(parent *syntax.Node, prop *syntax.Property) *ListEvent {
	return &ListEvent{
		parent:   parent,
		prop:     prop,
		original: parent.List(prop),
	}
}

// Kind implements Event.
func (e *ListEvent) Kind() ChangeKind {
	for _, entry := range e.entries {
		if entry.Kind() != Unchanged {
			return ChildrenChanged
		}
	}
	return Unchanged
}

// Parent implements Event.
func (e *ListEvent) Parent() *syntax.Node {
	return e.parent
}

// Property implements Event.
func (e *ListEvent) Property() *syntax.Property {
	return e.prop
}

// Original returns the snapshot of the list taken when the event was created.
func (e *ListEvent) Original() []*syntax.Node {
	out := make([]*syntax.Node, len(e.original))
	copy(out, e.original)
	return out
}

// New returns the list as it reads after all recorded changes.
func (e *ListEvent) New() []*syntax.Node {
	if e.entries == nil {
		return e.Original()
	}
	out := make([]*syntax.Node, 0, len(e.entries))
	for _, entry := range e.entries {
		if n := entry.New(); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Entries returns the per-entry events in list order, building them on first use.
func (e *ListEvent) Entries() []*NodeEvent {
	e.ensureEntries()
	out := make([]*NodeEvent, len(e.entries))
	copy(out, e.entries)
	return out
}

func (e *ListEvent) ensureEntries() {
	if e.entries != nil {
		return
	}
	e.entries = make([]*NodeEvent, 0, len(e.original))
	for _, n := range e.original {
		e.entries = append(e.entries, newNodeEvent(e.parent, e.prop, n, n))
	}
}

// Entry returns the entry whose original or new value is n.
func (e *ListEvent) Entry(n *syntax.Node) *NodeEvent {
	if pos := e.position(n); pos >= 0 {
		return e.entries[pos]
	}
	return nil
}

func (e *ListEvent) position(n *syntax.Node) int {
	e.ensureEntries()
	for pos, entry := range e.entries {
		if entry.Original() == n || entry.New() == n {
			return pos
		}
	}
	return -1
}

// InsertEntry inserts n before the index-th surviving entry.
// Survivors are entries that are not removed, earlier insertions included.
// An index that is negative or not smaller than the survivor count appends.
func (e *ListEvent) InsertEntry(index int, n *syntax.Node) *NodeEvent {
	e.ensureEntries()
	return e.insertAt(survivorPosition(e.entries, index), n)
}

// insertAt inserts n at a raw position of the entry sequence.
func (e *ListEvent) insertAt(pos int, n *syntax.Node) *NodeEvent {
	e.ensureEntries()
	pos = max(0, min(pos, len(e.entries)))
	entry := newNodeEvent(e.parent, e.prop, nil, n)
	e.entries = append(e.entries, nil)
	copy(e.entries[pos+1:], e.entries[pos:])
	e.entries[pos] = entry
	return entry
}

// survivorPosition maps a survivor-counted index to a raw position in entries.
// The returned position is that of the index-th entry with a new value, or
// len(entries) when there are not that many.
func survivorPosition(entries []*NodeEvent, index int) int {
	if index < 0 {
		return len(entries)
	}
	seen := 0
	for pos, entry := range entries {
		if entry.New() == nil {
			continue
		}
		if seen == index {
			return pos
		}
		seen++
	}
	return len(entries)
}

// RemoveEntry marks the entry holding original as removed.
// An entry that was inserted by this event is dropped entirely.
func (e *ListEvent) RemoveEntry(original *syntax.Node) (*NodeEvent, error) {
	pos := e.position(original)
	if pos < 0 {
		return nil, fmt.Errorf("%w: %v is not an entry of %v", ErrInvalidArgument, original, e.prop)
	}
	entry := e.entries[pos]
	if entry.Original() == nil {
		e.entries = append(e.entries[:pos], e.entries[pos+1:]...)
		return entry, nil
	}
	entry.set(nil)
	return entry, nil
}

// ReplaceEntry sets the new value of the entry holding original.
func (e *ListEvent) ReplaceEntry(original, n *syntax.Node) (*NodeEvent, error) {
	pos := e.position(original)
	if pos < 0 {
		return nil, fmt.Errorf("%w: %v is not an entry of %v", ErrInvalidArgument, original, e.prop)
	}
	entry := e.entries[pos]
	entry.set(n)
	return entry, nil
}

// Index returns the position of n counting the entries selected by mode,
// or -1 if n is not counted by that mode.
func (e *ListEvent) Index(n *syntax.Node, mode IndexMode) int {
	e.ensureEntries()
	count := 0
	for _, entry := range e.entries {
		var counted, match bool
		switch mode {
		case IndexOriginal:
			counted = entry.Original() != nil
			match = entry.Original() == n
		case IndexNew:
			counted = entry.New() != nil
			match = entry.New() == n
		case IndexBoth:
			counted = true
			match = entry.Original() == n || entry.New() == n
		}
		if !counted {
			continue
		}
		if match {
			return count
		}
		count++
	}
	return -1
}

func (e *ListEvent) revert() {
	e.entries = nil
}
