package rewrite

import (
	"fmt"

	"github.com/yaklabco/treewrite/pkg/syntax"
)

type slotKey struct {
	parent *syntax.Node
	prop   *syntax.Property
}

// Store is the session-scoped registry of rewrite events.
// Events are keyed by (parent, property) and side tables by node identity;
// the tree itself is never modified. A Store is not safe for concurrent use.
type Store struct {
	nodeEvents map[slotKey]*NodeEvent
	listEvents map[slotKey]*ListEvent
	order      []Event

	// values maps every new value to the event holding it.
	values map[*syntax.Node]*NodeEvent

	copyCounts      map[*syntax.Node]int
	moveCounts      map[*syntax.Node]int
	moveOrder       []*syntax.Node
	boundToPrevious map[*syntax.Node]bool

	frozen bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.Clear()
	return s
}

// Clear drops every event and side table entry and unfreezes the store.
func (s *Store) Clear() {
	s.nodeEvents = make(map[slotKey]*NodeEvent)
	s.listEvents = make(map[slotKey]*ListEvent)
	s.order = nil
	s.values = make(map[*syntax.Node]*NodeEvent)
	s.copyCounts = make(map[*syntax.Node]int)
	s.moveCounts = make(map[*syntax.Node]int)
	s.moveOrder = nil
	s.boundToPrevious = make(map[*syntax.Node]bool)
	s.frozen = false
}

// Freeze makes the store read-only. Edit generation freezes the store it reads.
func (s *Store) Freeze() {
	s.frozen = true
}

// Frozen reports whether writes are rejected.
func (s *Store) Frozen() bool {
	return s.frozen
}

// Len returns the number of events recorded, unchanged ones included.
func (s *Store) Len() int {
	return len(s.order)
}

// Events returns all events in creation order.
func (s *Store) Events() []Event {
	out := make([]Event, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) checkWritable() error {
	if s.frozen {
		return ErrStoreFrozen
	}
	return nil
}

func (s *Store) checkSlot(parent *syntax.Node, prop *syntax.Property) error {
	switch {
	case parent == nil:
		return fmt.Errorf("%w: nil parent", ErrInvalidArgument)
	case !parent.HasRange():
		return fmt.Errorf("%w: %v is not part of the original tree", ErrInvalidArgument, parent)
	case !syntax.Declares(parent.Kind, prop):
		return fmt.Errorf("%w: %v does not declare %v", ErrInvalidArgument, parent.Kind, prop)
	}
	return nil
}

// checkValue validates a node about to become the new value of prop.
func (s *Store) checkValue(prop *syntax.Property, value *syntax.Node, holder *NodeEvent) error {
	switch {
	case value == nil:
		return fmt.Errorf("%w: nil value for %v", ErrInvalidArgument, prop)
	case value.HasRange():
		return fmt.Errorf("%w: %v is part of the original tree; use a copy or move placeholder", ErrInvalidArgument, value)
	case value.Parent() != nil:
		return fmt.Errorf("%w: %v is already held by %v", ErrInvalidArgument, value, value.Parent())
	case !prop.Accepts.Accepts(value.Kind):
		return fmt.Errorf("%w: %v does not accept %v", ErrInvalidArgument, prop, value.Kind)
	}
	if owner, ok := s.values[value]; ok && owner != holder {
		return fmt.Errorf("%w: %v is already the new value of %v", ErrInvalidArgument, value, owner.prop)
	}
	return nil
}

// NodeEvent returns the event for a single-valued or attribute property.
// Without forceCreate it returns nil when nothing was recorded; with it, an
// Unchanged event is seeded from the current value.
func (s *Store) NodeEvent(parent *syntax.Node, prop *syntax.Property, forceCreate bool) (*NodeEvent, error) {
	if err := s.checkSlot(parent, prop); err != nil {
		return nil, err
	}
	if prop.IsList() {
		return nil, fmt.Errorf("%w: %v is a list property", ErrInvalidArgument, prop)
	}
	key := slotKey{parent, prop}
	if ev, ok := s.nodeEvents[key]; ok || !forceCreate {
		return ev, nil
	}
	if err := s.checkWritable(); err != nil {
		return nil, err
	}

	ev := newNodeEvent(parent, prop, parent.Get(prop), parent.Get(prop))
	s.nodeEvents[key] = ev
	s.order = append(s.order, ev)
	return ev, nil
}

// ListEvent returns the event for a list property, following the same
// forceCreate rule as NodeEvent.
func (s *Store) ListEvent(parent *syntax.Node, prop *syntax.Property, forceCreate bool) (*ListEvent, error) {
	if err := s.checkSlot(parent, prop); err != nil {
		return nil, err
	}
	if !prop.IsList() {
		return nil, fmt.Errorf("%w: %v is not a list property", ErrInvalidArgument, prop)
	}
	key := slotKey{parent, prop}
	if ev, ok := s.listEvents[key]; ok || !forceCreate {
		return ev, nil
	}
	if err := s.checkWritable(); err != nil {
		return nil, err
	}

	ev := newListEvent(parent, prop)
	s.listEvents[key] = ev
	s.order = append(s.order, ev)
	return ev, nil
}

// lookupNode returns the recorded event without validation.
func (s *Store) lookupNode(parent *syntax.Node, prop *syntax.Property) *NodeEvent {
	return s.nodeEvents[slotKey{parent, prop}]
}

// lookupList returns the recorded list event without validation.
func (s *Store) lookupList(parent *syntax.Node, prop *syntax.Property) *ListEvent {
	return s.listEvents[slotKey{parent, prop}]
}

// write records value as the new value of a single-valued slot.
func (s *Store) write(parent *syntax.Node, prop *syntax.Property, value *syntax.Node) (*NodeEvent, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	ev, err := s.NodeEvent(parent, prop, true)
	if err != nil {
		return nil, err
	}
	if ev.Kind() != Unchanged {
		if ev.New() == value {
			return ev, nil
		}
		return nil, fmt.Errorf("%w: %v of %v is already %s", ErrConflict, prop, parent, ev.Kind())
	}
	if value != nil {
		if err := s.checkValue(prop, value, ev); err != nil {
			return nil, err
		}
		s.values[value] = ev
	}
	ev.set(value)
	return ev, nil
}

// MarkInsert records value in an empty optional slot, or appends it to a list.
func (s *Store) MarkInsert(parent *syntax.Node, prop *syntax.Property, value *syntax.Node) (*NodeEvent, error) {
	if err := s.checkSlot(parent, prop); err != nil {
		return nil, err
	}
	switch {
	case prop.IsAttribute():
		return nil, fmt.Errorf("%w: attribute %v cannot be inserted", ErrInvalidArgument, prop)
	case prop.IsList():
		return s.InsertEntry(parent, prop, -1, value)
	case parent.Child(prop) != nil:
		return nil, fmt.Errorf("%w: %v of %v is not empty; replace it instead", ErrInvalidArgument, prop, parent)
	}
	if value == nil {
		return nil, fmt.Errorf("%w: nil value for %v", ErrInvalidArgument, prop)
	}
	return s.write(parent, prop, value)
}

// MarkRemove removes the current child of a single-valued slot, or the list
// entry value. For single-valued slots value may be nil or the current child.
func (s *Store) MarkRemove(parent *syntax.Node, prop *syntax.Property, value *syntax.Node) (*NodeEvent, error) {
	if err := s.checkSlot(parent, prop); err != nil {
		return nil, err
	}
	switch {
	case prop.IsAttribute():
		return nil, fmt.Errorf("%w: attribute %v cannot be removed", ErrInvalidArgument, prop)
	case prop.IsList():
		return s.RemoveEntry(parent, prop, value)
	case prop.Mandatory:
		return nil, fmt.Errorf("%w: mandatory %v cannot be removed", ErrInvalidArgument, prop)
	}
	current := parent.Child(prop)
	if current == nil {
		return nil, fmt.Errorf("%w: %v of %v is empty", ErrInvalidArgument, prop, parent)
	}
	if value != nil && value != current {
		return nil, fmt.Errorf("%w: %v is not the value of %v", ErrInvalidArgument, value, prop)
	}
	return s.write(parent, prop, nil)
}

// MarkReplace replaces the current child of a single-valued slot.
func (s *Store) MarkReplace(parent *syntax.Node, prop *syntax.Property, value *syntax.Node) (*NodeEvent, error) {
	if err := s.checkSlot(parent, prop); err != nil {
		return nil, err
	}
	switch {
	case prop.IsAttribute():
		return nil, fmt.Errorf("%w: use SetAttribute for %v", ErrInvalidArgument, prop)
	case prop.IsList():
		return nil, fmt.Errorf("%w: use ReplaceEntry for list %v", ErrInvalidArgument, prop)
	case parent.Child(prop) == nil:
		return nil, fmt.Errorf("%w: %v of %v is empty; insert instead", ErrInvalidArgument, prop, parent)
	case value == nil:
		return nil, fmt.Errorf("%w: nil value for %v", ErrInvalidArgument, prop)
	}
	return s.write(parent, prop, value)
}

// SetAttribute replaces an attribute value such as an operator or identifier.
func (s *Store) SetAttribute(parent *syntax.Node, prop *syntax.Property, value string) (*NodeEvent, error) {
	if err := s.checkSlot(parent, prop); err != nil {
		return nil, err
	}
	if !prop.IsAttribute() {
		return nil, fmt.Errorf("%w: %v is not an attribute", ErrInvalidArgument, prop)
	}
	if value == "" {
		return nil, fmt.Errorf("%w: empty value for %v", ErrInvalidArgument, prop)
	}
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	ev, err := s.NodeEvent(parent, prop, true)
	if err != nil {
		return nil, err
	}
	if ev.Kind() != Unchanged && ev.NewText() != value {
		return nil, fmt.Errorf("%w: %v of %v is already %q", ErrConflict, prop, parent, ev.NewText())
	}
	ev.set(value)
	return ev, nil
}

// InsertEntry inserts value into a list before the index-th surviving entry.
// See ListEvent.InsertEntry for how index is counted.
func (s *Store) InsertEntry(parent *syntax.Node, prop *syntax.Property, index int, value *syntax.Node) (*NodeEvent, error) {
	return s.insertEntry(parent, prop, value, func(ev *ListEvent) int {
		ev.ensureEntries()
		return survivorPosition(ev.entries, index)
	})
}

// insertEntry validates value and inserts it at the raw position chosen by at.
func (s *Store) insertEntry(parent *syntax.Node, prop *syntax.Property, value *syntax.Node,
	at func(ev *ListEvent) int,
) (*NodeEvent, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	ev, err := s.ListEvent(parent, prop, true)
	if err != nil {
		return nil, err
	}
	if existing := ev.Entry(value); existing != nil && existing.Original() == nil {
		return nil, fmt.Errorf("%w: %v is already inserted into %v", ErrConflict, value, prop)
	}
	if err := s.checkValue(prop, value, nil); err != nil {
		return nil, err
	}
	entry := ev.insertAt(at(ev), value)
	s.values[value] = entry
	return entry, nil
}

// RemoveEntry removes an original entry, or drops an earlier insertion.
func (s *Store) RemoveEntry(parent *syntax.Node, prop *syntax.Property, entry *syntax.Node) (*NodeEvent, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	ev, err := s.ListEvent(parent, prop, true)
	if err != nil {
		return nil, err
	}
	current := ev.Entry(entry)
	if current == nil {
		return nil, fmt.Errorf("%w: %v is not an entry of %v", ErrInvalidArgument, entry, prop)
	}
	switch current.Kind() {
	case Removed:
		return current, nil
	case Replaced:
		return nil, fmt.Errorf("%w: %v in %v is already replaced", ErrConflict, entry, prop)
	case Inserted:
		delete(s.values, current.New())
	}
	return ev.RemoveEntry(entry)
}

// ReplaceEntry replaces an original list entry with value.
func (s *Store) ReplaceEntry(parent *syntax.Node, prop *syntax.Property, original, value *syntax.Node) (*NodeEvent, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	ev, err := s.ListEvent(parent, prop, true)
	if err != nil {
		return nil, err
	}
	current := ev.Entry(original)
	if current == nil || current.Original() != original {
		return nil, fmt.Errorf("%w: %v is not an original entry of %v", ErrInvalidArgument, original, prop)
	}
	switch current.Kind() {
	case Unchanged:
	case Replaced:
		if current.New() == value {
			return current, nil
		}
		return nil, fmt.Errorf("%w: %v in %v is already replaced", ErrConflict, original, prop)
	default:
		return nil, fmt.Errorf("%w: %v in %v is already %s", ErrConflict, original, prop, current.Kind())
	}
	if err := s.checkValue(prop, value, current); err != nil {
		return nil, err
	}
	s.values[value] = current
	return ev.ReplaceEntry(original, value)
}

// Revert resets a property to its original value, dropping every change recorded for it.
func (s *Store) Revert(parent *syntax.Node, prop *syntax.Property) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if err := s.checkSlot(parent, prop); err != nil {
		return err
	}
	key := slotKey{parent, prop}
	if ev, ok := s.nodeEvents[key]; ok {
		if n := ev.New(); n != nil {
			delete(s.values, n)
		}
		ev.value = ev.original
	}
	if ev, ok := s.listEvents[key]; ok {
		for _, entry := range ev.entries {
			if n := entry.New(); n != nil && n != entry.Original() {
				delete(s.values, n)
			}
		}
		ev.revert()
	}
	return nil
}

// ChangeKind returns the change recorded for the slot holding node,
// or Unchanged when there is none.
func (s *Store) ChangeKind(node *syntax.Node) ChangeKind {
	if ev := s.eventFor(node); ev != nil {
		return ev.Kind()
	}
	return Unchanged
}

// eventFor finds the event whose original value is node.
func (s *Store) eventFor(node *syntax.Node) *NodeEvent {
	if node == nil || node.Parent() == nil {
		return nil
	}
	parent, prop := node.Parent(), node.Location()
	if prop.IsList() {
		ev := s.listEvents[slotKey{parent, prop}]
		if ev == nil || ev.entries == nil {
			return nil
		}
		if entry := ev.Entry(node); entry != nil && entry.Original() == node {
			return entry
		}
		return nil
	}
	if ev := s.nodeEvents[slotKey{parent, prop}]; ev != nil && ev.Original() == node {
		return ev
	}
	return nil
}

// IncreaseCopyCount records that a copy placeholder was created for node.
func (s *Store) IncreaseCopyCount(node *syntax.Node) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	s.addCopy(node)
	return nil
}

func (s *Store) addCopy(node *syntax.Node) {
	s.copyCounts[node]++
}

// CopyCount returns the number of copy placeholders created for node.
func (s *Store) CopyCount(node *syntax.Node) int {
	return s.copyCounts[node]
}

// SetAsMoveSource records that a move placeholder was created for node.
func (s *Store) SetAsMoveSource(node *syntax.Node) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	s.addMoveSource(node)
	return nil
}

func (s *Store) addMoveSource(node *syntax.Node) {
	if s.moveCounts[node] == 0 {
		s.moveOrder = append(s.moveOrder, node)
	}
	s.moveCounts[node]++
}

// CheckMoveSource reports whether node can be moved out of the slot prop of
// parent. It records nothing: a nil result means a following MarkRemove or
// RemoveEntry of node succeeds.
func (s *Store) CheckMoveSource(parent *syntax.Node, prop *syntax.Property, node *syntax.Node) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if err := s.checkSlot(parent, prop); err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("%w: nil move source", ErrInvalidArgument)
	}
	switch {
	case prop.IsAttribute():
		return fmt.Errorf("%w: attribute %v cannot be moved", ErrInvalidArgument, prop)
	case prop.IsList():
		if ev := s.lookupList(parent, prop); ev != nil {
			entry := ev.Entry(node)
			if entry == nil || entry.Original() != node {
				return fmt.Errorf("%w: %v is not an original entry of %v", ErrInvalidArgument, node, prop)
			}
			if kind := entry.Kind(); kind != Unchanged {
				return fmt.Errorf("%w: %v in %v is already %s", ErrConflict, node, prop, kind)
			}
			return nil
		}
		if indexOf(parent.List(prop), node) < 0 {
			return fmt.Errorf("%w: %v is not an entry of %v", ErrInvalidArgument, node, prop)
		}
		return nil
	case prop.Mandatory:
		return fmt.Errorf("%w: mandatory %v cannot be removed", ErrInvalidArgument, prop)
	case parent.Child(prop) != node:
		return fmt.Errorf("%w: %v is not the value of %v", ErrInvalidArgument, node, prop)
	}
	if ev := s.lookupNode(parent, prop); ev != nil && ev.Kind() != Unchanged {
		return fmt.Errorf("%w: %v of %v is already %s", ErrConflict, prop, parent, ev.Kind())
	}
	return nil
}

// IsMoveSource reports whether exactly one move placeholder exists for node
// and the slot holding node is removed or replaced.
func (s *Store) IsMoveSource(node *syntax.Node) bool {
	if s.moveCounts[node] != 1 {
		return false
	}
	kind := s.ChangeKind(node)
	return kind == Removed || kind == Replaced
}

// moveSources returns every node a move placeholder was created for, in creation order.
func (s *Store) moveSources() []*syntax.Node {
	return s.moveOrder
}

// SetInsertBoundToPrevious marks an inserted list entry as indented like its previous sibling.
func (s *Store) SetInsertBoundToPrevious(node *syntax.Node, bound bool) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	if bound {
		s.boundToPrevious[node] = true
	} else {
		delete(s.boundToPrevious, node)
	}
	return nil
}

// IsInsertBoundToPrevious reports the marker set by SetInsertBoundToPrevious.
func (s *Store) IsInsertBoundToPrevious(node *syntax.Node) bool {
	return s.boundToPrevious[node]
}
