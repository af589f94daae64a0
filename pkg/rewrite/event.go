// Package rewrite records symbolic edits against a parsed tree and turns them
// into a minimal, non-overlapping list of text edits over the original buffer.
//
// Callers record events through a Store, a Registry and ListRewrite values;
// nothing touches text until ComputeEdits walks the original tree. Unchanged
// source is reused byte for byte and only new text is formatted.
package rewrite

import (
	"fmt"

	"github.com/yaklabco/treewrite/pkg/syntax"
)

// ChangeKind classifies what happened to a slot or list entry.
type ChangeKind uint8

const (
	// Unchanged means the original value is kept.
	Unchanged ChangeKind = iota

	// Inserted means a value was added where there was none.
	Inserted

	// Removed means the original value was dropped.
	Removed

	// Replaced means the original value was swapped for a new one.
	Replaced

	// ChildrenChanged means at least one entry of a list changed.
	ChildrenChanged
)

// String returns a human-readable name for the change kind.
func (k ChangeKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Inserted:
		return "inserted"
	case Removed:
		return "removed"
	case Replaced:
		return "replaced"
	case ChildrenChanged:
		return "children-changed"
	default:
		return "unknown"
	}
}

// Event is a change recorded for one property of one node.
type Event interface {
	// Kind derives the change kind from the recorded values.
	Kind() ChangeKind

	// Parent returns the node owning the property.
	Parent() *syntax.Node

	// Property returns the changed property.
	Property() *syntax.Property
}

// NodeEvent records the original and new value of a single-valued slot, an
// attribute, or one entry of a list. Values are *syntax.Node or, for
// attributes, string. A nil value means "absent".
type NodeEvent struct {
	parent   *syntax.Node
	prop     *syntax.Property
	original any
	value    any
}

func newNodeEvent(parent *syntax.Node, prop *syntax.Property, original, value any) *NodeEvent {
	return &NodeEvent{
		parent:   parent,
		prop:     prop,
		original: normalize(original),
		value:    normalize(value),
	}
}

// normalize turns typed nil nodes into untyped nil so absence compares equal.
func normalize(v any) any {
	if n, ok := v.(*syntax.Node); ok && n == nil {
		return nil
	}
	return v
}

// Kind implements Event.
func (e *NodeEvent) Kind() ChangeKind {
	switch {
	case e.original == e.value:
		return Unchanged
	case e.original == nil:
		return Inserted
	case e.value == nil:
		return Removed
	default:
		return Replaced
	}
}

// Parent implements Event.
func (e *NodeEvent) Parent() *syntax.Node {
	return e.parent
}

// Property implements Event.
func (e *NodeEvent) Property() *syntax.Property {
	return e.prop
}

// Original returns the original node, or nil.
func (e *NodeEvent) Original() *syntax.Node {
	n, _ := e.original.(*syntax.Node)
	return n
}

// New returns the new node, or nil.
func (e *NodeEvent) New() *syntax.Node {
	n, _ := e.value.(*syntax.Node)
	return n
}

// OriginalText returns the original attribute value.
func (e *NodeEvent) OriginalText() string {
	s, _ := e.original.(string)
	return s
}

// NewText returns the new attribute value.
func (e *NodeEvent) NewText() string {
	s, _ := e.value.(string)
	return s
}

func (e *NodeEvent) set(value any) {
	e.value = normalize(value)
}

func (e *NodeEvent) String() string {
	return fmt.Sprintf("%v %s: %v -> %v", e.prop, e.Kind(), e.original, e.value)
}
