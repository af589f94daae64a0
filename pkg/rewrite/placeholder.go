package rewrite

import (
	"fmt"

	"github.com/yaklabco/treewrite/pkg/syntax"
)

// PlaceholderKind tags synthetic nodes created by a Registry.
type PlaceholderKind uint8

const (
	// NotPlaceholder is returned for ordinary nodes.
	NotPlaceholder PlaceholderKind = iota

	// StringPlaceholder stands for raw text emitted verbatim.
	StringPlaceholder

	// CopyPlaceholder stands for a copy of an original node's text.
	CopyPlaceholder

	// MovePlaceholder stands for an original node's text moved to a new site.
	MovePlaceholder

	// CollapsePlaceholder stands for a range of consecutive list entries.
	CollapsePlaceholder
)

// String returns a human-readable name for the placeholder kind.
func (k PlaceholderKind) String() string {
	switch k {
	case NotPlaceholder:
		return "none"
	case StringPlaceholder:
		return "string"
	case CopyPlaceholder:
		return "copy"
	case MovePlaceholder:
		return "move"
	case CollapsePlaceholder:
		return "collapse"
	default:
		return "unknown"
	}
}

// Collapsed describes the list range a collapse placeholder stands for.
type Collapsed struct {
	Parent   *syntax.Node
	Property *syntax.Property
	First    *syntax.Node
	Last     *syntax.Node
	Move     bool
}

// Entries returns the original entries from First to Last inclusive.
func (c Collapsed) Entries() []*syntax.Node {
	var out []*syntax.Node
	inRange := false
	for _, n := range c.Parent.List(c.Property) {
		if n == c.First {
			inRange = true
		}
		if inRange {
			out = append(out, n)
		}
		if n == c.Last {
			break
		}
	}
	return out
}

// Registry creates placeholder nodes and keeps their data in side tables.
// Placeholder nodes are plain synthetic nodes; nothing marks them on the tree.
type Registry struct {
	store     *Store
	kinds     map[*syntax.Node]PlaceholderKind
	texts     map[*syntax.Node]string
	sources   map[*syntax.Node]*syntax.Node
	collapsed map[*syntax.Node]Collapsed
	order     []*syntax.Node
}

// NewRegistry creates a registry whose bookkeeping goes to store.
func NewRegistry(store *Store) *Registry {
	return &Registry{
		store:     store,
		kinds:     make(map[*syntax.Node]PlaceholderKind),
		texts:     make(map[*syntax.Node]string),
		sources:   make(map[*syntax.Node]*syntax.Node),
		collapsed: make(map[*syntax.Node]Collapsed),
	}
}

func (r *Registry) register(kind syntax.NodeKind, tag PlaceholderKind) *syntax.Node {
	n := syntax.New(kind)
	r.kinds[n] = tag
	r.order = append(r.order, n)
	return n
}

// CreateStringPlaceholder wraps text to be emitted verbatim as a node of kind.
// Only lines after the first are reindented at the insertion site.
func (r *Registry) CreateStringPlaceholder(text string, kind syntax.NodeKind) (*syntax.Node, error) {
	if !kind.Valid() || kind == syntax.KindProgram {
		return nil, fmt.Errorf("%w: string placeholder of kind %v", ErrInvalidArgument, kind)
	}
	if err := r.store.checkWritable(); err != nil {
		return nil, err
	}
	n := r.register(kind, StringPlaceholder)
	r.texts[n] = text
	return n, nil
}

func (r *Registry) checkSource(node *syntax.Node) error {
	switch {
	case node == nil:
		return fmt.Errorf("%w: nil source", ErrInvalidArgument)
	case !node.HasRange():
		return fmt.Errorf("%w: %v is not part of the original tree", ErrInvalidArgument, node)
	case node.Kind == syntax.KindProgram || node.Parent() == nil:
		return fmt.Errorf("%w: %v cannot be copied or moved", ErrInvalidArgument, node)
	}
	return nil
}

// CreateCopyPlaceholder returns a node standing for a copy of node's original
// text, including edits recorded inside node.
func (r *Registry) CreateCopyPlaceholder(node *syntax.Node) (*syntax.Node, error) {
	if err := r.checkSource(node); err != nil {
		return nil, err
	}
	if err := r.store.IncreaseCopyCount(node); err != nil {
		return nil, err
	}
	n := r.register(node.Kind, CopyPlaceholder)
	r.sources[n] = node
	return n, nil
}

// CreateMovePlaceholder is like CreateCopyPlaceholder but flags node as a move
// source. The caller must remove or replace node's own slot.
func (r *Registry) CreateMovePlaceholder(node *syntax.Node) (*syntax.Node, error) {
	if err := r.checkSource(node); err != nil {
		return nil, err
	}
	if err := r.store.SetAsMoveSource(node); err != nil {
		return nil, err
	}
	n := r.register(node.Kind, MovePlaceholder)
	r.sources[n] = node
	return n, nil
}

// CreateCollapsePlaceholder returns a node standing for the consecutive
// entries first..last of a list, copied or moved as one unit.
func (r *Registry) CreateCollapsePlaceholder(parent *syntax.Node, prop *syntax.Property,
	first, last *syntax.Node, move bool,
) (*syntax.Node, error) {
	if err := r.store.checkWritable(); err != nil {
		return nil, err
	}
	if err := r.store.checkSlot(parent, prop); err != nil {
		return nil, err
	}
	if !prop.IsList() {
		return nil, fmt.Errorf("%w: %v is not a list property", ErrInvalidArgument, prop)
	}

	items := parent.List(prop)
	firstIdx, lastIdx := indexOf(items, first), indexOf(items, last)
	if firstIdx < 0 || lastIdx < 0 || firstIdx > lastIdx {
		return nil, fmt.Errorf("%w: %v..%v is not a range of %v", ErrInvalidArgument, first, last, prop)
	}

	for _, entry := range items[firstIdx : lastIdx+1] {
		if move {
			r.store.addMoveSource(entry)
		} else {
			r.store.addCopy(entry)
		}
	}

	n := r.register(first.Kind, CollapsePlaceholder)
	r.collapsed[n] = Collapsed{Parent: parent, Property: prop, First: first, Last: last, Move: move}
	return n, nil
}

func indexOf(items []*syntax.Node, n *syntax.Node) int {
	for idx, item := range items {
		if item == n {
			return idx
		}
	}
	return -1
}

// Kind returns the placeholder tag of n.
func (r *Registry) Kind(n *syntax.Node) PlaceholderKind {
	return r.kinds[n]
}

// IsPlaceholder reports whether n was created by this registry.
func (r *Registry) IsPlaceholder(n *syntax.Node) bool {
	return r.kinds[n] != NotPlaceholder
}

// IsCollapsed reports whether n is a collapse placeholder.
func (r *Registry) IsCollapsed(n *syntax.Node) bool {
	_, ok := r.collapsed[n]
	return ok
}

// Collapsed returns the range behind a collapse placeholder.
func (r *Registry) Collapsed(n *syntax.Node) (Collapsed, bool) {
	c, ok := r.collapsed[n]
	return c, ok
}

// Source returns the original node behind a copy or move placeholder.
func (r *Registry) Source(n *syntax.Node) *syntax.Node {
	return r.sources[n]
}

// Text returns the text of a string placeholder.
func (r *Registry) Text(n *syntax.Node) string {
	return r.texts[n]
}

// Placeholders returns every placeholder in creation order.
func (r *Registry) Placeholders() []*syntax.Node {
	out := make([]*syntax.Node, len(r.order))
	copy(out, r.order)
	return out
}
