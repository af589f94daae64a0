package syntax

import "fmt"

// Node represents a single vertex of the tree.
// Property values are stored in declaration order; the parent link is a
// non-owning back-reference maintained by the setters.
type Node struct {
	// Kind identifies what type of node this is.
	Kind NodeKind

	// Start is the byte offset of the node in the source buffer.
	// It is -1 for synthetic nodes that were never parsed.
	Start int

	// Length is the number of bytes covered by the node.
	Length int

	parent   *Node
	location *Property
	values   []any
}

// New creates a synthetic node of the given kind with no range and empty properties.
func New(kind NodeKind) *Node {
	return &Node{
		Kind:   kind,
		Start:  -1,
		values: make([]any, len(PropertiesOf(kind))),
	}
}

// HasRange returns true if the node was produced from source and has a real range.
func (n *Node) HasRange() bool {
	return n != nil && n.Start >= 0
}

// End returns the exclusive end offset of the node.
func (n *Node) End() int {
	return n.Start + n.Length
}

// Range returns the node's source range.
// Returns an empty range at -1 for synthetic nodes.
func (n *Node) Range() Range {
	if !n.HasRange() {
		return Range{Start: -1, End: -1}
	}
	return Range{Start: n.Start, End: n.End()}
}

// SetRange sets the node's source range.
func (n *Node) SetRange(start, end int) {
	n.Start = start
	n.Length = end - start
}

// Parent returns the node holding this node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Location returns the property of the parent under which this node is held.
func (n *Node) Location() *Property {
	return n.location
}

// Properties returns the properties declared for the node's kind.
func (n *Node) Properties() []*Property {
	return PropertiesOf(n.Kind)
}

func (n *Node) slot(prop *Property) int {
	if !Declares(n.Kind, prop) {
		panic(fmt.Sprintf("syntax: property %v is not declared by %v", prop, n.Kind))
	}
	if n.values == nil {
		n.values = make([]any, len(PropertiesOf(n.Kind)))
	}
	return prop.index
}

// Get returns the raw value of a property: *Node, []*Node or string.
// List values are returned as a copy.
func (n *Node) Get(prop *Property) any {
	idx := n.slot(prop)
	switch prop.Cardinality {
	case CardinalityChild:
		child, _ := n.values[idx].(*Node)
		return child
	case CardinalityList:
		return n.List(prop)
	default:
		return n.Attr(prop)
	}
}

// Child returns the child held by a single-child property, or nil.
// It panics if prop is not a child property declared by the node's kind.
func (n *Node) Child(prop *Property) *Node {
	idx := n.slot(prop)
	if prop.Cardinality != CardinalityChild {
		panic(fmt.Sprintf("syntax: property %v is not a child property", prop))
	}
	child, _ := n.values[idx].(*Node)
	return child
}

// List returns a copy of the children held by a list property.
func (n *Node) List(prop *Property) []*Node {
	idx := n.slot(prop)
	if prop.Cardinality != CardinalityList {
		panic(fmt.Sprintf("syntax: property %v is not a list property", prop))
	}
	items, _ := n.values[idx].([]*Node)
	out := make([]*Node, len(items))
	copy(out, items)
	return out
}

// Len returns the number of children held by a list property.
func (n *Node) Len(prop *Property) int {
	idx := n.slot(prop)
	items, _ := n.values[idx].([]*Node)
	return len(items)
}

// Attr returns the string held by an attribute property.
func (n *Node) Attr(prop *Property) string {
	idx := n.slot(prop)
	if prop.Cardinality != CardinalityAttribute {
		panic(fmt.Sprintf("syntax: property %v is not an attribute", prop))
	}
	value, _ := n.values[idx].(string)
	return value
}

// SetChild stores child under prop, detaching any previous child.
func (n *Node) SetChild(prop *Property, child *Node) {
	idx := n.slot(prop)
	if prop.Cardinality != CardinalityChild {
		panic(fmt.Sprintf("syntax: property %v is not a child property", prop))
	}
	if old, ok := n.values[idx].(*Node); ok && old != nil {
		old.parent, old.location = nil, nil
	}
	if child != nil {
		child.parent, child.location = n, prop
		n.values[idx] = child
		return
	}
	n.values[idx] = nil
}

// SetList replaces the children held by a list property.
func (n *Node) SetList(prop *Property, children []*Node) {
	idx := n.slot(prop)
	if prop.Cardinality != CardinalityList {
		panic(fmt.Sprintf("syntax: property %v is not a list property", prop))
	}
	items := make([]*Node, 0, len(children))
	for _, child := range children {
		if child == nil {
			continue
		}
		child.parent, child.location = n, prop
		items = append(items, child)
	}
	n.values[idx] = items
}

// Append adds children to the end of a list property.
func (n *Node) Append(prop *Property, children ...*Node) {
	idx := n.slot(prop)
	if prop.Cardinality != CardinalityList {
		panic(fmt.Sprintf("syntax: property %v is not a list property", prop))
	}
	items, _ := n.values[idx].([]*Node)
	for _, child := range children {
		if child == nil {
			continue
		}
		child.parent, child.location = n, prop
		items = append(items, child)
	}
	n.values[idx] = items
}

// SetAttr stores an attribute value.
func (n *Node) SetAttr(prop *Property, value string) {
	idx := n.slot(prop)
	if prop.Cardinality != CardinalityAttribute {
		panic(fmt.Sprintf("syntax: property %v is not an attribute", prop))
	}
	n.values[idx] = value
}

// Children returns all direct children in property declaration order.
func (n *Node) Children() []*Node {
	var children []*Node
	for _, prop := range n.Properties() {
		switch prop.Cardinality {
		case CardinalityChild:
			if child := n.Child(prop); child != nil {
				children = append(children, child)
			}
		case CardinalityList:
			items, _ := n.values[prop.index].([]*Node)
			children = append(children, items...)
		case CardinalityAttribute:
		}
	}
	return children
}

// IsAncestorOf reports whether n is a proper ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.Parent(); p != nil; p = p.Parent() {
		if p == n {
			return true
		}
	}
	return false
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// ClearRanges marks n and all its descendants as synthetic.
// Parsed fragments are detached this way so that they count as freshly built.
func ClearRanges(n *Node) {
	//nolint:errcheck,revive // Walk only returns nil errors in this usage
	Walk(n, func(node *Node) error {
		node.Start = -1
		node.Length = 0
		return nil
	})
}

// String returns a short description for diagnostics.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if !n.HasRange() {
		return n.Kind.String() + "[synthetic]"
	}
	return fmt.Sprintf("%s[%d,%d)", n.Kind, n.Start, n.End())
}
