package syntax

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned when a path does not resolve against a tree.
var ErrInvalidPath = errors.New("invalid path")

// Target is the result of resolving a path.
// A path designates either a node (Node != nil), an empty optional slot,
// a whole list property (Index == -1), or an attribute.
type Target struct {
	// Parent is the node declaring Property; nil for the root.
	Parent *Node

	// Property is the last property on the path; nil for the root.
	Property *Property

	// Index is the list index of the last segment, or -1.
	Index int

	// Node is the designated node, if any.
	Node *Node
}

// IsList returns true when the target designates a whole list property.
func (t Target) IsList() bool {
	return t.Property != nil && t.Property.IsList() && t.Index < 0
}

// IsAttribute returns true when the target designates an attribute.
func (t Target) IsAttribute() bool {
	return t.Property != nil && t.Property.IsAttribute()
}

// Resolve walks a dotted path such as "statements[1].expression.left" from root.
// The empty path designates the root itself.
func Resolve(root *Node, path string) (Target, error) {
	target := Target{Index: -1, Node: root}
	path = strings.TrimSpace(path)
	if path == "" {
		return target, nil
	}

	segments := strings.Split(path, ".")
	for segIdx, segment := range segments {
		last := segIdx == len(segments)-1
		current := target.Node
		if current == nil {
			return Target{}, fmt.Errorf("%w: %q: segment %q follows an empty slot", ErrInvalidPath, path, segment)
		}

		name, index, err := parseSegment(segment)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %q: %w", ErrInvalidPath, path, err)
		}

		prop, ok := LookupProperty(current.Kind, name)
		if !ok {
			return Target{}, fmt.Errorf("%w: %q: %v has no property %q", ErrInvalidPath, path, current.Kind, name)
		}

		target = Target{Parent: current, Property: prop, Index: index}

		switch prop.Cardinality {
		case CardinalityList:
			if index < 0 {
				if !last {
					return Target{}, fmt.Errorf("%w: %q: list %v needs an index", ErrInvalidPath, path, prop)
				}
				continue
			}
			items := current.List(prop)
			if index >= len(items) {
				return Target{}, fmt.Errorf("%w: %q: index %d out of range for %v (len %d)",
					ErrInvalidPath, path, index, prop, len(items))
			}
			target.Node = items[index]
		case CardinalityChild:
			if index >= 0 {
				return Target{}, fmt.Errorf("%w: %q: %v is not a list", ErrInvalidPath, path, prop)
			}
			target.Node = current.Child(prop)
		case CardinalityAttribute:
			if !last || index >= 0 {
				return Target{}, fmt.Errorf("%w: %q: attribute %v must be the last segment", ErrInvalidPath, path, prop)
			}
		}
	}

	return target, nil
}

func parseSegment(segment string) (string, int, error) {
	open := strings.IndexByte(segment, '[')
	if open < 0 {
		if segment == "" {
			return "", -1, errors.New("empty segment")
		}
		return segment, -1, nil
	}
	if !strings.HasSuffix(segment, "]") || open == 0 {
		return "", -1, fmt.Errorf("malformed segment %q", segment)
	}
	index, err := strconv.Atoi(segment[open+1 : len(segment)-1])
	if err != nil || index < 0 {
		return "", -1, fmt.Errorf("malformed index in %q", segment)
	}
	return segment[:open], index, nil
}

// PathOf returns the path of n relative to its root.
func PathOf(n *Node) string {
	var segments []string
	for cur := n; cur.Parent() != nil; cur = cur.Parent() {
		parent, prop := cur.Parent(), cur.Location()
		segment := prop.Name
		if prop.IsList() {
			for idx, item := range parent.List(prop) {
				if item == cur {
					segment += "[" + strconv.Itoa(idx) + "]"
					break
				}
			}
		}
		segments = append(segments, segment)
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, ".")
}
