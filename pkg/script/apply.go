package script

import (
	"context"
	"fmt"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/rewrite"
	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/parser"
)

// Apply records every operation of s on rw. It stops at the first failing
// operation and returns an *OperationError; events recorded by earlier
// operations stay in the store.
func Apply(ctx context.Context, rw *rewrite.Rewriter, s *Script) error {
	logger := logging.FromContext(ctx)
	a := &applier{rw: rw, root: rw.File().Root}

	for idx, op := range s.Operations {
		if err := a.apply(op); err != nil {
			return &OperationError{Index: idx, Op: op.Op, Err: err}
		}
		logger.Debug("recorded operation", logging.FieldOp, string(op.Op), logging.FieldPath, op.Path)
	}
	logger.Debug("script applied", logging.FieldOperations, len(s.Operations), logging.FieldEvents, rw.Store().Len())
	return nil
}

type applier struct {
	rw   *rewrite.Rewriter
	root *syntax.Node
}

func (a *applier) apply(op Operation) error {
	switch op.Op {
	case OpRemove:
		return a.remove(op)
	case OpReplace:
		return a.replace(op)
	case OpInsert:
		return a.insert(op)
	case OpCopy, OpMove:
		return a.transfer(op)
	case OpSet:
		return a.set(op)
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidScript, op.Op)
	}
}

// node resolves a path that must designate an existing, non-root node.
func (a *applier) node(path string) (syntax.Target, error) {
	target, err := syntax.Resolve(a.root, path)
	if err != nil {
		return target, err
	}
	switch {
	case target.IsAttribute(), target.IsList():
		return target, fmt.Errorf("%w: %q does not designate a node", ErrInvalidScript, path)
	case target.Parent == nil:
		return target, fmt.Errorf("%w: the root cannot be edited", ErrInvalidScript)
	case target.Node == nil:
		return target, fmt.Errorf("%w: %q is an empty slot", ErrInvalidScript, path)
	}
	return target, nil
}

func (a *applier) remove(op Operation) error {
	target, err := a.node(op.Path)
	if err != nil {
		return err
	}
	if target.Property.IsList() {
		lr, err := a.rw.ListRewrite(target.Parent, target.Property)
		if err != nil {
			return err
		}
		return lr.Remove(target.Node)
	}
	_, err = a.rw.Store().MarkRemove(target.Parent, target.Property, nil)
	return err
}

func (a *applier) replace(op Operation) error {
	target, err := a.node(op.Path)
	if err != nil {
		return err
	}
	value, err := a.value(op, target.Property)
	if err != nil {
		return err
	}
	return a.place(op, target, value)
}

func (a *applier) insert(op Operation) error {
	target, err := syntax.Resolve(a.root, op.Path)
	if err != nil {
		return err
	}
	if !target.IsList() && (target.Property == nil || target.Node != nil || target.IsAttribute()) {
		return fmt.Errorf("%w: %q is neither a list nor an empty slot", ErrInvalidScript, op.Path)
	}
	value, err := a.value(op, target.Property)
	if err != nil {
		return err
	}
	return a.place(op, target, value)
}

// transfer handles copy and move: a placeholder for the source is placed at
// the destination like an inserted or replacing value.
func (a *applier) transfer(op Operation) error {
	src, err := a.node(op.From)
	if err != nil {
		return err
	}
	dst, err := syntax.Resolve(a.root, op.Path)
	if err != nil {
		return err
	}
	if dst.Property == nil || dst.IsAttribute() {
		return fmt.Errorf("%w: %q cannot receive a node", ErrInvalidScript, op.Path)
	}

	placeholder, err := a.placeholder(op, src)
	if err != nil {
		return err
	}
	return a.place(op, dst, placeholder)
}

func (a *applier) placeholder(op Operation, src syntax.Target) (*syntax.Node, error) {
	move := op.Op == OpMove
	if !src.Property.IsList() {
		if op.Through != "" {
			return nil, fmt.Errorf("%w: through needs a list entry in from", ErrInvalidScript)
		}
		registry := a.rw.Registry()
		if !move {
			return registry.CreateCopyPlaceholder(src.Node)
		}
		if err := a.rw.Store().CheckMoveSource(src.Parent, src.Property, src.Node); err != nil {
			return nil, err
		}
		placeholder, err := registry.CreateMovePlaceholder(src.Node)
		if err != nil {
			return nil, err
		}
		if _, err := a.rw.Store().MarkRemove(src.Parent, src.Property, nil); err != nil {
			return nil, err
		}
		return placeholder, nil
	}

	last := src.Node
	if op.Through != "" {
		end, err := a.node(op.Through)
		if err != nil {
			return nil, err
		}
		if end.Parent != src.Parent || end.Property != src.Property {
			return nil, fmt.Errorf("%w: %q and %q are not in the same list", ErrInvalidScript, op.From, op.Through)
		}
		last = end.Node
	}

	lr, err := a.rw.ListRewrite(src.Parent, src.Property)
	if err != nil {
		return nil, err
	}
	if move {
		return lr.CreateMoveTarget(src.Node, last)
	}
	return lr.CreateCopyTarget(src.Node, last)
}

// place records value at target: a whole list receives an insertion, an
// empty slot an insertion and an existing node a replacement.
func (a *applier) place(op Operation, target syntax.Target, value *syntax.Node) error {
	store := a.rw.Store()
	switch {
	case target.IsList():
		lr, err := a.rw.ListRewrite(target.Parent, target.Property)
		if err != nil {
			return err
		}
		return a.insertInto(op, lr, value)
	case target.Node == nil:
		_, err := store.MarkInsert(target.Parent, target.Property, value)
		return err
	case target.Property.IsList():
		lr, err := a.rw.ListRewrite(target.Parent, target.Property)
		if err != nil {
			return err
		}
		return lr.Replace(target.Node, value)
	default:
		_, err := store.MarkReplace(target.Parent, target.Property, value)
		return err
	}
}

func (a *applier) insertInto(op Operation, lr *rewrite.ListRewrite, value *syntax.Node) error {
	switch {
	case op.Before != "":
		sibling, err := a.sibling(lr, op.Before)
		if err != nil {
			return err
		}
		return lr.InsertBefore(value, sibling)
	case op.After != "":
		sibling, err := a.sibling(lr, op.After)
		if err != nil {
			return err
		}
		return lr.InsertAfter(value, sibling)
	case op.Index != nil:
		return lr.InsertAt(value, *op.Index)
	default:
		return lr.InsertLast(value)
	}
}

func (a *applier) sibling(lr *rewrite.ListRewrite, path string) (*syntax.Node, error) {
	target, err := a.node(path)
	if err != nil {
		return nil, err
	}
	if target.Parent != lr.Parent() || target.Property != lr.Property() {
		return nil, fmt.Errorf("%w: %q is not an entry of %v", ErrInvalidScript, path, lr.Property())
	}
	return target.Node, nil
}

// value builds the new node of a replace or insert for a slot of prop.
func (a *applier) value(op Operation, prop *syntax.Property) (*syntax.Node, error) {
	if op.Text != "" {
		kind, ok := syntax.ParseKind(op.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidScript, op.Kind)
		}
		return a.rw.Registry().CreateStringPlaceholder(op.Text, kind)
	}
	node, err := parser.ParseFragment(op.Code, prop.Accepts)
	if err != nil {
		return nil, fmt.Errorf("%w: code for %v: %w", ErrInvalidScript, prop, err)
	}
	return node, nil
}

func (a *applier) set(op Operation) error {
	target, err := syntax.Resolve(a.root, op.Path)
	if err != nil {
		return err
	}
	if !target.IsAttribute() {
		return fmt.Errorf("%w: %q is not an attribute", ErrInvalidScript, op.Path)
	}
	_, err = a.rw.Store().SetAttribute(target.Parent, target.Property, op.Value)
	return err
}
