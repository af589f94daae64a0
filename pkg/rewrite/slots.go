package rewrite

import (
	"fmt"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/scanner"
)

// slotRule describes the grammar around an optional child.
type slotRule struct {
	// lead is the token before the child that is removed with it.
	lead string

	// trail is the token after the child that is removed with it.
	trail string

	// anchor locates the insertion offset when the slot is empty.
	anchor func(a *analyzer, parent *syntax.Node) (int, error)

	// prefix and suffix surround inserted text.
	prefix string
	suffix string
}

//nolint:gochecknoglobals // Read-only rule table.
var slotRules = map[*syntax.Property]slotRule{
	syntax.IfElse: {
		lead:   "else",
		prefix: " else ",
		anchor: func(_ *analyzer, parent *syntax.Node) (int, error) {
			return parent.Child(syntax.IfThen).End(), nil
		},
	},
	syntax.ReturnExpression: {
		prefix: " ",
		anchor: func(a *analyzer, parent *syntax.Node) (int, error) {
			tok, err := a.expectAt(parent.Start, "return")
			return tok.End, err
		},
	},
	syntax.VariableType: {
		lead:   ":",
		prefix: ": ",
		anchor: func(_ *analyzer, parent *syntax.Node) (int, error) {
			return parent.Child(syntax.VariableName).End(), nil
		},
	},
	syntax.VariableInitializer: {
		lead:   "=",
		prefix: " = ",
		anchor: func(a *analyzer, parent *syntax.Node) (int, error) {
			tok, err := a.scan.PreviousToken(parent.End())
			if err != nil {
				return 0, err
			}
			if !tok.Is(";") {
				return 0, fmt.Errorf("%w: %q at end of %v", scanner.ErrAnchorNotFound, ";", parent)
			}
			return tok.Start, nil
		},
	},
	syntax.FunctionReturnType: {
		lead:   ":",
		prefix: ": ",
		anchor: func(a *analyzer, parent *syntax.Node) (int, error) {
			name := parent.Child(syntax.FunctionName)
			body := parent.Child(syntax.FunctionBody)
			tok, err := a.scan.FindNext(")", name.End(), body.Start)
			return tok.End, err
		},
	},
	syntax.InvocationExpression: {
		trail:  ".",
		suffix: ".",
		anchor: func(_ *analyzer, parent *syntax.Node) (int, error) {
			return parent.Start, nil
		},
	},
}

// expectAt returns the token at offset and checks its spelling.
func (a *analyzer) expectAt(offset int, text string) (scanner.Token, error) {
	tok, err := a.scan.TokenAt(offset)
	if err != nil {
		return tok, err
	}
	if !tok.Is(text) {
		return tok, fmt.Errorf("%w: want %q at offset %d, got %q", scanner.ErrAnchorNotFound, text, offset, tok.Text)
	}
	return tok, nil
}

// visitChild handles one single-valued property of an original node.
func (a *analyzer) visitChild(parent *syntax.Node, prop *syntax.Property) error {
	current := parent.Child(prop)
	ev := a.store.lookupNode(parent, prop)
	if ev == nil || ev.Kind() == Unchanged {
		if current == nil {
			return nil
		}
		return a.visit(current)
	}

	a.log.Debug("slot changed", logging.FieldProperty, prop.String(), logging.FieldKind, ev.Kind().String())
	switch ev.Kind() {
	case Removed:
		start, end, err := a.removalRange(prop, current)
		if err != nil {
			return err
		}
		a.out.Delete(start, end)

	case Replaced:
		text, err := a.serialize(ev.New(), a.lineIndent(current.Start))
		if err != nil {
			return err
		}
		a.out.Replace(current.Start, current.End(), text)

	case Inserted:
		rule, ok := slotRules[prop]
		if !ok {
			return fmt.Errorf("%w: no insertion rule for %v", ErrConsistency, prop)
		}
		offset, err := rule.anchor(a, parent)
		if err != nil {
			return fmt.Errorf("inserting %v: %w", prop, err)
		}
		text, err := a.serialize(ev.New(), a.lineIndent(offset))
		if err != nil {
			return err
		}
		a.out.Insert(offset, rule.prefix+text+rule.suffix)

	case Unchanged, ChildrenChanged:
	}
	a.consume(ev)
	return nil
}

// removalRange returns the bytes deleted with a removed optional child:
// the child, its lead-in token and the whitespace before it, or the child
// up to the token after its trailing separator.
func (a *analyzer) removalRange(prop *syntax.Property, child *syntax.Node) (int, int, error) {
	rule, ok := slotRules[prop]
	if !ok {
		return 0, 0, fmt.Errorf("%w: no removal rule for %v", ErrConsistency, prop)
	}

	if rule.trail != "" {
		trail, err := a.scan.NextToken(child.End())
		if err != nil {
			return 0, 0, err
		}
		if !trail.Is(rule.trail) {
			return 0, 0, fmt.Errorf("%w: want %q after %v", scanner.ErrAnchorNotFound, rule.trail, child)
		}
		after, err := a.scan.NextToken(trail.End)
		if err != nil {
			return 0, 0, err
		}
		return child.Start, after.Start, nil
	}

	before, err := a.scan.PreviousToken(child.Start)
	if err != nil {
		return 0, 0, err
	}
	if rule.lead != "" {
		if !before.Is(rule.lead) {
			return 0, 0, fmt.Errorf("%w: want %q before %v", scanner.ErrAnchorNotFound, rule.lead, child)
		}
		if before, err = a.scan.PreviousToken(before.Start); err != nil {
			return 0, 0, err
		}
	}
	return before.End, child.End(), nil
}

// visitAttribute rewrites the token range holding an attribute value.
func (a *analyzer) visitAttribute(n *syntax.Node, prop *syntax.Property) error {
	ev := a.store.lookupNode(n, prop)
	if ev == nil || ev.Kind() != Replaced {
		return nil
	}
	start, end, err := a.attributeRange(n, prop)
	if err != nil {
		return err
	}
	a.out.Replace(start, end, ev.NewText())
	a.consume(ev)
	return nil
}

func (a *analyzer) attributeRange(n *syntax.Node, prop *syntax.Property) (int, int, error) {
	switch prop {
	case syntax.SimpleNameIdentifier, syntax.LiteralToken, syntax.SimpleTypeName:
		return n.Start, n.End(), nil

	case syntax.ImportName:
		keyword, err := a.expectAt(n.Start, "import")
		if err != nil {
			return 0, 0, err
		}
		first, err := a.scan.NextToken(keyword.End)
		if err != nil {
			return 0, 0, err
		}
		semi, err := a.scan.PreviousToken(n.End())
		if err != nil {
			return 0, 0, err
		}
		last, err := a.scan.PreviousToken(semi.Start)
		if err != nil {
			return 0, 0, err
		}
		return first.Start, last.End, nil

	case syntax.InfixOperator, syntax.AssignmentOperator:
		left := syntax.InfixLeft
		if prop == syntax.AssignmentOperator {
			left = syntax.AssignmentLeft
		}
		tok, err := a.scan.NextToken(n.Child(left).End())
		if err != nil {
			return 0, 0, err
		}
		return tok.Start, tok.End, nil

	case syntax.PrefixOperator:
		tok, err := a.scan.TokenAt(n.Start)
		if err != nil {
			return 0, 0, err
		}
		return tok.Start, tok.End, nil
	}
	return 0, 0, fmt.Errorf("%w: no token range for %v", ErrConsistency, prop)
}
