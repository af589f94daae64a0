package rewrite

import (
	"fmt"
	"strings"

	"github.com/yaklabco/treewrite/pkg/syntax"
)

// marker is a stand-in identifier emitted in place of a node whose text
// comes from the original buffer or a string placeholder.
type marker struct {
	text string
	node *syntax.Node

	// terminated markers are followed by ";" so that the formatter lays
	// them out as statements.
	terminated bool
}

const markerPrefix = "__tw_ph"

// flattenRule writes the canonical text of one node kind.
type flattenRule func(f *flattener, n *syntax.Node) error

// flattener serializes freshly built nodes without looking at source positions.
// Placeholders and nodes of the original tree become markers that the
// analyzer substitutes after formatting.
type flattener struct {
	store    *Store
	registry *Registry
	rules    map[syntax.NodeKind]flattenRule
	buf      strings.Builder
	markers  []marker
}

func newFlattener(store *Store, registry *Registry, rules map[syntax.NodeKind]flattenRule) *flattener {
	return &flattener{store: store, registry: registry, rules: rules}
}

// flatten returns the text of n together with the markers it contains.
func (f *flattener) flatten(n *syntax.Node) (string, []marker, error) {
	f.buf.Reset()
	f.markers = nil
	if err := f.node(n); err != nil {
		return "", nil, err
	}
	return f.buf.String(), f.markers, nil
}

func (f *flattener) write(parts ...string) {
	for _, part := range parts {
		f.buf.WriteString(part)
	}
}

func (f *flattener) node(n *syntax.Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrConsistency)
	}
	if f.registry.IsPlaceholder(n) || n.HasRange() {
		m := marker{
			text:       fmt.Sprintf("%s%d__", markerPrefix, len(f.markers)),
			node:       n,
			terminated: n.Kind.IsLineOriented(),
		}
		f.markers = append(f.markers, m)
		f.write(m.text)
		if m.terminated {
			f.write(";")
		}
		return nil
	}
	rule, ok := f.rules[n.Kind]
	if !ok {
		return fmt.Errorf("%w: no flatten rule for %v", ErrConsistency, n.Kind)
	}
	return rule(f, n)
}

// child returns the current value of a single-valued slot, new value first.
func (f *flattener) child(n *syntax.Node, prop *syntax.Property) *syntax.Node {
	if ev := f.store.lookupNode(n, prop); ev != nil {
		return ev.New()
	}
	return n.Child(prop)
}

// required writes a mandatory child.
func (f *flattener) required(n *syntax.Node, prop *syntax.Property) error {
	value := f.child(n, prop)
	if value == nil {
		return fmt.Errorf("%w: %v has no %s", ErrConsistency, n.Kind, prop.Name)
	}
	return f.node(value)
}

// optional writes prefix and an optional child when it is present.
func (f *flattener) optional(n *syntax.Node, prop *syntax.Property, prefix string) error {
	value := f.child(n, prop)
	if value == nil {
		return nil
	}
	f.write(prefix)
	return f.node(value)
}

func (f *flattener) list(n *syntax.Node, prop *syntax.Property, sep string) error {
	items := n.List(prop)
	if ev := f.store.lookupList(n, prop); ev != nil {
		items = ev.New()
	}
	for idx, item := range items {
		if idx > 0 {
			f.write(sep)
		}
		if err := f.node(item); err != nil {
			return err
		}
	}
	return nil
}

func (f *flattener) attr(n *syntax.Node, prop *syntax.Property) error {
	value := n.Attr(prop)
	if ev := f.store.lookupNode(n, prop); ev != nil {
		value = ev.NewText()
	}
	if value == "" {
		return fmt.Errorf("%w: %v has an empty %s", ErrConsistency, n.Kind, prop.Name)
	}
	f.write(value)
	return nil
}

// flattenRules returns the serialization rule of every node kind.
func flattenRules() map[syntax.NodeKind]flattenRule {
	return map[syntax.NodeKind]flattenRule{
		syntax.KindProgram: func(f *flattener, n *syntax.Node) error {
			return f.list(n, syntax.ProgramStatements, "\n")
		},
		syntax.KindImportDeclaration: func(f *flattener, n *syntax.Node) error {
			f.write("import ")
			if err := f.attr(n, syntax.ImportName); err != nil {
				return err
			}
			f.write(";")
			return nil
		},
		syntax.KindFunctionDeclaration: func(f *flattener, n *syntax.Node) error {
			f.write("func ")
			if err := f.required(n, syntax.FunctionName); err != nil {
				return err
			}
			f.write("(")
			if err := f.list(n, syntax.FunctionParameters, ", "); err != nil {
				return err
			}
			f.write(")")
			if err := f.optional(n, syntax.FunctionReturnType, ": "); err != nil {
				return err
			}
			f.write(" ")
			return f.required(n, syntax.FunctionBody)
		},
		syntax.KindParameter: func(f *flattener, n *syntax.Node) error {
			if err := f.required(n, syntax.ParameterName); err != nil {
				return err
			}
			f.write(": ")
			return f.required(n, syntax.ParameterType)
		},
		syntax.KindClassDeclaration: func(f *flattener, n *syntax.Node) error {
			f.write("class ")
			if err := f.required(n, syntax.ClassName); err != nil {
				return err
			}
			f.write(" { ")
			if err := f.list(n, syntax.ClassMembers, " "); err != nil {
				return err
			}
			f.write(" }")
			return nil
		},
		syntax.KindVariableDeclaration: func(f *flattener, n *syntax.Node) error {
			f.write("var ")
			if err := f.required(n, syntax.VariableName); err != nil {
				return err
			}
			if err := f.optional(n, syntax.VariableType, ": "); err != nil {
				return err
			}
			if err := f.optional(n, syntax.VariableInitializer, " = "); err != nil {
				return err
			}
			f.write(";")
			return nil
		},
		syntax.KindBlock: func(f *flattener, n *syntax.Node) error {
			f.write("{ ")
			if err := f.list(n, syntax.BlockStatements, " "); err != nil {
				return err
			}
			f.write(" }")
			return nil
		},
		syntax.KindExpressionStatement: func(f *flattener, n *syntax.Node) error {
			if err := f.required(n, syntax.ExpressionStatementExpression); err != nil {
				return err
			}
			f.write(";")
			return nil
		},
		syntax.KindIfStatement: func(f *flattener, n *syntax.Node) error {
			f.write("if (")
			if err := f.required(n, syntax.IfExpression); err != nil {
				return err
			}
			f.write(") ")
			if err := f.required(n, syntax.IfThen); err != nil {
				return err
			}
			return f.optional(n, syntax.IfElse, " else ")
		},
		syntax.KindWhileStatement: func(f *flattener, n *syntax.Node) error {
			f.write("while (")
			if err := f.required(n, syntax.WhileExpression); err != nil {
				return err
			}
			f.write(") ")
			return f.required(n, syntax.WhileBody)
		},
		syntax.KindReturnStatement: func(f *flattener, n *syntax.Node) error {
			f.write("return")
			if err := f.optional(n, syntax.ReturnExpression, " "); err != nil {
				return err
			}
			f.write(";")
			return nil
		},
		syntax.KindAssignment: func(f *flattener, n *syntax.Node) error {
			return f.binary(n, syntax.AssignmentLeft, syntax.AssignmentOperator, syntax.AssignmentRight)
		},
		syntax.KindInfixExpression: func(f *flattener, n *syntax.Node) error {
			return f.binary(n, syntax.InfixLeft, syntax.InfixOperator, syntax.InfixRight)
		},
		syntax.KindPrefixExpression: func(f *flattener, n *syntax.Node) error {
			if err := f.attr(n, syntax.PrefixOperator); err != nil {
				return err
			}
			return f.required(n, syntax.PrefixOperand)
		},
		syntax.KindParenthesizedExpression: func(f *flattener, n *syntax.Node) error {
			f.write("(")
			if err := f.required(n, syntax.ParenthesizedExpressionExpression); err != nil {
				return err
			}
			f.write(")")
			return nil
		},
		syntax.KindMethodInvocation: func(f *flattener, n *syntax.Node) error {
			if receiver := f.child(n, syntax.InvocationExpression); receiver != nil {
				if err := f.node(receiver); err != nil {
					return err
				}
				f.write(".")
			}
			if err := f.required(n, syntax.InvocationName); err != nil {
				return err
			}
			f.write("(")
			if err := f.list(n, syntax.InvocationArguments, ", "); err != nil {
				return err
			}
			f.write(")")
			return nil
		},
		syntax.KindFieldAccess: func(f *flattener, n *syntax.Node) error {
			if err := f.required(n, syntax.FieldAccessExpression); err != nil {
				return err
			}
			f.write(".")
			return f.required(n, syntax.FieldAccessName)
		},
		syntax.KindSimpleName: func(f *flattener, n *syntax.Node) error {
			return f.attr(n, syntax.SimpleNameIdentifier)
		},
		syntax.KindLiteral: func(f *flattener, n *syntax.Node) error {
			return f.attr(n, syntax.LiteralToken)
		},
		syntax.KindSimpleType: func(f *flattener, n *syntax.Node) error {
			return f.attr(n, syntax.SimpleTypeName)
		},
	}
}

func (f *flattener) binary(n *syntax.Node, left, op, right *syntax.Property) error {
	if err := f.required(n, left); err != nil {
		return err
	}
	f.write(" ")
	if err := f.attr(n, op); err != nil {
		return err
	}
	f.write(" ")
	return f.required(n, right)
}
