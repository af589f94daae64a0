// Package syntax provides the tree representation rewritten by treewrite.
// It defines a plain, position-aware view of a tw source file:
// - File: the buffer, its line index and the tree root
// - Node: a vertex with a kind, declared properties and a source range
// - Property: the descriptor of a named slot on a node kind
package syntax

// NodeKind classifies the type of a tree node.
type NodeKind uint16

// Node kinds for declarations, statements and expressions.
const (
	KindProgram NodeKind = iota

	// Declarations.
	KindImportDeclaration
	KindFunctionDeclaration
	KindParameter
	KindClassDeclaration
	KindVariableDeclaration

	// Statements.
	KindBlock
	KindExpressionStatement
	KindIfStatement
	KindWhileStatement
	KindReturnStatement

	// Expressions.
	KindAssignment
	KindInfixExpression
	KindPrefixExpression
	KindParenthesizedExpression
	KindMethodInvocation
	KindFieldAccess
	KindSimpleName
	KindLiteral

	// Types.
	KindSimpleType

	kindCount
)

//nolint:gochecknoglobals // Read-only lookup table.
var kindNames = [...]string{
	KindProgram:                 "Program",
	KindImportDeclaration:       "ImportDeclaration",
	KindFunctionDeclaration:     "FunctionDeclaration",
	KindParameter:               "Parameter",
	KindClassDeclaration:        "ClassDeclaration",
	KindVariableDeclaration:     "VariableDeclaration",
	KindBlock:                   "Block",
	KindExpressionStatement:     "ExpressionStatement",
	KindIfStatement:             "IfStatement",
	KindWhileStatement:          "WhileStatement",
	KindReturnStatement:         "ReturnStatement",
	KindAssignment:              "Assignment",
	KindInfixExpression:         "InfixExpression",
	KindPrefixExpression:        "PrefixExpression",
	KindParenthesizedExpression: "ParenthesizedExpression",
	KindMethodInvocation:        "MethodInvocation",
	KindFieldAccess:             "FieldAccess",
	KindSimpleName:              "SimpleName",
	KindLiteral:                 "Literal",
	KindSimpleType:              "SimpleType",
}

// String returns the kind name.
func (k NodeKind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Unknown"
}

// Valid reports whether k is a declared node kind.
func (k NodeKind) Valid() bool {
	return k < kindCount
}

// ParseKind returns the kind named name, as printed by String.
func ParseKind(name string) (NodeKind, bool) {
	for k, kindName := range kindNames {
		if kindName == name {
			return NodeKind(k), true
		}
	}
	return 0, false
}

// Kinds returns every declared node kind in declaration order.
func Kinds() []NodeKind {
	kinds := make([]NodeKind, 0, kindCount)
	for k := range kindCount {
		kinds = append(kinds, k)
	}
	return kinds
}

// Category groups node kinds that may occupy the same kind of slot.
type Category uint8

const (
	// CategoryNone is used by attribute properties.
	CategoryNone Category = iota
	CategoryTopLevel
	CategoryMember
	CategoryStatement
	CategoryExpression
	CategoryName
	CategoryType
	CategoryParameter
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryTopLevel:
		return "top-level"
	case CategoryMember:
		return "member"
	case CategoryStatement:
		return "statement"
	case CategoryExpression:
		return "expression"
	case CategoryName:
		return "name"
	case CategoryType:
		return "type"
	case CategoryParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// Accepts reports whether a node of the given kind may occupy a slot of this category.
func (c Category) Accepts(kind NodeKind) bool {
	switch c {
	case CategoryTopLevel:
		return kind == KindImportDeclaration || kind == KindFunctionDeclaration ||
			kind == KindClassDeclaration || kind.IsStatement()
	case CategoryMember:
		return kind == KindVariableDeclaration || kind == KindFunctionDeclaration
	case CategoryStatement:
		return kind.IsStatement()
	case CategoryExpression:
		return kind.IsExpression()
	case CategoryName:
		return kind == KindSimpleName
	case CategoryType:
		return kind == KindSimpleType
	case CategoryParameter:
		return kind == KindParameter
	default:
		return false
	}
}

// IsStatement returns true for kinds that can appear in a block.
func (k NodeKind) IsStatement() bool {
	switch k {
	case KindVariableDeclaration, KindBlock, KindExpressionStatement,
		KindIfStatement, KindWhileStatement, KindReturnStatement:
		return true
	default:
		return false
	}
}

// IsExpression returns true for expression kinds.
func (k NodeKind) IsExpression() bool {
	switch k {
	case KindAssignment, KindInfixExpression, KindPrefixExpression,
		KindParenthesizedExpression, KindMethodInvocation, KindFieldAccess,
		KindSimpleName, KindLiteral:
		return true
	default:
		return false
	}
}

// IsLineOriented returns true for kinds that occupy whole lines when formatted:
// declarations and statements.
func (k NodeKind) IsLineOriented() bool {
	switch k {
	case KindImportDeclaration, KindFunctionDeclaration, KindClassDeclaration:
		return true
	default:
		return k.IsStatement()
	}
}
