package syntax

import "fmt"

// Cardinality describes what a property holds.
type Cardinality uint8

const (
	// CardinalityChild holds a single child node (possibly nil when optional).
	CardinalityChild Cardinality = iota

	// CardinalityList holds an ordered list of child nodes.
	CardinalityList

	// CardinalityAttribute holds a string value such as an operator or identifier.
	CardinalityAttribute
)

// String returns a human-readable name for the cardinality.
func (c Cardinality) String() string {
	switch c {
	case CardinalityChild:
		return "child"
	case CardinalityList:
		return "list"
	case CardinalityAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// ListLayout describes how the entries of a list property are laid out in source.
type ListLayout uint8

const (
	// LayoutNone is used by non-list properties.
	LayoutNone ListLayout = iota

	// LayoutLines places one entry per line (statements, members).
	LayoutLines

	// LayoutJoined separates entries with ", " on one line (parameters, arguments).
	LayoutJoined
)

// Property describes a named slot declared by a node kind.
// Descriptors are package-level singletons and are compared by identity.
type Property struct {
	// Owner is the node kind that declares this property.
	Owner NodeKind

	// Name is the property name used in paths and diagnostics.
	Name string

	// Cardinality tells whether the slot holds a child, a list or an attribute.
	Cardinality Cardinality

	// Mandatory is true when a child property can never be absent.
	Mandatory bool

	// Accepts is the category of node kinds allowed in the slot.
	Accepts Category

	// Layout is the list layout for list properties.
	Layout ListLayout

	index int
}

// String returns "Owner.name".
func (p *Property) String() string {
	return fmt.Sprintf("%s.%s", p.Owner, p.Name)
}

// IsList returns true for list properties.
func (p *Property) IsList() bool {
	return p.Cardinality == CardinalityList
}

// IsAttribute returns true for attribute properties.
func (p *Property) IsAttribute() bool {
	return p.Cardinality == CardinalityAttribute
}

// Index returns the position of the property in its owner's declaration order.
func (p *Property) Index() int {
	return p.index
}

//nolint:gochecknoglobals // Populated once during package initialization.
var propertyTable = make(map[NodeKind][]*Property)

func declare(owner NodeKind, name string, card Cardinality, mandatory bool, accepts Category, layout ListLayout) *Property {
	prop := &Property{
		Owner:       owner,
		Name:        name,
		Cardinality: card,
		Mandatory:   mandatory,
		Accepts:     accepts,
		Layout:      layout,
		index:       len(propertyTable[owner]),
	}
	propertyTable[owner] = append(propertyTable[owner], prop)
	return prop
}

func child(owner NodeKind, name string, accepts Category) *Property {
	return declare(owner, name, CardinalityChild, true, accepts, LayoutNone)
}

func optional(owner NodeKind, name string, accepts Category) *Property {
	return declare(owner, name, CardinalityChild, false, accepts, LayoutNone)
}

func list(owner NodeKind, name string, accepts Category, layout ListLayout) *Property {
	return declare(owner, name, CardinalityList, false, accepts, layout)
}

func attribute(owner NodeKind, name string) *Property {
	return declare(owner, name, CardinalityAttribute, true, CategoryNone, LayoutNone)
}

// Property descriptors, grouped by owner kind in declaration order.
//
//nolint:gochecknoglobals // Descriptors are immutable singletons.
var (
	ProgramStatements = list(KindProgram, "statements", CategoryTopLevel, LayoutLines)

	ImportName = attribute(KindImportDeclaration, "name")

	FunctionName       = child(KindFunctionDeclaration, "name", CategoryName)
	FunctionParameters = list(KindFunctionDeclaration, "parameters", CategoryParameter, LayoutJoined)
	FunctionReturnType = optional(KindFunctionDeclaration, "returnType", CategoryType)
	FunctionBody       = child(KindFunctionDeclaration, "body", CategoryStatement)

	ParameterName = child(KindParameter, "name", CategoryName)
	ParameterType = child(KindParameter, "type", CategoryType)

	ClassName    = child(KindClassDeclaration, "name", CategoryName)
	ClassMembers = list(KindClassDeclaration, "members", CategoryMember, LayoutLines)

	VariableName        = child(KindVariableDeclaration, "name", CategoryName)
	VariableType        = optional(KindVariableDeclaration, "type", CategoryType)
	VariableInitializer = optional(KindVariableDeclaration, "initializer", CategoryExpression)

	BlockStatements = list(KindBlock, "statements", CategoryStatement, LayoutLines)

	ExpressionStatementExpression = child(KindExpressionStatement, "expression", CategoryExpression)

	IfExpression = child(KindIfStatement, "expression", CategoryExpression)
	IfThen       = child(KindIfStatement, "thenStatement", CategoryStatement)
	IfElse       = optional(KindIfStatement, "elseStatement", CategoryStatement)

	WhileExpression = child(KindWhileStatement, "expression", CategoryExpression)
	WhileBody       = child(KindWhileStatement, "body", CategoryStatement)

	ReturnExpression = optional(KindReturnStatement, "expression", CategoryExpression)

	AssignmentLeft     = child(KindAssignment, "left", CategoryExpression)
	AssignmentOperator = attribute(KindAssignment, "operator")
	AssignmentRight    = child(KindAssignment, "right", CategoryExpression)

	InfixLeft     = child(KindInfixExpression, "left", CategoryExpression)
	InfixOperator = attribute(KindInfixExpression, "operator")
	InfixRight    = child(KindInfixExpression, "right", CategoryExpression)

	PrefixOperator = attribute(KindPrefixExpression, "operator")
	PrefixOperand  = child(KindPrefixExpression, "operand", CategoryExpression)

	ParenthesizedExpressionExpression = child(KindParenthesizedExpression, "expression", CategoryExpression)

	InvocationExpression = optional(KindMethodInvocation, "expression", CategoryExpression)
	InvocationName       = child(KindMethodInvocation, "name", CategoryName)
	InvocationArguments  = list(KindMethodInvocation, "arguments", CategoryExpression, LayoutJoined)

	FieldAccessExpression = child(KindFieldAccess, "expression", CategoryExpression)
	FieldAccessName       = child(KindFieldAccess, "name", CategoryName)

	SimpleNameIdentifier = attribute(KindSimpleName, "identifier")

	LiteralToken = attribute(KindLiteral, "token")

	SimpleTypeName = attribute(KindSimpleType, "name")
)

// PropertiesOf returns the properties declared by kind in declaration order.
// The returned slice must not be modified.
func PropertiesOf(kind NodeKind) []*Property {
	return propertyTable[kind]
}

// LookupProperty finds a property of kind by name.
func LookupProperty(kind NodeKind, name string) (*Property, bool) {
	for _, prop := range propertyTable[kind] {
		if prop.Name == name {
			return prop, true
		}
	}
	return nil, false
}

// Declares reports whether prop is declared by kind.
func Declares(kind NodeKind, prop *Property) bool {
	if prop == nil || prop.Owner != kind {
		return false
	}
	props := propertyTable[kind]
	return prop.index < len(props) && props[prop.index] == prop
}
