package parser

import (
	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/scanner"
)

func (p *parser) statement() (*syntax.Node, error) {
	switch {
	case p.is("var"):
		return p.varDecl()
	case p.is("if"):
		return p.ifStmt()
	case p.is("while"):
		return p.whileStmt()
	case p.is("return"):
		return p.returnStmt()
	case p.is("{"):
		return p.block()
	case p.atEOF():
		return nil, p.unexpected("statement")
	default:
		return p.exprStmt()
	}
}

func (p *parser) varDecl() (*syntax.Node, error) {
	start := p.next()

	name, err := p.name()
	if err != nil {
		return nil, err
	}

	var typ, init *syntax.Node
	if _, ok := p.accept(":"); ok {
		if typ, err = p.typeRef(); err != nil {
			return nil, err
		}
	}
	if _, ok := p.accept("="); ok {
		if init, err = p.expression(); err != nil {
			return nil, err
		}
	}

	semi, err := p.expect(";")
	if err != nil {
		return nil, err
	}

	node := span(syntax.KindVariableDeclaration, start.Start, semi.End)
	node.SetChild(syntax.VariableName, name)
	node.SetChild(syntax.VariableType, typ)
	node.SetChild(syntax.VariableInitializer, init)
	return node, nil
}

func (p *parser) condition() (*syntax.Node, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *parser) ifStmt() (*syntax.Node, error) {
	start := p.next()

	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	then, err := p.statement()
	if err != nil {
		return nil, err
	}

	end := then.End()
	var elseStmt *syntax.Node
	if _, ok := p.accept("else"); ok {
		if elseStmt, err = p.statement(); err != nil {
			return nil, err
		}
		end = elseStmt.End()
	}

	node := span(syntax.KindIfStatement, start.Start, end)
	node.SetChild(syntax.IfExpression, cond)
	node.SetChild(syntax.IfThen, then)
	node.SetChild(syntax.IfElse, elseStmt)
	return node, nil
}

func (p *parser) whileStmt() (*syntax.Node, error) {
	start := p.next()

	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	node := span(syntax.KindWhileStatement, start.Start, body.End())
	node.SetChild(syntax.WhileExpression, cond)
	node.SetChild(syntax.WhileBody, body)
	return node, nil
}

func (p *parser) returnStmt() (*syntax.Node, error) {
	start := p.next()

	var value *syntax.Node
	if !p.is(";") {
		var err error
		if value, err = p.expression(); err != nil {
			return nil, err
		}
	}

	semi, err := p.expect(";")
	if err != nil {
		return nil, err
	}

	node := span(syntax.KindReturnStatement, start.Start, semi.End)
	node.SetChild(syntax.ReturnExpression, value)
	return node, nil
}

func (p *parser) block() (*syntax.Node, error) {
	start, err := p.expect("{")
	if err != nil {
		return nil, err
	}

	var stmts []*syntax.Node
	for !p.is("}") {
		if p.atEOF() {
			return nil, p.unexpected(`"}"`)
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	end := p.next()

	node := span(syntax.KindBlock, start.Start, end.End)
	node.SetList(syntax.BlockStatements, stmts)
	return node, nil
}

func (p *parser) exprStmt() (*syntax.Node, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	semi, err := p.expect(";")
	if err != nil {
		return nil, err
	}

	node := span(syntax.KindExpressionStatement, expr.Start, semi.End)
	node.SetChild(syntax.ExpressionStatementExpression, expr)
	return node, nil
}

// binaryLevels lists infix operators from lowest to highest precedence.
//
//nolint:gochecknoglobals // Read-only precedence table.
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

func (p *parser) expression() (*syntax.Node, error) {
	left, err := p.binary(0)
	if err != nil {
		return nil, err
	}
	if op, ok := p.accept("="); ok {
		right, err := p.expression()
		if err != nil {
			return nil, err
		}
		node := span(syntax.KindAssignment, left.Start, right.End())
		node.SetChild(syntax.AssignmentLeft, left)
		node.SetAttr(syntax.AssignmentOperator, op.Text)
		node.SetChild(syntax.AssignmentRight, right)
		return node, nil
	}
	return left, nil
}

func (p *parser) binary(level int) (*syntax.Node, error) {
	if level == len(binaryLevels) {
		return p.unary()
	}

	left, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptAny(binaryLevels[level])
		if !ok {
			return left, nil
		}
		right, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		node := span(syntax.KindInfixExpression, left.Start, right.End())
		node.SetChild(syntax.InfixLeft, left)
		node.SetAttr(syntax.InfixOperator, op.Text)
		node.SetChild(syntax.InfixRight, right)
		left = node
	}
}

func (p *parser) acceptAny(ops []string) (scanner.Token, bool) {
	for _, op := range ops {
		if tok, ok := p.accept(op); ok {
			return tok, true
		}
	}
	return scanner.Token{}, false
}

func (p *parser) unary() (*syntax.Node, error) {
	if op, ok := p.acceptAny([]string{"!", "-"}); ok {
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		node := span(syntax.KindPrefixExpression, op.Start, operand.End())
		node.SetAttr(syntax.PrefixOperator, op.Text)
		node.SetChild(syntax.PrefixOperand, operand)
		return node, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (*syntax.Node, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.is(".") {
		p.next()
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		if p.is("(") {
			expr, err = p.invocation(expr, name)
			if err != nil {
				return nil, err
			}
			continue
		}
		access := span(syntax.KindFieldAccess, expr.Start, name.End())
		access.SetChild(syntax.FieldAccessExpression, expr)
		access.SetChild(syntax.FieldAccessName, name)
		expr = access
	}
	return expr, nil
}

// invocation parses an argument list; receiver may be nil.
func (p *parser) invocation(receiver, name *syntax.Node) (*syntax.Node, error) {
	p.next()

	var args []*syntax.Node
	if !p.is(")") {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if _, ok := p.accept(","); !ok {
				break
			}
		}
	}
	end, err := p.expect(")")
	if err != nil {
		return nil, err
	}

	start := name.Start
	if receiver != nil {
		start = receiver.Start
	}
	node := span(syntax.KindMethodInvocation, start, end.End)
	node.SetChild(syntax.InvocationExpression, receiver)
	node.SetChild(syntax.InvocationName, name)
	node.SetList(syntax.InvocationArguments, args)
	return node, nil
}

func (p *parser) primary() (*syntax.Node, error) {
	tok := p.peek()
	switch {
	case tok.Kind == scanner.TokIdent:
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		if p.is("(") {
			return p.invocation(nil, name)
		}
		return name, nil
	case tok.Kind == scanner.TokNumber || tok.Kind == scanner.TokString ||
		tok.Is("true") || tok.Is("false") || tok.Is("null"):
		p.next()
		node := span(syntax.KindLiteral, tok.Start, tok.End)
		node.SetAttr(syntax.LiteralToken, tok.Text)
		return node, nil
	case tok.Is("("):
		p.next()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		end, err := p.expect(")")
		if err != nil {
			return nil, err
		}
		node := span(syntax.KindParenthesizedExpression, tok.Start, end.End)
		node.SetChild(syntax.ParenthesizedExpressionExpression, inner)
		return node, nil
	default:
		return nil, p.unexpected("expression")
	}
}
