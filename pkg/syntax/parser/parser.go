// Package parser builds syntax trees from tw source.
// The parser is a hand-written recursive descent over scanner tokens; every
// node it produces carries the exact byte range of its source text.
package parser

import (
	"fmt"
	"strings"

	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/scanner"
)

// SyntaxError describes a parse failure.
type SyntaxError struct {
	Path    string
	Line    int
	Column  int
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
}

// ParseFile parses a whole tw source file.
// The Program node spans the entire content.
func ParseFile(path string, content []byte) (*syntax.File, error) {
	file := syntax.NewFile(path, content)

	p, err := newParser(file)
	if err != nil {
		return nil, err
	}

	root := syntax.New(syntax.KindProgram)
	root.SetRange(0, len(content))
	for !p.atEOF() {
		stmt, err := p.topLevel()
		if err != nil {
			return nil, err
		}
		root.Append(syntax.ProgramStatements, stmt)
	}

	file.Root = root
	return file, nil
}

// ParseFragment parses src as a single node of the given category and returns
// it detached and without source ranges, ready to be used as a new value.
func ParseFragment(src string, category syntax.Category) (*syntax.Node, error) {
	file := syntax.NewFile("", []byte(src))

	p, err := newParser(file)
	if err != nil {
		return nil, err
	}

	var node *syntax.Node
	switch category {
	case syntax.CategoryTopLevel:
		node, err = p.topLevel()
	case syntax.CategoryMember:
		node, err = p.member()
	case syntax.CategoryStatement:
		node, err = p.statement()
	case syntax.CategoryExpression:
		node, err = p.expression()
	case syntax.CategoryName:
		node, err = p.name()
	case syntax.CategoryType:
		node, err = p.typeRef()
	case syntax.CategoryParameter:
		node, err = p.parameter()
	default:
		return nil, fmt.Errorf("cannot parse a fragment of category %v", category)
	}
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, p.errorf(p.peek(), "unexpected %q after %v", p.peek().Text, category)
	}

	syntax.ClearRanges(node)
	return node, nil
}

type parser struct {
	file   *syntax.File
	tokens []scanner.Token
	pos    int
}

func newParser(file *syntax.File) (*parser, error) {
	all, err := scanner.Tokenize(file.Content)
	if err != nil {
		return nil, &SyntaxError{Path: file.Path, Line: 1, Column: 1, Message: err.Error()}
	}
	p := &parser{file: file, tokens: scanner.Significant(all)}
	for _, tok := range p.tokens {
		if tok.Kind == scanner.TokInvalid {
			return nil, p.errorf(tok, "unexpected character %q", tok.Text)
		}
	}
	return p, nil
}

func (p *parser) errorf(tok scanner.Token, format string, args ...any) *SyntaxError {
	line, col := p.file.LineAt(tok.Start)
	return &SyntaxError{
		Path:    p.file.Path,
		Line:    line,
		Column:  col,
		Offset:  tok.Start,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) peek() scanner.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	end := len(p.file.Content)
	return scanner.Token{Kind: scanner.TokEOF, Start: end, End: end}
}

func (p *parser) atEOF() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) next() scanner.Token {
	tok := p.peek()
	if !p.atEOF() {
		p.pos++
	}
	return tok
}

func (p *parser) is(text string) bool {
	return p.peek().Is(text)
}

func (p *parser) accept(text string) (scanner.Token, bool) {
	if p.is(text) {
		return p.next(), true
	}
	return scanner.Token{}, false
}

func (p *parser) expect(text string) (scanner.Token, error) {
	if tok, ok := p.accept(text); ok {
		return tok, nil
	}
	return scanner.Token{}, p.unexpected(fmt.Sprintf("%q", text))
}

func (p *parser) unexpected(want string) *SyntaxError {
	tok := p.peek()
	if tok.Kind == scanner.TokEOF {
		return p.errorf(tok, "expected %s, found end of input", want)
	}
	return p.errorf(tok, "expected %s, found %q", want, tok.Text)
}

func (p *parser) ident() (scanner.Token, error) {
	if p.peek().Kind == scanner.TokIdent {
		return p.next(), nil
	}
	return scanner.Token{}, p.unexpected("identifier")
}

func span(kind syntax.NodeKind, start, end int) *syntax.Node {
	node := syntax.New(kind)
	node.SetRange(start, end)
	return node
}

func (p *parser) topLevel() (*syntax.Node, error) {
	switch {
	case p.is("import"):
		return p.importDecl()
	case p.is("func"):
		return p.funcDecl()
	case p.is("class"):
		return p.classDecl()
	default:
		return p.statement()
	}
}

func (p *parser) member() (*syntax.Node, error) {
	switch {
	case p.is("var"):
		return p.varDecl()
	case p.is("func"):
		return p.funcDecl()
	default:
		return nil, p.unexpected("class member")
	}
}

func (p *parser) importDecl() (*syntax.Node, error) {
	start := p.next()

	first, err := p.ident()
	if err != nil {
		return nil, err
	}
	parts := []string{first.Text}
	for p.is(".") {
		p.next()
		part, err := p.ident()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part.Text)
	}

	semi, err := p.expect(";")
	if err != nil {
		return nil, err
	}

	node := span(syntax.KindImportDeclaration, start.Start, semi.End)
	node.SetAttr(syntax.ImportName, strings.Join(parts, "."))
	return node, nil
}

func (p *parser) funcDecl() (*syntax.Node, error) {
	start := p.next()

	name, err := p.name()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}

	var params []*syntax.Node
	if !p.is(")") {
		for {
			param, err := p.parameter()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if _, ok := p.accept(","); !ok {
				break
			}
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	var returnType *syntax.Node
	if _, ok := p.accept(":"); ok {
		if returnType, err = p.typeRef(); err != nil {
			return nil, err
		}
	}

	if !p.is("{") {
		return nil, p.unexpected(`"{"`)
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}

	node := span(syntax.KindFunctionDeclaration, start.Start, body.End())
	node.SetChild(syntax.FunctionName, name)
	node.SetList(syntax.FunctionParameters, params)
	node.SetChild(syntax.FunctionReturnType, returnType)
	node.SetChild(syntax.FunctionBody, body)
	return node, nil
}

func (p *parser) parameter() (*syntax.Node, error) {
	name, err := p.name()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	typ, err := p.typeRef()
	if err != nil {
		return nil, err
	}

	node := span(syntax.KindParameter, name.Start, typ.End())
	node.SetChild(syntax.ParameterName, name)
	node.SetChild(syntax.ParameterType, typ)
	return node, nil
}

func (p *parser) classDecl() (*syntax.Node, error) {
	start := p.next()

	name, err := p.name()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}

	var members []*syntax.Node
	for !p.is("}") {
		if p.atEOF() {
			return nil, p.unexpected(`"}"`)
		}
		member, err := p.member()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	end := p.next()

	node := span(syntax.KindClassDeclaration, start.Start, end.End)
	node.SetChild(syntax.ClassName, name)
	node.SetList(syntax.ClassMembers, members)
	return node, nil
}

func (p *parser) name() (*syntax.Node, error) {
	tok, err := p.ident()
	if err != nil {
		return nil, err
	}
	node := span(syntax.KindSimpleName, tok.Start, tok.End)
	node.SetAttr(syntax.SimpleNameIdentifier, tok.Text)
	return node, nil
}

func (p *parser) typeRef() (*syntax.Node, error) {
	tok, err := p.ident()
	if err != nil {
		return nil, p.unexpected("type name")
	}
	node := span(syntax.KindSimpleType, tok.Start, tok.End)
	node.SetAttr(syntax.SimpleTypeName, tok.Text)
	return node, nil
}
