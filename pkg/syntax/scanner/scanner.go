// Package scanner tokenizes tw source and locates anchor tokens by offset.
// Tokens are produced by a participle lexer and cover every byte of the input.
package scanner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/alecthomas/participle/v2/lexer"
)

// ErrAnchorNotFound is returned when an expected token cannot be located.
var ErrAnchorNotFound = errors.New("anchor token not found")

// ErrLex is returned when the input cannot be tokenized.
var ErrLex = errors.New("lexical error")

// Definition is the tw lexer. Order matters: comments must win over the "/" operator.
//
//nolint:gochecknoglobals,govet // Participle DSL uses unkeyed fields
var Definition = lexer.MustSimple([]lexer.SimpleRule{
	{"Whitespace", `[ \t\r\n]+`},
	{"Comment", `//[^\n]*|/\*(?s:.*?)\*/`},
	{"String", `"(\\.|[^"\\\n])*"`},
	{"Number", `[0-9]+(\.[0-9]+)?`},
	{"Ident", `[A-Za-z_][A-Za-z0-9_]*`},
	{"Operator", `==|!=|<=|>=|&&|\|\||[-+*/%=<>!]`},
	{"Punct", `[(){};,.:]`},
	{"Invalid", `.`},
})

//nolint:gochecknoglobals // Populated once from Definition.
var ruleKinds = buildRuleKinds()

func buildRuleKinds() map[lexer.TokenType]TokenKind {
	names := map[string]TokenKind{
		"Whitespace": TokWhitespace,
		"Comment":    TokComment,
		"String":     TokString,
		"Number":     TokNumber,
		"Ident":      TokIdent,
		"Operator":   TokOperator,
		"Punct":      TokPunct,
		"Invalid":    TokInvalid,
	}
	kinds := make(map[lexer.TokenType]TokenKind, len(names))
	for name, typ := range Definition.Symbols() {
		if kind, ok := names[name]; ok {
			kinds[typ] = kind
		}
	}
	return kinds
}

// Tokenize splits content into tokens covering [0, len(content)).
// No EOF token is included.
func Tokenize(content []byte) ([]Token, error) {
	lex, err := Definition.LexString("", string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLex, err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLex, err)
	}

	tokens := make([]Token, 0, len(raw))
	for _, tok := range raw {
		if tok.EOF() {
			break
		}
		kind := ruleKinds[tok.Type]
		if kind == TokIdent && IsKeyword(tok.Value) {
			kind = TokKeyword
		}
		tokens = append(tokens, Token{
			Kind:  kind,
			Start: tok.Pos.Offset,
			End:   tok.Pos.Offset + len(tok.Value),
			Text:  tok.Value,
		})
	}
	return tokens, nil
}

// Significant filters out whitespace and comments.
func Significant(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if !tok.Kind.IsTrivia() {
			out = append(out, tok)
		}
	}
	return out
}

// Scanner answers anchor queries over one source buffer.
// The buffer is tokenized once, on the first query.
type Scanner struct {
	content []byte
	tokens  []Token
	err     error
	lexed   bool
}

// New creates a scanner over content. The content must not be modified.
func New(content []byte) *Scanner {
	return &Scanner{content: content}
}

// NewWithTokens creates a scanner from an existing token stream.
func NewWithTokens(content []byte, tokens []Token) *Scanner {
	return &Scanner{content: content, tokens: tokens, lexed: true}
}

// Tokens returns every token of the buffer, trivia included.
func (s *Scanner) Tokens() ([]Token, error) {
	if !s.lexed {
		s.tokens, s.err = Tokenize(s.content)
		s.lexed = true
	}
	return s.tokens, s.err
}

// TokenAt returns the token covering offset.
func (s *Scanner) TokenAt(offset int) (Token, error) {
	tokens, err := s.Tokens()
	if err != nil {
		return Token{}, err
	}
	idx := sort.Search(len(tokens), func(i int) bool {
		return tokens[i].End > offset
	})
	if idx >= len(tokens) || tokens[idx].Start > offset {
		return Token{}, fmt.Errorf("%w: no token at offset %d", ErrAnchorNotFound, offset)
	}
	return tokens[idx], nil
}

// NextToken returns the first significant token starting at or after offset.
func (s *Scanner) NextToken(offset int) (Token, error) {
	tokens, err := s.Tokens()
	if err != nil {
		return Token{}, err
	}
	idx := sort.Search(len(tokens), func(i int) bool {
		return tokens[i].Start >= offset
	})
	for ; idx < len(tokens); idx++ {
		if !tokens[idx].Kind.IsTrivia() {
			return tokens[idx], nil
		}
	}
	return Token{}, fmt.Errorf("%w: no token after offset %d", ErrAnchorNotFound, offset)
}

// PreviousToken returns the last significant token ending at or before offset.
func (s *Scanner) PreviousToken(offset int) (Token, error) {
	tokens, err := s.Tokens()
	if err != nil {
		return Token{}, err
	}
	idx := sort.Search(len(tokens), func(i int) bool {
		return tokens[i].End > offset
	}) - 1
	for ; idx >= 0; idx-- {
		if !tokens[idx].Kind.IsTrivia() {
			return tokens[idx], nil
		}
	}
	return Token{}, fmt.Errorf("%w: no token before offset %d", ErrAnchorNotFound, offset)
}

// FindNext returns the first significant token spelled text in [start, end).
// A negative end searches to the end of the buffer.
func (s *Scanner) FindNext(text string, start, end int) (Token, error) {
	tokens, err := s.Tokens()
	if err != nil {
		return Token{}, err
	}
	if end < 0 {
		end = len(s.content)
	}
	idx := sort.Search(len(tokens), func(i int) bool {
		return tokens[i].Start >= start
	})
	for ; idx < len(tokens) && tokens[idx].End <= end; idx++ {
		if tokens[idx].Is(text) {
			return tokens[idx], nil
		}
	}
	return Token{}, fmt.Errorf("%w: %q in [%d,%d)", ErrAnchorNotFound, text, start, end)
}

// FindPrevious returns the last significant token spelled text in [start, end).
func (s *Scanner) FindPrevious(text string, start, end int) (Token, error) {
	tokens, err := s.Tokens()
	if err != nil {
		return Token{}, err
	}
	idx := sort.Search(len(tokens), func(i int) bool {
		return tokens[i].End > end
	}) - 1
	for ; idx >= 0 && tokens[idx].Start >= start; idx-- {
		if tokens[idx].Is(text) {
			return tokens[idx], nil
		}
	}
	return Token{}, fmt.Errorf("%w: %q in [%d,%d)", ErrAnchorNotFound, text, start, end)
}
