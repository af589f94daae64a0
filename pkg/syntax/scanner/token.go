package scanner

// TokenKind classifies a lexical token of tw source.
type TokenKind uint8

// Token kinds. Every byte of the input belongs to exactly one token.
const (
	TokInvalid TokenKind = iota
	TokWhitespace
	TokComment
	TokString
	TokNumber
	TokIdent
	TokKeyword
	TokOperator
	TokPunct
	TokEOF
)

//nolint:gochecknoglobals // Read-only lookup table.
var tokenKindNames = [...]string{
	TokInvalid:    "Invalid",
	TokWhitespace: "Whitespace",
	TokComment:    "Comment",
	TokString:     "String",
	TokNumber:     "Number",
	TokIdent:      "Ident",
	TokKeyword:    "Keyword",
	TokOperator:   "Operator",
	TokPunct:      "Punct",
	TokEOF:        "EOF",
}

// String returns the kind name.
func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "Unknown"
}

// IsTrivia returns true for tokens the grammar ignores.
func (k TokenKind) IsTrivia() bool {
	return k == TokWhitespace || k == TokComment
}

// Token is a classified span of bytes.
type Token struct {
	// Kind classifies what this token represents.
	Kind TokenKind

	// Start is the byte index where this token begins (inclusive).
	Start int

	// End is the byte index where this token ends (exclusive).
	End int

	// Text is the token's source text.
	Text string
}

// Len returns the length of this token in bytes.
func (t Token) Len() int {
	return t.End - t.Start
}

// Is reports whether t is a keyword, operator or punctuation token spelled text.
// String literals and comments never match.
func (t Token) Is(text string) bool {
	switch t.Kind {
	case TokKeyword, TokOperator, TokPunct:
		return t.Text == text
	default:
		return false
	}
}

//nolint:gochecknoglobals // Read-only keyword set.
var keywords = map[string]bool{
	"import": true,
	"func":   true,
	"class":  true,
	"var":    true,
	"if":     true,
	"else":   true,
	"while":  true,
	"return": true,
	"true":   true,
	"false":  true,
	"null":   true,
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	return keywords[word]
}
