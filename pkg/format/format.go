// Package format pretty-prints tw snippets.
// The rewrite engine only formats text it generated itself; formatting of
// untouched source is always preserved.
package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/scanner"
)

// ErrUnformattable is returned when a snippet cannot be tokenized cleanly.
var ErrUnformattable = errors.New("snippet cannot be formatted")

// Formatter reformats a snippet of the given node kind.
// Every line after the first is prefixed with indentLevel indentation units;
// the first line is never indented. Implementations must be deterministic.
type Formatter interface {
	Format(snippet string, kind syntax.NodeKind, indentLevel int) (string, error)
}

// Options configures the token formatter.
type Options struct {
	// IndentUnit is the string used for one indentation level.
	IndentUnit string

	// LineDelimiter separates output lines.
	LineDelimiter string
}

// DefaultOptions returns four-space indentation and "\n" line breaks.
func DefaultOptions() Options {
	return Options{
		IndentUnit:    "    ",
		LineDelimiter: "\n",
	}
}

// TokenFormatter re-lexes a snippet and lays its tokens out with canonical spacing.
// Placeholder markers are plain identifiers and survive formatting unchanged.
type TokenFormatter struct {
	opts Options
}

// NewTokenFormatter creates a token formatter. Empty options fall back to defaults.
func NewTokenFormatter(opts Options) *TokenFormatter {
	def := DefaultOptions()
	if opts.IndentUnit == "" {
		opts.IndentUnit = def.IndentUnit
	}
	if opts.LineDelimiter == "" {
		opts.LineDelimiter = def.LineDelimiter
	}
	return &TokenFormatter{opts: opts}
}

// Format implements Formatter.
func (f *TokenFormatter) Format(snippet string, kind syntax.NodeKind, indentLevel int) (string, error) {
	all, err := scanner.Tokenize([]byte(snippet))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnformattable, err)
	}

	var tokens []scanner.Token
	for _, tok := range all {
		switch tok.Kind {
		case scanner.TokInvalid:
			return "", fmt.Errorf("%w: unexpected %q in %v", ErrUnformattable, tok.Text, kind)
		case scanner.TokWhitespace:
			continue
		default:
			tokens = append(tokens, tok)
		}
	}

	lay := &layout{opts: f.opts, indentLevel: indentLevel}
	for idx, tok := range tokens {
		var prev, next scanner.Token
		if idx > 0 {
			prev = tokens[idx-1]
		}
		if idx+1 < len(tokens) {
			next = tokens[idx+1]
		}
		if err := lay.emit(prev, tok, next); err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnformattable, err)
		}
	}

	return lay.String(), nil
}

// layout accumulates formatted output line by line.
type layout struct {
	opts        Options
	indentLevel int
	depth       int
	parens      int
	out         strings.Builder
	lineStart   bool
	started     bool
	afterUnary  bool
}

func (l *layout) String() string {
	return strings.TrimRight(l.out.String(), " ")
}

func (l *layout) newline() {
	l.out.WriteString(l.opts.LineDelimiter)
	l.lineStart = true
}

func (l *layout) write(text string, space bool) {
	switch {
	case l.lineStart:
		l.out.WriteString(strings.Repeat(l.opts.IndentUnit, max(l.indentLevel+l.depth, 0)))
	case space && l.started:
		l.out.WriteByte(' ')
	}
	l.out.WriteString(text)
	l.lineStart = false
	l.started = true
}

// emit writes one token. A zero Token (kind TokInvalid) stands for "none":
// real invalid tokens are rejected before layout starts.
func (l *layout) emit(prev, tok, next scanner.Token) error {
	glued := l.afterUnary
	l.afterUnary = false

	switch {
	case tok.Kind == scanner.TokComment:
		l.write(tok.Text, true)
		if strings.HasPrefix(tok.Text, "//") && next.Kind != scanner.TokInvalid {
			l.newline()
		}

	case tok.Is("{"):
		l.write("{", true)
		if !next.Is("}") {
			l.depth++
			l.newline()
		}

	case tok.Is("}"):
		if !prev.Is("{") {
			l.depth--
			if l.depth < 0 {
				return fmt.Errorf("unbalanced %q", "}")
			}
			if !l.lineStart {
				l.newline()
			}
		}
		l.write("}", false)
		if next.Kind != scanner.TokInvalid && !next.Is("else") && !next.Is(";") &&
			!next.Is(")") && !next.Is(",") {
			l.newline()
		}

	case tok.Is(";"):
		l.write(";", false)
		if l.parens == 0 && next.Kind != scanner.TokInvalid {
			l.newline()
		}

	case tok.Is("("):
		l.parens++
		l.write("(", !glued && spaceBeforeParen(prev))

	case tok.Is(")"):
		l.parens--
		l.write(")", false)

	default:
		if isUnaryOperator(tok) && operandExpected(prev) {
			l.afterUnary = true
		}
		l.write(tok.Text, !glued && spaceBefore(prev, tok))
	}

	return nil
}

// spaceBeforeParen tells whether "(" is separated from its predecessor:
// keywords and operators yes, callees no.
func spaceBeforeParen(prev scanner.Token) bool {
	switch prev.Kind {
	case scanner.TokInvalid, scanner.TokIdent:
		return false
	case scanner.TokPunct:
		return !prev.Is("(") && !prev.Is(".")
	default:
		return true
	}
}

func spaceBefore(prev, tok scanner.Token) bool {
	switch {
	case prev.Kind == scanner.TokInvalid:
		return false
	case tok.Is(",") || tok.Is(".") || tok.Is(":"):
		return false
	case prev.Is("(") || prev.Is("."):
		return false
	default:
		return true
	}
}

func isUnaryOperator(tok scanner.Token) bool {
	return tok.Is("!") || tok.Is("-")
}

// operandExpected reports whether the token after prev starts an operand,
// which makes a following "!" or "-" a prefix operator.
func operandExpected(prev scanner.Token) bool {
	switch prev.Kind {
	case scanner.TokInvalid, scanner.TokOperator:
		return true
	case scanner.TokKeyword:
		return prev.Text == "return"
	case scanner.TokPunct:
		return !prev.Is(")")
	default:
		return false
	}
}
