package rewrite

import (
	"sort"
	"strings"

	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/scanner"
)

// reindent prefixes every non-blank line after the first with indent.
// The first line is placed by the caller and never changes.
func reindent(text, indent string) string {
	if indent == "" || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for idx := 1; idx < len(lines); idx++ {
		if isBlank(lines[idx]) {
			continue
		}
		lines[idx] = indent + lines[idx]
	}
	return strings.Join(lines, "\n")
}

// dedent strips up to width columns of leading whitespace from every line
// after the first. Tabs advance to the next multiple of tabWidth.
func dedent(text string, width, tabWidth int) string {
	if width == 0 || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for idx := 1; idx < len(lines); idx++ {
		lines[idx] = stripColumns(lines[idx], width, tabWidth)
	}
	return strings.Join(lines, "\n")
}

func stripColumns(line string, width, tabWidth int) string {
	col, pos := 0, 0
	for pos < len(line) && col < width {
		switch line[pos] {
		case ' ':
			col++
		case '\t':
			col += tabWidth - col%tabWidth
		default:
			return line[pos:]
		}
		pos++
	}
	return line[pos:]
}

// indentWidth returns the column width of a run of spaces and tabs.
func indentWidth(indent string, tabWidth int) int {
	col := 0
	for _, ch := range indent {
		if ch == '\t' {
			col += tabWidth - col%tabWidth
			continue
		}
		col++
	}
	return col
}

// leadingIndent returns the whitespace prefix of the line containing offset in text.
func leadingIndent(text string, offset int) string {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := start
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	return text[start:end]
}

// DetectIndentUnit returns the indentation of the outermost node that starts
// an indented line of file, or "" when no node does.
func DetectIndentUnit(file *syntax.File) string {
	if file == nil || file.Root == nil {
		return ""
	}
	queue := []*syntax.Node{file.Root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.HasRange() {
			indent := file.Indentation(n.Start)
			if indent != "" && file.Line(n.Start).StartOffset+len(indent) == n.Start {
				return indent
			}
		}
		queue = append(queue, n.Children()...)
	}
	return ""
}

func isBlank(s string) bool {
	return strings.TrimLeft(s, " \t\r") == ""
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

// lineIndent returns the indentation of the original line containing offset.
func (a *analyzer) lineIndent(offset int) string {
	return a.file.Indentation(offset)
}

// blankBefore reports whether only whitespace precedes offset on its line.
func (a *analyzer) blankBefore(offset int) bool {
	line := a.file.Line(offset)
	return isBlank(string(a.file.Content[line.StartOffset:offset]))
}

// blankAfter reports whether only whitespace follows offset on its line.
func (a *analyzer) blankAfter(offset int) bool {
	line := a.file.Line(offset)
	if offset >= line.NewlineStart {
		return true
	}
	return isBlank(string(a.file.Content[offset:line.NewlineStart]))
}

// extendedRange returns the range of n including the comments that travel
// with it: own-line comments directly above and a comment closing its last line.
// Only entries of line-oriented lists carry comments.
func (a *analyzer) extendedRange(n *syntax.Node) (int, int) {
	start, end := n.Start, n.End()
	loc := n.Location()
	if a.opts.DetachComments || loc == nil || loc.Layout != syntax.LayoutLines {
		return start, end
	}
	tokens, err := a.scan.Tokens()
	if err != nil {
		return start, end
	}

	if tok, ok := trailingComment(tokens, end); ok && a.file.LineIndex(tok.Start) == a.file.LineIndex(end) &&
		a.blankAfter(tok.End) {
		end = tok.End
	}

	for a.blankBefore(start) {
		lineIdx := a.file.LineIndex(start)
		if lineIdx == 0 {
			break
		}
		prev := a.file.Lines[lineIdx-1]
		text := string(a.file.Content[prev.StartOffset:prev.NewlineStart])
		trimmed := strings.TrimLeft(text, " \t")
		if isBlank(trimmed) {
			break
		}
		first := prev.StartOffset + len(text) - len(trimmed)
		tok, err := a.scan.TokenAt(first)
		if err != nil || tok.Kind != scanner.TokComment || !a.blankAfter(tok.End) ||
			a.file.LineIndex(tok.End) != lineIdx-1 || !a.blankBefore(tok.Start) {
			break
		}
		start = tok.Start
	}
	return start, end
}

// trailingComment returns the first comment after offset when only
// horizontal whitespace separates the two.
func trailingComment(tokens []scanner.Token, offset int) (scanner.Token, bool) {
	idx := sort.Search(len(tokens), func(i int) bool {
		return tokens[i].Start >= offset
	})
	for ; idx < len(tokens); idx++ {
		tok := tokens[idx]
		switch {
		case tok.Kind == scanner.TokWhitespace && !strings.ContainsAny(tok.Text, "\r\n"):
			continue
		case tok.Kind == scanner.TokComment && !strings.Contains(tok.Text, "\n"):
			return tok, true
		}
		break
	}
	return scanner.Token{}, false
}
