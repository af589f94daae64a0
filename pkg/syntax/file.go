package syntax

import (
	"bytes"
	"sort"
)

// Range represents a byte range in the source content.
type Range struct {
	// Start is the byte index where the range begins (inclusive).
	Start int

	// End is the byte index where the range ends (exclusive).
	End int
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains returns true if the given offset is within this range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Covers returns true if other lies entirely within r.
func (r Range) Covers(other Range) bool {
	return other.Start >= r.Start && other.End <= r.End
}

// File is an immutable view of a parsed source file.
// The rewrite engine never modifies Content.
type File struct {
	// Path is the file path (may be empty for in-memory content).
	Path string

	// Content is the full file bytes.
	Content []byte

	// Lines contains metadata for each line in the file.
	Lines []LineInfo

	// Root is the Program node.
	Root *Node
}

// LineInfo holds metadata for a single line in a file.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline (e.g., last line), this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of file).
	EndOffset int
}

// NewFile creates a File from content and builds its line index.
// The root is attached by the parser.
func NewFile(path string, content []byte) *File {
	return &File{
		Path:    path,
		Content: content,
		Lines:   BuildLines(content),
	}
}

// BuildLines constructs line metadata from file content.
// It handles both LF (\n) and CRLF (\r\n) line endings.
func BuildLines(content []byte) []LineInfo {
	lines := make([]LineInfo, 0, bytes.Count(content, []byte{'\n'})+1)
	lineStart := 0

	for idx, char := range content {
		if char != '\n' {
			continue
		}
		newlineStart := idx
		if idx > 0 && content[idx-1] == '\r' {
			newlineStart = idx - 1
		}
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	// The last line may be empty or lack a trailing newline.
	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(content),
		EndOffset:    len(content),
	})

	return lines
}

// LineIndex returns the 0-based index of the line containing offset.
// Offsets at or past the end of content map to the last line.
func (f *File) LineIndex(offset int) int {
	if offset <= 0 {
		return 0
	}
	idx := sort.Search(len(f.Lines), func(i int) bool {
		return f.Lines[i].EndOffset > offset
	})
	if idx >= len(f.Lines) {
		idx = len(f.Lines) - 1
	}
	return idx
}

// Line returns the line containing offset.
func (f *File) Line(offset int) LineInfo {
	return f.Lines[f.LineIndex(offset)]
}

// LineAt converts a byte offset to 1-based line and column numbers.
// Column counts bytes, not runes.
func (f *File) LineAt(offset int) (int, int) {
	if offset < 0 {
		return 0, 0
	}
	idx := f.LineIndex(offset)
	return idx + 1, offset - f.Lines[idx].StartOffset + 1
}

// LineContent returns the content of the line containing offset, excluding the newline.
func (f *File) LineContent(offset int) []byte {
	line := f.Line(offset)
	return f.Content[line.StartOffset:line.NewlineStart]
}

// Indentation returns the leading whitespace of the line containing offset.
func (f *File) Indentation(offset int) string {
	line := f.LineContent(offset)
	end := 0
	for end < len(line) && (line[end] == ' ' || line[end] == '\t') {
		end++
	}
	return string(line[:end])
}

// LineDelimiter returns the delimiter used by the first line of the file,
// defaulting to "\n" for single-line content.
func (f *File) LineDelimiter() string {
	if len(f.Lines) > 1 {
		first := f.Lines[0]
		return string(f.Content[first.NewlineStart:first.EndOffset])
	}
	return "\n"
}

// Text returns the source text of a node, or nil for synthetic nodes.
func (f *File) Text(n *Node) []byte {
	if !n.HasRange() || n.End() > len(f.Content) {
		return nil
	}
	return f.Content[n.Start:n.End()]
}
