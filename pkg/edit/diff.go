package edit

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Diff represents a unified diff between original and modified content.
type Diff struct {
	// Path is the file path for the diff header.
	Path string

	// Original is the original file content.
	Original []byte

	// Modified is the modified file content.
	Modified []byte

	// Hunks contains the diff hunks.
	Hunks []DiffHunk

	// Additions is the number of lines added.
	Additions int

	// Deletions is the number of lines deleted.
	Deletions int
}

// DiffHunk represents a single hunk in a unified diff.
type DiffHunk struct {
	// OriginalStart is the 1-based line number where the hunk starts in the original.
	OriginalStart int

	// OriginalCount is the number of lines from the original in this hunk.
	OriginalCount int

	// ModifiedStart is the 1-based line number where the hunk starts in the modified.
	ModifiedStart int

	// ModifiedCount is the number of lines from the modified in this hunk.
	ModifiedCount int

	// Lines contains the diff lines in this hunk.
	Lines []DiffLine
}

// DiffLine represents a single line in a diff hunk.
type DiffLine struct {
	// Kind indicates whether this is a context, add, or remove line.
	Kind DiffLineKind

	// Content is the line content without the diff prefix or line terminator.
	Content string
}

// DiffLineKind indicates the type of diff line.
type DiffLineKind int

const (
	// DiffLineContext is an unchanged context line.
	DiffLineContext DiffLineKind = iota

	// DiffLineAdd is a line added in the modified version.
	DiffLineAdd

	// DiffLineRemove is a line removed from the original version.
	DiffLineRemove
)

// GenerateDiff creates a unified diff between original and modified content
// using the Myers algorithm. Returns nil if there are no changes.
func GenerateDiff(path string, original, modified []byte) *Diff {
	before, after := string(original), string(modified)
	if before == after {
		return nil
	}

	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	unified := gotextdiff.ToUnified("a/"+path, "b/"+path, before, edits)
	if len(unified.Hunks) == 0 {
		return nil
	}

	diff := &Diff{
		Path:     path,
		Original: original,
		Modified: modified,
		Hunks:    make([]DiffHunk, 0, len(unified.Hunks)),
	}

	for _, hunk := range unified.Hunks {
		out := DiffHunk{
			OriginalStart: hunk.FromLine,
			ModifiedStart: hunk.ToLine,
			Lines:         make([]DiffLine, 0, len(hunk.Lines)),
		}
		for _, line := range hunk.Lines {
			content := strings.TrimSuffix(strings.TrimSuffix(line.Content, "\n"), "\r")
			switch line.Kind {
			case gotextdiff.Delete:
				out.Lines = append(out.Lines, DiffLine{Kind: DiffLineRemove, Content: content})
				out.OriginalCount++
				diff.Deletions++
			case gotextdiff.Insert:
				out.Lines = append(out.Lines, DiffLine{Kind: DiffLineAdd, Content: content})
				out.ModifiedCount++
				diff.Additions++
			case gotextdiff.Equal:
				out.Lines = append(out.Lines, DiffLine{Kind: DiffLineContext, Content: content})
				out.OriginalCount++
				out.ModifiedCount++
			}
		}
		diff.Hunks = append(diff.Hunks, out)
	}

	return diff
}

// GitHeader returns the "diff --git" header line.
func (d *Diff) GitHeader() string {
	if d == nil {
		return ""
	}
	path := strings.TrimPrefix(d.Path, "/")
	return fmt.Sprintf("diff --git a/%s b/%s", path, path)
}

// String returns the diff in unified diff format (without the git header).
func (d *Diff) String() string {
	if d == nil || len(d.Hunks) == 0 {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var builder strings.Builder
	fmt.Fprintf(&builder, "--- a/%s\n", path)
	fmt.Fprintf(&builder, "+++ b/%s\n", path)

	for _, hunk := range d.Hunks {
		fmt.Fprintf(&builder, "@@ -%d,%d +%d,%d @@\n",
			hunk.OriginalStart, hunk.OriginalCount,
			hunk.ModifiedStart, hunk.ModifiedCount)

		for _, line := range hunk.Lines {
			builder.WriteString(line.Kind.Prefix())
			builder.WriteString(line.Content)
			builder.WriteByte('\n')
		}
	}

	return builder.String()
}

// Prefix returns the unified diff marker for the line kind.
func (k DiffLineKind) Prefix() string {
	switch k {
	case DiffLineAdd:
		return "+"
	case DiffLineRemove:
		return "-"
	default:
		return " "
	}
}

// FullString returns the complete diff including the git header.
func (d *Diff) FullString() string {
	if d == nil || len(d.Hunks) == 0 {
		return ""
	}
	return d.GitHeader() + "\n" + d.String()
}

// HasChanges returns true if the diff contains any changes.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// DefaultContext is the number of unchanged lines GenerateDiff keeps around
// each change.
const DefaultContext = 3

// WithContext returns a copy of d whose hunks keep at most n unchanged lines
// around each change. Hunks are split where two changes are separated by more
// than 2n unchanged lines. Values of n at or above DefaultContext return d.
func (d *Diff) WithContext(n int) *Diff {
	if d == nil || n >= DefaultContext {
		return d
	}
	n = max(n, 0)

	narrowed := *d
	narrowed.Hunks = make([]DiffHunk, 0, len(d.Hunks))
	for _, hunk := range d.Hunks {
		narrowed.Hunks = append(narrowed.Hunks, narrowHunk(hunk, n)...)
	}
	return &narrowed
}

func narrowHunk(hunk DiffHunk, n int) []DiffHunk {
	type position struct{ original, modified int }

	positions := make([]position, len(hunk.Lines))
	changes := make([]int, 0, len(hunk.Lines))
	original, modified := hunk.OriginalStart, hunk.ModifiedStart
	for i, line := range hunk.Lines {
		positions[i] = position{original, modified}
		switch line.Kind {
		case DiffLineAdd:
			modified++
			changes = append(changes, i)
		case DiffLineRemove:
			original++
			changes = append(changes, i)
		default:
			original++
			modified++
		}
	}
	if len(changes) == 0 {
		return nil
	}

	var hunks []DiffHunk
	emit := func(first, last int) {
		start := max(first-n, 0)
		end := min(last+n, len(hunk.Lines)-1)
		out := DiffHunk{
			OriginalStart: positions[start].original,
			ModifiedStart: positions[start].modified,
			Lines:         append([]DiffLine(nil), hunk.Lines[start:end+1]...),
		}
		for _, line := range out.Lines {
			if line.Kind != DiffLineAdd {
				out.OriginalCount++
			}
			if line.Kind != DiffLineRemove {
				out.ModifiedCount++
			}
		}
		hunks = append(hunks, out)
	}

	first := changes[0]
	for i := 1; i < len(changes); i++ {
		if changes[i]-changes[i-1]-1 > 2*n {
			emit(first, changes[i-1])
			first = changes[i]
		}
	}
	emit(first, changes[len(changes)-1])

	return hunks
}
