package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/syntax"
)

// Table formatting constants.
const (
	tablePadding   = 2
	maxCellWidth   = 48
	ellipsis       = "..."
	heavySeparator = "="
	treeIndent     = "  "
)

// EditRow is one line of the edit table.
type EditRow struct {
	// Location is the 1-based line:column of the edit start.
	Location string

	// Range is the replaced byte range, "[start,end)".
	Range string

	// Removed is the original text covered by the edit.
	Removed string

	// Inserted is the replacement text.
	Inserted string
}

// EditRows converts edits on file into table rows, in edit order.
func EditRows(file *syntax.File, edits []edit.TextEdit) []EditRow {
	rows := make([]EditRow, 0, len(edits))
	for _, e := range edits {
		line, col := file.LineAt(e.Offset)
		rows = append(rows, EditRow{
			Location: fmt.Sprintf("%d:%d", line, col),
			Range:    fmt.Sprintf("[%d,%d)", e.Offset, e.End()),
			Removed:  string(file.Content[e.Offset:e.End()]),
			Inserted: e.Text,
		})
	}
	return rows
}

// TreeRow is one node of the tree table.
type TreeRow struct {
	// Depth is the nesting depth below the root.
	Depth int

	// Kind is the node kind name.
	Kind string

	// Path addresses the node from the root, as accepted by syntax.Resolve.
	Path string

	// Location is "line:col-line:col", 1-based.
	Location string
}

// TreeRows lists every node of file in document order.
func TreeRows(file *syntax.File) []TreeRow {
	var rows []TreeRow
	depth := -1
	_ = syntax.WalkWithContext(file.Root,
		func(n *syntax.Node) error {
			depth++
			row := TreeRow{Depth: depth, Kind: n.Kind.String(), Path: syntax.PathOf(n)}
			if n.HasRange() {
				startLine, startCol := file.LineAt(n.Start)
				endLine, endCol := file.LineAt(n.End())
				row.Location = fmt.Sprintf("%d:%d-%d:%d", startLine, startCol, endLine, endCol)
			}
			rows = append(rows, row)
			return nil
		},
		func(*syntax.Node) error {
			depth--
			return nil
		})
	return rows
}

// FormatEdits renders edit rows as a table headed by path.
func (s *Styles) FormatEdits(path string, rows []EditRow) string {
	if len(rows) == 0 {
		return ""
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{row.Location, row.Range, quote(row.Removed), quote(row.Inserted)})
	}

	var builder strings.Builder
	builder.WriteString(s.FilePath.Render(path))
	builder.WriteByte('\n')
	builder.WriteString(s.table(
		[]string{"LOC", "RANGE", "REMOVED", "INSERTED"},
		[]lipgloss.Style{s.Location, s.Dim, s.DiffRemove, s.DiffAdd},
		cells,
	))
	return builder.String()
}

// FormatTree renders tree rows with kinds indented by depth.
func (s *Styles) FormatTree(rows []TreeRow) string {
	if len(rows) == 0 {
		return ""
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		location := row.Location
		if location == "" {
			location = "-"
		}
		cells = append(cells, []string{strings.Repeat(treeIndent, row.Depth) + row.Kind, row.Path, location})
	}

	return s.table(
		[]string{"KIND", "PATH", "LOCATION"},
		[]lipgloss.Style{s.Kind, s.Bold, s.Location},
		cells,
	)
}

// table lays out cells in left-aligned columns. Widths are measured on the
// unstyled text so ANSI sequences do not skew alignment.
func (s *Styles) table(headers []string, styles []lipgloss.Style, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var builder strings.Builder
	writeRow := func(cells []string, style func(int) lipgloss.Style) {
		for i, cell := range cells {
			if i > 0 {
				builder.WriteString(strings.Repeat(" ", tablePadding))
			}
			builder.WriteString(style(i).Render(cell))
			if i < len(cells)-1 {
				builder.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
			}
		}
		builder.WriteByte('\n')
	}

	writeRow(headers, func(int) lipgloss.Style { return s.TableHeader })

	total := tablePadding * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	builder.WriteString(s.TableSeparator.Render(strings.Repeat(heavySeparator, total)))
	builder.WriteByte('\n')

	for _, row := range rows {
		writeRow(row, func(i int) lipgloss.Style { return styles[i] })
	}

	return builder.String()
}

// quote renders text as a Go string literal, shortened to maxCellWidth.
func quote(text string) string {
	quoted := strconv.Quote(text)
	if len(quoted) <= maxCellWidth {
		return quoted
	}
	return quoted[:maxCellWidth-len(ellipsis)] + ellipsis
}
