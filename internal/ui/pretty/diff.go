package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/treewrite/pkg/edit"
)

// FormatDiff renders a unified diff with one style per line kind.
// A nil or empty diff renders as "".
func (s *Styles) FormatDiff(diff *edit.Diff) string {
	if !diff.HasChanges() {
		return ""
	}

	var builder strings.Builder
	path := strings.TrimPrefix(diff.Path, "/")

	builder.WriteString(s.DiffHeader.Render(diff.GitHeader()))
	builder.WriteByte('\n')
	builder.WriteString(s.DiffRemove.Render("--- a/" + path))
	builder.WriteByte('\n')
	builder.WriteString(s.DiffAdd.Render("+++ b/" + path))
	builder.WriteByte('\n')

	for _, hunk := range diff.Hunks {
		builder.WriteString(s.DiffHunk.Render(fmt.Sprintf("@@ -%d,%d +%d,%d @@",
			hunk.OriginalStart, hunk.OriginalCount,
			hunk.ModifiedStart, hunk.ModifiedCount)))
		builder.WriteByte('\n')

		for _, line := range hunk.Lines {
			text := line.Kind.Prefix() + line.Content
			switch line.Kind {
			case edit.DiffLineAdd:
				text = s.DiffAdd.Render(text)
			case edit.DiffLineRemove:
				text = s.DiffRemove.Render(text)
			default:
				text = s.DiffContext.Render(text)
			}
			builder.WriteString(text)
			builder.WriteByte('\n')
		}
	}

	return builder.String()
}
