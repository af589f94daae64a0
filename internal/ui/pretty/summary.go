package pretty

import (
	"fmt"
	"strings"
)

// FormatChangeSummary formats the outcome of a rewrite as a single line.
// Example: "3 edits, 2 insertions(+), 1 deletion(-)".
func (s *Styles) FormatChangeSummary(edits, additions, deletions int) string {
	if edits == 0 {
		return s.Success.Render("No changes") + "\n"
	}

	parts := []string{plural(edits, "edit", "edits")}
	if additions > 0 {
		parts = append(parts, s.DiffAdd.Render(plural(additions, "insertion", "insertions")+"(+)"))
	}
	if deletions > 0 {
		parts = append(parts, s.DiffRemove.Render(plural(deletions, "deletion", "deletions")+"(-)"))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatWritten reports a file written in place, with its backup if any.
func (s *Styles) FormatWritten(path, backup string) string {
	msg := s.Success.Render("wrote") + " " + s.FilePath.Render(path)
	if backup != "" {
		msg += s.Dim.Render(" (backup: " + backup + ")")
	}
	return msg + "\n"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
