package edit

import (
	"fmt"
	"sort"
)

// ValidationError describes an invalid edit.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.Offset, e.Edit.End(), e.Message)
}

// ConflictError describes overlapping edits.
type ConflictError struct {
	Edit1 TextEdit
	Edit2 TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.Edit1.Offset, e.Edit1.End(),
		e.Edit2.Offset, e.Edit2.End())
}

// Validate checks that all edits have valid ranges for the given content length.
// Returns nil if all edits are valid, or the first validation error encountered.
func Validate(edits []TextEdit, contentLen int) error {
	for _, edit := range edits {
		if edit.Offset < 0 {
			return &ValidationError{Edit: edit, Message: "offset is negative"}
		}
		if edit.Length < 0 {
			return &ValidationError{Edit: edit, Message: "length is negative"}
		}
		if edit.End() > contentLen {
			return &ValidationError{
				Edit:    edit,
				Message: fmt.Sprintf("end offset %d exceeds content length %d", edit.End(), contentLen),
			}
		}
	}
	return nil
}

// Sort orders edits by offset, insertions before replacements at the same offset.
// The sort is stable, so insertions sharing an offset keep their generation order.
func Sort(edits []TextEdit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Offset != edits[j].Offset {
			return edits[i].Offset < edits[j].Offset
		}
		return edits[i].Length == 0 && edits[j].Length != 0
	})
}

// DetectConflicts checks for overlapping edits in a sorted slice.
// Returns nil if no conflicts, or the first conflict found.
// Edits must be sorted by Sort before calling.
func DetectConflicts(edits []TextEdit) error {
	for i := 1; i < len(edits); i++ {
		prev := edits[i-1]
		curr := edits[i]
		// Overlap if current starts before previous ends.
		if curr.Offset < prev.End() {
			return &ConflictError{Edit1: prev, Edit2: curr}
		}
	}
	return nil
}

// Prepare validates, sorts, and checks for conflicts.
// Returns the sorted edits and any error encountered. The input is not modified.
func Prepare(edits []TextEdit, contentLen int) ([]TextEdit, error) {
	if len(edits) == 0 {
		return edits, nil
	}

	if err := Validate(edits, contentLen); err != nil {
		return nil, err
	}

	result := make([]TextEdit, len(edits))
	copy(result, edits)
	Sort(result)

	if err := DetectConflicts(result); err != nil {
		return nil, err
	}

	return result, nil
}
