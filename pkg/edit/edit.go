// Package edit provides the text edit model produced by the rewrite engine,
// together with validation, application and unified diff rendering.
package edit

import "fmt"

// TextEdit replaces Length bytes at Offset of the original buffer with Text.
// A zero Length is an insertion; an empty Text is a deletion.
type TextEdit struct {
	// Offset is the byte index where the edit begins.
	Offset int

	// Length is the number of original bytes replaced.
	Length int

	// Text is the replacement text.
	Text string
}

// End returns the exclusive end offset of the replaced range.
func (e TextEdit) End() int {
	return e.Offset + e.Length
}

// IsInsert returns true for zero-length edits.
func (e TextEdit) IsInsert() bool {
	return e.Length == 0
}

// IsDelete returns true for edits that only remove text.
func (e TextEdit) IsDelete() bool {
	return e.Length > 0 && e.Text == ""
}

func (e TextEdit) String() string {
	return fmt.Sprintf("[%d,%d) %q", e.Offset, e.End(), e.Text)
}

// Builder accumulates text edits in generation order.
type Builder struct {
	Edits []TextEdit
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		Edits: make([]TextEdit, 0),
	}
}

// Replace adds an edit that replaces bytes [start, end) with text.
func (b *Builder) Replace(start, end int, text string) {
	b.Edits = append(b.Edits, TextEdit{
		Offset: start,
		Length: end - start,
		Text:   text,
	})
}

// Insert adds an edit that inserts text at offset.
func (b *Builder) Insert(offset int, text string) {
	b.Replace(offset, offset, text)
}

// Delete adds an edit that deletes bytes [start, end).
func (b *Builder) Delete(start, end int) {
	b.Replace(start, end, "")
}

// Len returns the number of accumulated edits.
func (b *Builder) Len() int {
	return len(b.Edits)
}
