package edit

import "bytes"

// Apply applies a sorted, validated slice of edits to content.
// Edits must be prepared with Prepare before calling.
// Returns the modified content; content itself is never modified.
func Apply(content []byte, edits []TextEdit) []byte {
	if len(edits) == 0 {
		return content
	}

	// Estimate result size.
	delta := 0
	for _, e := range edits {
		delta += len(e.Text) - e.Length
	}

	var out bytes.Buffer
	out.Grow(len(content) + delta)

	cursor := 0
	for _, e := range edits {
		out.Write(content[cursor:e.Offset])
		out.WriteString(e.Text)
		cursor = e.End()
	}
	out.Write(content[cursor:])

	return out.Bytes()
}

// ApplyString prepares edits and applies them to content.
func ApplyString(content string, edits []TextEdit) (string, error) {
	prepared, err := Prepare(edits, len(content))
	if err != nil {
		return "", err
	}
	return string(Apply([]byte(content), prepared)), nil
}
