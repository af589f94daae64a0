package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Rewrite session fields.
	FieldSession    = "session"
	FieldEvents     = "events"
	FieldEdits      = "edits"
	FieldOperations = "operations"
	FieldOp         = "op"
	FieldNode       = "node"
	FieldProperty   = "property"
	FieldKind       = "kind"
	FieldOffset     = "offset"

	// Output fields.
	FieldWrite     = "write"
	FieldAdditions = "additions"
	FieldDeletions = "deletions"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
