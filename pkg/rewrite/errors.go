package rewrite

import "errors"

// Event store and generation errors. Callers test them with errors.Is.
var (
	// ErrInvalidArgument reports a contract violation detected at the mutating call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict reports a second, different write to an already changed slot.
	ErrConflict = errors.New("conflicting rewrite")

	// ErrStoreFrozen reports a write after edits were generated from the store.
	ErrStoreFrozen = errors.New("event store is frozen")

	// ErrConsistency reports events that cannot be turned into a coherent edit list.
	ErrConsistency = errors.New("inconsistent rewrite")
)
