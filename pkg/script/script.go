// Package script reads edit scripts: YAML lists of structural operations
// that are recorded on a rewrite session.
//
// A script looks like:
//
//	operations:
//	  - op: remove
//	    path: statements[1]
//	  - op: insert
//	    path: statements
//	    after: statements[2]
//	    code: "d;"
//	  - op: set
//	    path: statements[0].expression.operator
//	    value: "-"
//
// Paths always address the tree as parsed; earlier operations never shift
// the indices used by later ones.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/treewrite/pkg/syntax"
)

// ErrInvalidScript is returned for malformed scripts and operations that do
// not fit the tree they are applied to.
var ErrInvalidScript = errors.New("invalid script")

// Op names an operation.
type Op string

// Supported operations.
const (
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
	OpInsert  Op = "insert"
	OpCopy    Op = "copy"
	OpMove    Op = "move"
	OpSet     Op = "set"
)

// Script is a parsed edit script.
type Script struct {
	Operations []Operation `yaml:"operations"`
}

// Operation is one step of a script.
type Operation struct {
	// Op selects the operation.
	Op Op `yaml:"op"`

	// Path designates the node, slot, list or attribute operated on.
	// For copy and move it is the destination.
	Path string `yaml:"path"`

	// From is the source of a copy or move; Through optionally extends it to
	// a range of consecutive list entries.
	From    string `yaml:"from,omitempty"`
	Through string `yaml:"through,omitempty"`

	// Placement inside a list; at most one is set. Without any, values are appended.
	Index  *int   `yaml:"index,omitempty"`
	Before string `yaml:"before,omitempty"`
	After  string `yaml:"after,omitempty"`

	// Code is parsed as a fragment of the slot's category.
	Code string `yaml:"code,omitempty"`

	// Text is emitted verbatim as a node of Kind.
	Text string `yaml:"text,omitempty"`
	Kind string `yaml:"kind,omitempty"`

	// Value is the new attribute value of a set operation.
	Value string `yaml:"value,omitempty"`
}

// OperationError reports which operation of a script failed.
type OperationError struct {
	Index int
	Op    Op
	Err   error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %d (%s): %v", e.Index+1, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// Parse decodes and validates a script. Unknown fields are rejected.
func Parse(data []byte) (*Script, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var s Script
	if err := decoder.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Validate checks that every operation carries the fields it needs and no
// fields it would ignore. It does not look at any tree.
func (s *Script) Validate() error {
	for idx, op := range s.Operations {
		if err := op.validate(); err != nil {
			return &OperationError{Index: idx, Op: op.Op, Err: fmt.Errorf("%w: %w", ErrInvalidScript, err)}
		}
	}
	return nil
}

func (o Operation) validate() error {
	if o.Path == "" {
		return errors.New("path is required")
	}

	hasValue := o.Code != "" || o.Text != ""
	placed := o.Index != nil || o.Before != "" || o.After != ""

	switch o.Op {
	case OpRemove:
		if hasValue || placed || o.From != "" || o.Value != "" {
			return errors.New("remove takes only a path")
		}
	case OpReplace:
		if placed || o.From != "" || o.Value != "" {
			return errors.New("replace takes a path and a value")
		}
	case OpInsert:
		if o.From != "" || o.Value != "" {
			return errors.New("insert takes a path, a value and a placement")
		}
	case OpCopy, OpMove:
		if o.From == "" {
			return fmt.Errorf("%s needs a source in from", o.Op)
		}
		if hasValue || o.Value != "" {
			return fmt.Errorf("%s takes its text from the source", o.Op)
		}
	case OpSet:
		if o.Value == "" {
			return errors.New("set needs a value")
		}
		if hasValue || placed || o.From != "" {
			return errors.New("set takes a path and a value")
		}
	default:
		return fmt.Errorf("unknown op %q", o.Op)
	}

	if o.Op == OpReplace || o.Op == OpInsert {
		if err := o.validateValue(); err != nil {
			return err
		}
	}
	if o.Through != "" && o.Op != OpCopy && o.Op != OpMove {
		return errors.New("through applies to copy and move")
	}
	if countSet(o.Index != nil, o.Before != "", o.After != "") > 1 {
		return errors.New("index, before and after are mutually exclusive")
	}
	if o.Index != nil && *o.Index < 0 {
		return fmt.Errorf("negative index %d", *o.Index)
	}
	return nil
}

func (o Operation) validateValue() error {
	switch {
	case o.Code != "" && o.Text != "":
		return errors.New("code and text are mutually exclusive")
	case o.Code == "" && o.Text == "":
		return errors.New("code or text is required")
	case o.Text != "":
		if _, ok := syntax.ParseKind(o.Kind); !ok {
			return fmt.Errorf("text needs a node kind, got %q", o.Kind)
		}
	case o.Kind != "":
		return errors.New("kind applies to text only")
	}
	return nil
}

func countSet(flags ...bool) int {
	count := 0
	for _, flag := range flags {
		if flag {
			count++
		}
	}
	return count
}
