package configloader

import (
	"fmt"
	"strings"

	"github.com/yaklabco/treewrite/pkg/config"
)

// maxIndentWidth bounds indent and tab widths.
const maxIndentWidth = 16

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "format.indent_width").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	})
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	format := cfg.Format
	if !format.IndentStyle.IsValid() {
		result.fail("format.indent_style", format.IndentStyle,
			"invalid indent style %q; must be one of: auto, spaces, tabs", format.IndentStyle)
	}
	if format.IndentWidth < 1 || format.IndentWidth > maxIndentWidth {
		result.fail("format.indent_width", format.IndentWidth,
			"indent width must be between 1 and %d", maxIndentWidth)
	}
	if format.TabWidth < 1 || format.TabWidth > maxIndentWidth {
		result.fail("format.tab_width", format.TabWidth,
			"tab width must be between 1 and %d", maxIndentWidth)
	}
	if !format.LineEnding.IsValid() {
		result.fail("format.line_ending", format.LineEnding,
			"invalid line ending %q; must be one of: auto, lf, crlf", format.LineEnding)
	}
	if format.IndentStyle == config.IndentTabs && format.IndentWidth != format.TabWidth {
		result.warn("format.indent_width", format.IndentWidth,
			"indent_width is ignored when indent_style is tabs")
	}

	if !cfg.Output.Color.IsValid() {
		result.fail("output.color", cfg.Output.Color,
			"invalid color mode %q; must be one of: auto, always, never", cfg.Output.Color)
	}
	if cfg.Output.DiffContext < 0 {
		result.fail("output.diff_context", cfg.Output.DiffContext, "diff context must be >= 0")
	}

	if !IsValidBackupMode(cfg.Backups.Mode) {
		result.fail("backups.mode", cfg.Backups.Mode,
			"invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode)
	}

	return result
}

// ValidateWithFile validates configuration and includes file path in findings.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidBackupMode returns true if the backup mode is valid.
func IsValidBackupMode(mode string) bool {
	return mode == "sidecar" || mode == "none"
}
