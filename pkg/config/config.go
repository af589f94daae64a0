// Package config defines core configuration types for treewrite.
// These types are pure data structures; discovery, merging and validation
// live in internal/configloader.
package config

import "strings"

// IndentStyle selects the character used for new indentation levels.
type IndentStyle string

const (
	// IndentAuto reuses the indentation found in each file.
	IndentAuto   IndentStyle = "auto"
	IndentSpaces IndentStyle = "spaces"
	IndentTabs   IndentStyle = "tabs"
)

// IsValid returns true if the indent style is known.
func (s IndentStyle) IsValid() bool {
	switch s {
	case IndentAuto, IndentSpaces, IndentTabs:
		return true
	default:
		return false
	}
}

// LineEnding selects the delimiter of inserted lines.
type LineEnding string

const (
	// LineEndingAuto reuses the delimiter found in each file.
	LineEndingAuto LineEnding = "auto"
	LineEndingLF   LineEnding = "lf"
	LineEndingCRLF LineEnding = "crlf"
)

// IsValid returns true if the line ending is known.
func (e LineEnding) IsValid() bool {
	switch e {
	case LineEndingAuto, LineEndingLF, LineEndingCRLF:
		return true
	default:
		return false
	}
}

// Delimiter returns the line delimiter, or "" for LineEndingAuto.
func (e LineEnding) Delimiter() string {
	switch e {
	case LineEndingLF:
		return "\n"
	case LineEndingCRLF:
		return "\r\n"
	default:
		return ""
	}
}

// ColorMode controls styled terminal output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// IsValid returns true if the color mode is known.
func (m ColorMode) IsValid() bool {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

// FormatConfig controls the layout of generated code.
type FormatConfig struct {
	// IndentStyle is the character used for one indentation level.
	IndentStyle IndentStyle `yaml:"indent_style" toml:"indent_style"`

	// IndentWidth is the number of spaces per level when IndentStyle is
	// spaces, or auto and the file has no indented line.
	IndentWidth int `yaml:"indent_width" toml:"indent_width"`

	// TabWidth is the column width of a tab in existing code.
	TabWidth int `yaml:"tab_width" toml:"tab_width"`

	// LineEnding is the delimiter of inserted lines.
	LineEnding LineEnding `yaml:"line_ending" toml:"line_ending"`
}

// IndentUnit returns the text of one indentation level.
func (f FormatConfig) IndentUnit() string {
	return f.IndentUnitFor("")
}

// IndentUnitFor is like IndentUnit but uses detected, the unit found in the
// file being rewritten, when IndentStyle is auto.
func (f FormatConfig) IndentUnitFor(detected string) string {
	switch f.IndentStyle {
	case IndentTabs:
		return "\t"
	case IndentAuto:
		if detected != "" {
			return detected
		}
	}
	return strings.Repeat(" ", f.IndentWidth)
}

// RewriteConfig controls how edits are laid out around existing code.
type RewriteConfig struct {
	// BindInsertToPrevious indents inserted statements like the statement before them.
	BindInsertToPrevious bool `yaml:"bind_insert_to_previous" toml:"bind_insert_to_previous"`

	// AttachComments moves and removes comments together with the statement they annotate.
	AttachComments bool `yaml:"attach_comments" toml:"attach_comments"`
}

// OutputConfig controls terminal output.
type OutputConfig struct {
	// Color enables styled output ("auto", "always" or "never").
	Color ColorMode `yaml:"color" toml:"color"`

	// DiffContext is the number of unchanged lines around each diff hunk.
	DiffContext int `yaml:"diff_context" toml:"diff_context"`
}

// BackupsConfig controls backup behavior when rewriting files in place.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Mode    string `yaml:"mode" toml:"mode"` // "sidecar" or "none"
}

// Config is the root configuration structure for treewrite.
type Config struct {
	// Format controls generated code.
	Format FormatConfig `yaml:"format" toml:"format"`

	// Rewrite controls edit layout.
	Rewrite RewriteConfig `yaml:"rewrite" toml:"rewrite"`

	// Output controls terminal output.
	Output OutputConfig `yaml:"output" toml:"output"`

	// Backups configures backup behavior when writing.
	Backups BackupsConfig `yaml:"backups" toml:"backups"`

	// CLI-level options (not persisted to config files).

	// Write rewrites the input file in place.
	Write bool `yaml:"-" toml:"-"`

	// ShowDiff prints a unified diff of the result.
	ShowDiff bool `yaml:"-" toml:"-"`

	// ShowEdits prints the computed edit list.
	ShowEdits bool `yaml:"-" toml:"-"`

	// NoBackups disables backup creation when writing.
	NoBackups bool `yaml:"-" toml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Format: FormatConfig{
			IndentStyle: IndentAuto,
			IndentWidth: 4,
			TabWidth:    4,
			LineEnding:  LineEndingAuto,
		},
		Rewrite: RewriteConfig{
			BindInsertToPrevious: true,
			AttachComments:       true,
		},
		Output: OutputConfig{
			Color:       ColorAuto,
			DiffContext: 3,
		},
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    "sidecar",
		},
	}
}
