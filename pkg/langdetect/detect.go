// Package langdetect classifies input files before they reach the parser.
// It uses go-enry to reject binary content and to name the language of files
// that do not look like treewrite sources.
package langdetect

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// SourceExtension is the file extension of treewrite sources.
const SourceExtension = ".tw"

// LanguageTreewrite is the language reported for treewrite sources.
const LanguageTreewrite = "treewrite"

// ErrBinary is returned by Check for binary content.
var ErrBinary = errors.New("binary content")

// Report describes an input file.
type Report struct {
	// Language is the detected language, LanguageTreewrite for .tw files,
	// or "" when nothing reliable was found.
	Language string

	// Binary is set when the content is not text.
	Binary bool

	// Generated is set when the content carries a generated-code marker.
	Generated bool
}

// Foreign returns true when the input was identified as another language.
func (r Report) Foreign() bool {
	return r.Language != "" && r.Language != LanguageTreewrite
}

// Inspect classifies content read from path.
func Inspect(path string, content []byte) Report {
	report := Report{
		Binary:    enry.IsBinary(content),
		Generated: enry.IsGenerated(path, content),
	}
	if report.Binary {
		return report
	}

	report.Language = Detect(path, content)
	return report
}

// Detect returns the language of content read from path.
// Returns "" if detection fails or confidence is low.
func Detect(path string, content []byte) string {
	if strings.EqualFold(filepath.Ext(path), SourceExtension) {
		return LanguageTreewrite
	}

	// A shebang is the most reliable signal.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	if path != "" && path != "-" {
		if lang, safe := enry.GetLanguageByExtension(path); safe {
			return normalize(lang)
		}
		if lang, safe := enry.GetLanguageByFilename(path); safe {
			return normalize(lang)
		}
	}

	return ""
}

// Check returns an error for inputs that cannot be parsed as text.
func Check(path string, content []byte) error {
	if Inspect(path, content).Binary {
		return fmt.Errorf("%w: %s", ErrBinary, path)
	}
	return nil
}

// normalize converts go-enry language names to lower-case identifiers.
func normalize(lang string) string {
	if lang == "Shell" {
		return "bash"
	}
	return strings.ToLower(lang)
}
