package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/yaklabco/treewrite/pkg/config"
)

// envVarPrefix is the prefix for all treewrite environment variables.
const envVarPrefix = "TREEWRITE_"

type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

// envMapping binds an environment variable to a config field.
type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"INDENT_STYLE":            {"format.indent_style", envTypeString, "Indent style: auto, spaces or tabs"},
	"INDENT_WIDTH":            {"format.indent_width", envTypeInt, "Spaces per indentation level"},
	"TAB_WIDTH":               {"format.tab_width", envTypeInt, "Column width of a tab"},
	"LINE_ENDING":             {"format.line_ending", envTypeString, "Line ending: auto, lf or crlf"},
	"BIND_INSERT_TO_PREVIOUS": {"rewrite.bind_insert_to_previous", envTypeBool, "Indent inserts like the previous entry"},
	"ATTACH_COMMENTS":         {"rewrite.attach_comments", envTypeBool, "Keep comments with their statement"},
	"COLOR":                   {"output.color", envTypeString, "Color mode: auto, always or never"},
	"DIFF_CONTEXT":            {"output.diff_context", envTypeInt, "Unchanged lines around each diff hunk"},
	"BACKUPS_ENABLED":         {"backups.enabled", envTypeBool, "Create backups when writing: true or false"},
	"BACKUPS_MODE":            {"backups.mode", envTypeString, "Backup mode: sidecar or none"},
	"NO_BACKUPS":              {"no_backups", envTypeBool, "Disable backups: true or false"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Variables are prefixed with TREEWRITE_ (e.g., TREEWRITE_INDENT_WIDTH).
// Empty variables are ignored.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	// Sorted so the first reported error does not depend on map order.
	suffixes := make([]string, 0, len(envMappings))
	for suffix := range envMappings {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)

	for _, suffix := range suffixes {
		envVar := envVarPrefix + suffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if err := applyEnvValue(cfg, envMappings[suffix], value, envVar); err != nil {
			return err
		}
	}

	return nil
}

func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "format.indent_style":
		cfg.Format.IndentStyle = config.IndentStyle(value)
	case "format.line_ending":
		cfg.Format.LineEnding = config.LineEnding(value)
	case "output.color":
		cfg.Output.Color = config.ColorMode(value)
	case "backups.mode":
		cfg.Backups.Mode = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "rewrite.bind_insert_to_previous":
		cfg.Rewrite.BindInsertToPrevious = value
	case "rewrite.attach_comments":
		cfg.Rewrite.AttachComments = value
	case "backups.enabled":
		cfg.Backups.Enabled = value
	case "no_backups":
		cfg.NoBackups = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "format.indent_width":
		cfg.Format.IndentWidth = value
	case "format.tab_width":
		cfg.Format.TabWidth = value
	case "output.diff_context":
		cfg.Output.DiffContext = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns every supported environment variable with its description.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.description
	}
	return vars
}
