package config

import (
	"fmt"
	"strings"
)

// Template formats accepted by GenerateTemplate.
const (
	TemplateYAML = "yaml"
	TemplateTOML = "toml"
)

// GenerateTemplate renders the default configuration in format, preceded by
// a commented header that documents every key.
func GenerateTemplate(format string) ([]byte, error) {
	cfg := NewConfig()
	switch format {
	case TemplateYAML:
		return cfg.ToYAMLWithHeader(DefaultTemplateHeader())
	case TemplateTOML:
		return cfg.ToTOMLWithHeader(DefaultTemplateHeader())
	default:
		return nil, fmt.Errorf("unknown template format %q", format)
	}
}

// DefaultTemplateHeader returns the comment block written at the top of new
// configuration files.
func DefaultTemplateHeader() string {
	lines := []string{
		"treewrite configuration",
		"",
		"format.indent_style             auto, spaces or tabs, used for new nesting levels",
		"format.indent_width             spaces per level when no indentation is detected",
		"format.tab_width                column width of a tab in existing code",
		"format.line_ending              auto, lf or crlf",
		"rewrite.bind_insert_to_previous indent inserted statements like the one before them",
		"rewrite.attach_comments         keep comments with the statement they annotate",
		"output.color                    auto, always or never",
		"output.diff_context             unchanged lines shown around each diff hunk",
		"backups.enabled                 keep a copy of each file rewritten with --write",
		"backups.mode                    sidecar or none",
	}

	var sb strings.Builder
	for _, line := range lines {
		if line == "" {
			sb.WriteString("#\n")
			continue
		}
		sb.WriteString("# ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
