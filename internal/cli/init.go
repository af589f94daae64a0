package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/treewrite/internal/configloader"
	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/config"
)

type initFlags struct {
	force  bool
	format string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a treewrite configuration file",
		Long: `Create a .treewrite.yaml configuration file in the current directory
holding the default settings, with a header describing every key.

Examples:
  treewrite init                       Create .treewrite.yaml
  treewrite init --format toml         Create .treewrite.toml instead
  treewrite init --output custom.yaml  Write to a custom file path`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "overwrite an existing configuration file")
	cmd.Flags().StringVar(&flags.format, "format", config.TemplateYAML, "output format: yaml or toml")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "",
		"output file path (default: .treewrite.yaml or .treewrite.toml)")

	return cmd
}

func runInit(flags *initFlags) error {
	outputPath := flags.output
	switch flags.format {
	case config.TemplateYAML:
		if outputPath == "" {
			outputPath = ".treewrite.yaml"
		}
	case config.TemplateTOML:
		if outputPath == "" {
			outputPath = ".treewrite.toml"
		}
	default:
		return fmt.Errorf("%w: invalid format %q: must be yaml or toml", ErrUsage, flags.format)
	}

	if flags.output != "" && configloader.IsTOMLConfig(outputPath) != (flags.format == config.TemplateTOML) {
		return fmt.Errorf("%w: --format %s does not match the extension of %s", ErrUsage, flags.format, outputPath)
	}

	if err := configloader.WriteConfig(outputPath, flags.force); err != nil {
		return err
	}

	logging.Default().Info("created configuration file", logging.FieldPath, outputPath)
	return nil
}
