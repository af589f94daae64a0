package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/treewrite/internal/ui/pretty"
	"github.com/yaklabco/treewrite/pkg/config"
)

func newTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree SOURCE",
		Short: "Print the syntax tree of a source file",
		Long: `Print every node of a source file with its kind, the path that
addresses it in edit scripts, and its line:column range.

Examples:
  treewrite tree main.tw`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			file, err := parseSource(ctx, args[0])
			if err != nil {
				return err
			}

			colorMode, err := cmd.Flags().GetString("color")
			if err != nil {
				colorMode = string(config.ColorAuto)
			}

			out := cmd.OutOrStdout()
			styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))
			_, _ = io.WriteString(out, styles.FormatTree(pretty.TreeRows(file)))
			return nil
		},
	}
}
