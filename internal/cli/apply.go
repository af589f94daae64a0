package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/treewrite/internal/configloader"
	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/internal/ui/pretty"
	"github.com/yaklabco/treewrite/pkg/config"
	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/fsutil"
	"github.com/yaklabco/treewrite/pkg/langdetect"
	"github.com/yaklabco/treewrite/pkg/rewrite"
	"github.com/yaklabco/treewrite/pkg/script"
	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/parser"
)

var errConfig = errors.New("failed to load configuration")

// stdinName is the --script value that reads the script from standard input.
const stdinName = "-"

type applyFlags struct {
	script    string
	write     bool
	diff      bool
	edits     bool
	noBackups bool
}

func newApplyCommand() *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply --script FILE SOURCE",
		Short: "Apply an edit script to a source file",
		Long:  applyLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.script, "script", "s", "", "edit script to apply, - for stdin")
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "write the result back to the source file")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "print a unified diff instead of the result")
	cmd.Flags().BoolVar(&flags.edits, "edits", false, "print the computed text edits instead of the result")
	cmd.Flags().BoolVar(&flags.noBackups, "no-backups", false, "do not back up files before writing")
	_ = cmd.MarkFlagRequired("script")
	cmd.MarkFlagsMutuallyExclusive("diff", "edits")

	return cmd
}

const applyLongDescription = `Apply the operations of an edit script to a source file.

By default the rewritten source is printed to stdout. Only the regions the
script touches are regenerated; all other text is kept byte for byte.

Examples:
  treewrite apply -s ops.yaml main.tw           # Print the rewritten file
  treewrite apply -s ops.yaml --diff main.tw    # Show what would change
  treewrite apply -s ops.yaml --edits main.tw   # List the minimal text edits
  treewrite apply -s ops.yaml -w main.tw        # Rewrite main.tw in place
  cat ops.yaml | treewrite apply -s - main.tw   # Read the script from stdin`

func runApply(cmd *cobra.Command, path string, flags *applyFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cliCfg := &config.Config{
		Write:     flags.write,
		ShowDiff:  flags.diff,
		ShowEdits: flags.edits,
		NoBackups: flags.noBackups,
	}
	if cmd.Flags().Changed("color") {
		color, err := cmd.Flags().GetString("color")
		if err != nil {
			return fmt.Errorf("get color flag: %w", err)
		}
		cliCfg.Output.Color = config.ColorMode(color)
	}

	cfg, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}
	logger := logging.Default()

	s, err := readScript(cmd, flags.script)
	if err != nil {
		return err
	}

	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return err
	}

	report := langdetect.Inspect(path, content)
	if report.Binary {
		return fmt.Errorf("%w: %s", langdetect.ErrBinary, path)
	}
	if report.Foreign() {
		logger.Warn("input does not look like treewrite source",
			logging.FieldPath, path, "language", report.Language)
	}

	file, err := parser.ParseFile(path, content)
	if err != nil {
		return err
	}

	rw := rewrite.NewRewriter(file, rewriteOptions(cfg, logger, file))
	if err := script.Apply(logging.WithLogger(ctx, logger), rw, s); err != nil {
		return err
	}

	result, edits, err := rw.Result()
	if err != nil {
		return err
	}
	logger.Debug("rewrite computed",
		logging.FieldPath, path,
		logging.FieldOperations, len(s.Operations),
		logging.FieldEdits, len(edits),
	)

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(string(cfg.Output.Color), out))

	switch {
	case cfg.ShowDiff:
		diff := edit.GenerateDiff(path, content, result).WithContext(cfg.Output.DiffContext)
		var additions, deletions int
		if diff != nil {
			additions, deletions = diff.Additions, diff.Deletions
		}
		_, _ = io.WriteString(out, styles.FormatDiff(diff))
		_, _ = io.WriteString(out, styles.FormatChangeSummary(len(edits), additions, deletions))
	case cfg.ShowEdits:
		_, _ = io.WriteString(out, styles.FormatEdits(path, pretty.EditRows(file, edits)))
	case !cfg.Write:
		_, _ = out.Write(result)
	}

	if !cfg.Write {
		return nil
	}

	return writeResult(ctx, out, styles, cfg, info, result)
}

func writeResult(
	ctx context.Context,
	out io.Writer,
	styles *pretty.Styles,
	cfg *config.Config,
	info *fsutil.FileInfo,
	result []byte,
) error {
	backup := fsutil.BackupConfig{
		Enabled: cfg.Backups.Enabled && !cfg.NoBackups,
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}

	outcome, err := fsutil.WriteResult(ctx, info, result, backup)
	if err != nil {
		return err
	}

	logging.Default().Debug("write finished",
		logging.FieldPath, info.Path,
		logging.FieldWrite, outcome.Written,
	)
	if outcome.Written {
		_, _ = io.WriteString(out, styles.FormatWritten(info.Path, outcome.BackupPath))
	}
	return nil
}

// loadConfig layers configuration for the current directory and the
// persistent --config flag.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*config.Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loaded, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}

	logger := logging.Default()
	for _, warning := range loaded.Warnings {
		logger.Warn(warning)
	}
	if len(loaded.LoadedFrom) > 0 {
		logger.Debug("loaded configuration", logging.FieldConfig, loaded.LoadedFrom)
	}

	return loaded.Config, nil
}

func readScript(cmd *cobra.Command, name string) (*script.Script, error) {
	if name != stdinName {
		return script.Load(name)
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, fmt.Errorf("%w: refusing to read script from a terminal", ErrUsage)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return script.Parse(data)
}

func rewriteOptions(cfg *config.Config, logger *log.Logger, file *syntax.File) rewrite.Options {
	return rewrite.Options{
		Logger:               logger,
		IndentUnit:           cfg.Format.IndentUnitFor(rewrite.DetectIndentUnit(file)),
		TabWidth:             cfg.Format.TabWidth,
		LineDelimiter:        cfg.Format.LineEnding.Delimiter(),
		BindInsertToPrevious: cfg.Rewrite.BindInsertToPrevious,
		DetachComments:       !cfg.Rewrite.AttachComments,
	}
}

// parseSource reads and parses a source file for commands that only inspect it.
func parseSource(ctx context.Context, path string) (*syntax.File, error) {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := langdetect.Check(path, content); err != nil {
		return nil, err
	}
	return parser.ParseFile(path, content)
}
