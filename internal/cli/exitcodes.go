package cli

import (
	"errors"

	"github.com/yaklabco/treewrite/internal/configloader"
	"github.com/yaklabco/treewrite/pkg/fsutil"
	"github.com/yaklabco/treewrite/pkg/langdetect"
	"github.com/yaklabco/treewrite/pkg/rewrite"
	"github.com/yaklabco/treewrite/pkg/script"
	"github.com/yaklabco/treewrite/pkg/syntax"
	"github.com/yaklabco/treewrite/pkg/syntax/parser"
)

// Exit codes for treewrite.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitRewriteError indicates the recorded edits could not be turned into text.
	ExitRewriteError = 1

	// ExitInputError indicates an unparsable source file or edit script.
	ExitInputError = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ErrUsage marks errors caused by command-line misuse.
var ErrUsage = errors.New("invalid usage")

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		validationErr *configloader.ValidationError
		syntaxErr     *parser.SyntaxError
	)

	switch {
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.As(err, &validationErr), errors.Is(err, errConfig):
		return ExitConfigError
	case errors.As(err, &syntaxErr),
		errors.Is(err, script.ErrInvalidScript),
		errors.Is(err, syntax.ErrInvalidPath),
		errors.Is(err, langdetect.ErrBinary):
		return ExitInputError
	case errors.Is(err, rewrite.ErrInvalidArgument),
		errors.Is(err, rewrite.ErrConflict),
		errors.Is(err, rewrite.ErrConsistency):
		return ExitRewriteError
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, fsutil.ErrModified):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
