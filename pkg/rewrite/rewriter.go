package rewrite

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yaklabco/treewrite/internal/logging"
	"github.com/yaklabco/treewrite/pkg/edit"
	"github.com/yaklabco/treewrite/pkg/format"
	"github.com/yaklabco/treewrite/pkg/syntax"
)

// DefaultIndentUnit is used for new nesting levels when none is configured.
const DefaultIndentUnit = "    "

// DefaultTabWidth is the column width of a tab when none is configured.
const DefaultTabWidth = 4

// Options configures edit generation. The zero value is usable.
type Options struct {
	// Logger receives debug output. Nil discards it.
	Logger *log.Logger

	// Formatter lays out freshly built nodes.
	// Nil uses a format.TokenFormatter built from IndentUnit and LineDelimiter.
	Formatter format.Formatter

	// IndentUnit is one level of indentation inside containers that have no
	// entry to copy indentation from. Empty detects it from the file and
	// falls back to DefaultIndentUnit for files without indented lines.
	IndentUnit string

	// TabWidth is used when comparing indentation made of tabs and spaces.
	// Defaults to DefaultTabWidth.
	TabWidth int

	// LineDelimiter separates inserted lines. Empty uses the file's own delimiter.
	LineDelimiter string

	// BindInsertToPrevious makes ListRewrite values created by a Rewriter
	// indent line-oriented insertions like their previous sibling.
	BindInsertToPrevious bool

	// DetachComments keeps comments in place when their entry is removed,
	// copied or moved.
	DetachComments bool
}

// DefaultOptions returns the options used by the CLI when no config is present.
func DefaultOptions() Options {
	return Options{
		TabWidth:             DefaultTabWidth,
		BindInsertToPrevious: true,
	}
}

func (o Options) effectiveIndentUnit(file *syntax.File) string {
	if o.IndentUnit != "" {
		return o.IndentUnit
	}
	if unit := DetectIndentUnit(file); unit != "" {
		return unit
	}
	return DefaultIndentUnit
}

func (o Options) effectiveTabWidth() int {
	if o.TabWidth <= 0 {
		return DefaultTabWidth
	}
	return o.TabWidth
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

// ComputeEdits turns the events recorded in store and registry into a sorted,
// non-overlapping edit list over file.Content. The store is frozen first and
// stays readable, so the same inputs always yield the same edits.
// Errors wrap ErrInvalidArgument, ErrConsistency or scanner.ErrAnchorNotFound;
// no partial edit list is ever returned.
func ComputeEdits(file *syntax.File, store *Store, registry *Registry, opts Options) ([]edit.TextEdit, error) {
	switch {
	case file == nil || file.Root == nil:
		return nil, fmt.Errorf("%w: file has no tree", ErrInvalidArgument)
	case store == nil:
		return nil, fmt.Errorf("%w: nil store", ErrInvalidArgument)
	case registry == nil:
		registry = NewRegistry(store)
	case registry.store != store:
		return nil, fmt.Errorf("%w: registry belongs to another store", ErrInvalidArgument)
	}

	store.Freeze()
	logger := opts.logger().With(logging.FieldSession, uuid.NewString())
	logger.Debug("computing edits", logging.FieldPath, file.Path, logging.FieldEvents, store.Len())

	edits, err := newAnalyzer(file, store, registry, opts, logger).run()
	if err != nil {
		logger.Debug("rewrite failed", logging.FieldError, err)
		return nil, err
	}
	logger.Debug("computed edits", logging.FieldEdits, len(edits))
	return edits, nil
}

// Rewriter bundles one file with the store and registry of a rewrite session.
type Rewriter struct {
	file     *syntax.File
	store    *Store
	registry *Registry
	opts     Options
}

// NewRewriter starts a rewrite session over file.
func NewRewriter(file *syntax.File, opts Options) *Rewriter {
	store := NewStore()
	return &Rewriter{
		file:     file,
		store:    store,
		registry: NewRegistry(store),
		opts:     opts,
	}
}

// File returns the file being rewritten.
func (r *Rewriter) File() *syntax.File {
	return r.file
}

// Store returns the session's event store.
func (r *Rewriter) Store() *Store {
	return r.store
}

// Registry returns the session's placeholder registry.
func (r *Rewriter) Registry() *Registry {
	return r.registry
}

// ListRewrite returns a list rewrite for parent's list property prop.
func (r *Rewriter) ListRewrite(parent *syntax.Node, prop *syntax.Property) (*ListRewrite, error) {
	lr, err := NewListRewrite(r.store, r.registry, parent, prop)
	if err != nil {
		return nil, err
	}
	lr.SetBindToPrevious(r.opts.BindInsertToPrevious && prop.Layout == syntax.LayoutLines)
	return lr, nil
}

// Rewrite computes the edits of the session.
func (r *Rewriter) Rewrite() ([]edit.TextEdit, error) {
	return ComputeEdits(r.file, r.store, r.registry, r.opts)
}

// Result computes the edits of the session and applies them to a copy of the buffer.
func (r *Rewriter) Result() ([]byte, []edit.TextEdit, error) {
	edits, err := r.Rewrite()
	if err != nil {
		return nil, nil, err
	}
	return edit.Apply(r.file.Content, edits), edits, nil
}

// Reset discards every recorded event so the file can be rewritten again.
func (r *Rewriter) Reset() {
	r.store.Clear()
	r.registry = NewRegistry(r.store)
}
