package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lume/frontend-go/pkg/ast"
	"lume/frontend-go/pkg/check"
	"lume/frontend-go/pkg/diagnostics"
	"lume/frontend-go/pkg/stackguard"
	"lume/frontend-go/pkg/transform"
)

// Options configures a Compile run.
type Options struct {
	// Entrypoint overrides the entry name recorded on the book.
	Entrypoint string
	// EntryNames are the fallback entry names; the zero value means
	// check.DefaultEntryNames.
	EntryNames check.EntryNames
	// Parallel desugars up to this many rule bodies at once. 0 runs
	// sequentially.
	Parallel     int
	StackSegment int
	Logger       *zap.Logger
}

// Result is the outcome of a Compile run. Diagnostics holds everything the
// passes recorded, errors and warnings alike.
type Result struct {
	Book        *ast.Book
	Entry       string
	HasEntry    bool
	Diagnostics []diagnostics.Diagnostic
}

// Failed reports whether any pass recorded an error.
func (r *Result) Failed() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diagnostics.SeverityError {
			return true
		}
	}
	return false
}

// OptionsFromManifest carries the manifest's compile settings into Options.
// A nil manifest yields the defaults.
func OptionsFromManifest(m *Manifest) Options {
	if m == nil {
		return Options{}
	}
	return Options{
		Entrypoint:   m.Entrypoint,
		Parallel:     m.Compile.Parallel,
		StackSegment: m.Compile.StackSegment,
	}
}

// Compile desugars book in place and then runs the whole-program checks on
// it. Pass failures land in the book's diagnostics sink rather than the
// returned error.
func Compile(ctx context.Context, book *ast.Book, opts Options) (*Result, error) {
	if book == nil {
		return nil, errors.New("driver: nil book")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if book.Diagnostics == nil {
		book.Diagnostics = diagnostics.NewSink()
	}
	if opts.Entrypoint != "" {
		book.Entrypoint = opts.Entrypoint
	}
	names := opts.EntryNames
	if names == (check.EntryNames{}) {
		names = check.DefaultEntryNames
	}
	var guardOpts []stackguard.Option
	if opts.StackSegment > 0 {
		guardOpts = append(guardOpts, stackguard.WithSegment(opts.StackSegment))
	}

	start := time.Now()
	if opts.Parallel > 0 {
		if err := transform.DesugarUseParallel(ctx, book, opts.Parallel, guardOpts...); err != nil {
			logger.Warn("desugar canceled", zap.Error(err))
			return nil, err
		}
	} else {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		transform.DesugarUse(book, guardOpts...)
	}
	logger.Debug("desugared use bindings",
		zap.Int("definitions", len(book.Defs)),
		zap.Int("workers", opts.Parallel),
		zap.Duration("elapsed", time.Since(start)),
	)

	check.CheckArity(book)

	entry, ok := check.HasEntrypoint(book, names)
	if ok {
		logger.Debug("resolved entry point", zap.String("entry", entry))
		if book.Entrypoint != "" && entry != book.Entrypoint {
			book.Diagnostics.Warning(fmt.Errorf("entry point '%s' is not defined; using '%s'", book.Entrypoint, entry))
		}
	}

	result := &Result{
		Book:        book,
		Entry:       entry,
		HasEntry:    ok,
		Diagnostics: book.Diagnostics.Diagnostics(),
	}
	logger.Info("compile finished",
		zap.String("entry", entry),
		zap.Int("diagnostics", len(result.Diagnostics)),
		zap.Bool("failed", result.Failed()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}
