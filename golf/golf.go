// Package golf shortens Python programs: single sources, files, or whole
// directory trees.
package golf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/gnolang/pygolf/internal"
	tt "github.com/gnolang/pygolf/internal/types"
	"github.com/gnolang/pygolf/scanner"
)

// ErrInvalidInput is returned for programs that are not valid Python 3.
var ErrInvalidInput = internal.ErrInvalidInput

type Shortener interface {
	Shorten(ctx context.Context, src string) (*tt.Result, error)
	ShortenFile(ctx context.Context, filename string) (*tt.Result, error)
	IgnoreRule(rule string)
}

// Processor shortens one input with an engine.
type Processor func(ctx context.Context, engine Shortener, input string) (*tt.Result, error)

// New creates an engine configured by cfg.
func New(logger *zap.Logger, cfg Config) (*internal.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	target, err := cfg.Target()
	if err != nil {
		return nil, err
	}

	opts := []internal.Option{
		internal.WithLogger(logger),
		internal.WithTarget(target),
		internal.WithRules(cfg.Rules),
		internal.WithOutputSuffix(cfg.OutputSuffix),
	}
	if cfg.CacheDir != "" {
		cache, err := internal.NewCache(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, internal.WithCache(cache))
	}
	return internal.NewEngine(opts...), nil
}

func ProcessSource(ctx context.Context, engine Shortener, src string) (*tt.Result, error) {
	return engine.Shorten(ctx, src)
}

func ProcessFile(ctx context.Context, engine Shortener, path string) (*tt.Result, error) {
	return engine.ShortenFile(ctx, path)
}

// ProcessFiles processes each path in turn. Failures of single files do
// not stop the others; they are joined into the returned error.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Shortener,
	paths []string,
	exclude string,
	processor Processor,
) ([]*tt.Result, error) {
	var (
		all  []*tt.Result
		errs []error
	)
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, exclude, processor)
		all = append(all, results...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return all, ctxErr
			}
			errs = append(errs, Errors(err)...)
		}
	}
	return all, errors.Join(errs...)
}

// ProcessPath shortens a file, or every .py file under a directory except
// those ending with exclude. Directories are processed concurrently with
// a progress bar; results keep the lexical order of the files.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Shortener,
	path string,
	exclude string,
	processor Processor,
) ([]*tt.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		res, err := processor(ctx, engine, path)
		if err != nil {
			return nil, err
		}
		return []*tt.Result{res}, nil
	}

	sc := scanner.New(path)
	if exclude != "" {
		sc.Exclude(exclude)
	}
	files, err := sc.Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}

	bar := newProgressBar(len(files), path)
	results := make([]*tt.Result, len(files))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer bar.Add(1)
			res, err := processor(gctx, engine, file.Path)
			if err != nil {
				logger.Debug("error processing file", zap.String("file", file.Path), zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()

	done := make([]*tt.Result, 0, len(results))
	for _, res := range results {
		if res != nil {
			done = append(done, res)
		}
	}
	if err := ctx.Err(); err != nil {
		return done, err
	}
	return done, errors.Join(errs...)
}

func newProgressBar(n int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(term.IsTerminal(int(os.Stderr.Fd()))),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// Errors splits an error returned by ProcessFiles or ProcessPath into the
// failures of single files.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
