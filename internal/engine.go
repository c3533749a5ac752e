package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/gnolang/pygolf/internal/parser"
	"github.com/gnolang/pygolf/internal/phases"
	"github.com/gnolang/pygolf/internal/printer"
	tt "github.com/gnolang/pygolf/internal/types"
)

var (
	// ErrInvalidInput wraps the syntax error of a program that is not
	// valid Python 3.
	ErrInvalidInput = errors.New("input code is not a valid python code")

	// ErrRoundTrip reports printed code that does not parse back.
	ErrRoundTrip = errors.New("shortened code does not parse")
)

// Engine shortens Python programs. It is safe for concurrent use: each
// call owns its own rewrite sessions.
type Engine struct {
	logger       *zap.Logger
	target       *semver.Version
	cache        *Cache
	ignoredRules map[string]bool
	outSuffix    string

	mu    sync.Mutex
	watch *watchState
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTarget sets the oldest Python version the output must run on.
func WithTarget(v *semver.Version) Option {
	return func(e *Engine) {
		if v != nil {
			e.target = v
		}
	}
}

// WithCache stores results in c, keyed by source and configuration.
func WithCache(c *Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithRules disables the rules the configuration turns off.
func WithRules(rules map[string]tt.ConfigRule) Option {
	return func(e *Engine) {
		for name, r := range rules {
			if !r.Enabled {
				e.IgnoreRule(name)
			}
		}
	}
}

// WithOutputSuffix sets the suffix of files written in watch mode.
func WithOutputSuffix(suffix string) Option {
	return func(e *Engine) {
		if suffix != "" {
			e.outSuffix = suffix
		}
	}
}

// NewEngine creates a new shortening engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:       zap.NewNop(),
		target:       printer.DefaultTarget,
		ignoredRules: make(map[string]bool),
		outSuffix:    ".golf.py",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

func (e *Engine) Target() *semver.Version { return e.target }

func (e *Engine) enabled(rule string) bool {
	return !e.ignoredRules[rule]
}

// fingerprint identifies the configuration a cached result was made with.
func (e *Engine) fingerprint() string {
	ignored := make([]string, 0, len(e.ignoredRules))
	for name := range e.ignoredRules {
		ignored = append(ignored, name)
	}
	sort.Strings(ignored)
	return e.target.String() + "|" + strings.Join(ignored, ",")
}

// Shorten returns the shortest rendering of src the enabled rules find.
// The output is never longer than src.
func (e *Engine) Shorten(ctx context.Context, src string) (*tt.Result, error) {
	if e.cache != nil {
		if res, ok := e.cache.Get(src, e.fingerprint()); ok {
			e.logger.Debug("cache hit", zap.Int("chars", res.Stats.Original))
			res.Cached = true
			return res, nil
		}
	}

	res, err := e.shorten(ctx, src)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(src, e.fingerprint(), res); err != nil {
			e.logger.Debug("cache write failed", zap.Error(err))
		}
	}
	return res, nil
}

func (e *Engine) shorten(ctx context.Context, src string) (*tt.Result, error) {
	if _, err := parser.Parse(src); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	applied := make(map[string]int)
	text := src
	for _, p := range phases.Default(e.enabled) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.logger.Debug("phase start", zap.String("phase", p.Name()))

		res, err := phases.Run(p, text, e.target)
		if err != nil {
			var perr *parser.Error
			if text != src && errors.As(err, &perr) {
				return nil, fmt.Errorf("%w: %w", ErrRoundTrip, err)
			}
			return nil, err
		}
		if res.Exhausted {
			e.logger.Debug("name pool exhausted", zap.String("phase", p.Name()))
		}
		if len(res.Rejected) > 0 {
			e.logger.Debug("rules rejected for target",
				zap.String("phase", p.Name()),
				zap.Strings("rules", res.Rejected),
				zap.Stringer("target", e.target))
		}
		for name, n := range res.Applied {
			applied[name] += n
		}
		e.logger.Debug("phase done",
			zap.String("phase", p.Name()),
			zap.Int("rules", res.Generated),
			zap.Int("chars", len(res.Text)))
		text = res.Text
	}

	if _, err := parser.Parse(text); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRoundTrip, err)
	}

	stats := tt.Measure(src, text)
	if stats.Saved() <= 0 {
		text = src
		stats = tt.Measure(src, src)
		applied = nil
	}
	return &tt.Result{Output: text, Stats: stats, Applied: applied}, nil
}

// ShortenFile shortens the program stored in filename.
func (e *Engine) ShortenFile(ctx context.Context, filename string) (*tt.Result, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	res, err := e.Shorten(ctx, string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	res.Filename = filename
	return res, nil
}
