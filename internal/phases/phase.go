// Package phases sequences rule generation and application. Each phase
// derives rules from the current tree, applies them while re-parsing the
// same text, and prints the result for the next phase.
package phases

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/gnolang/pygolf/internal/ast"
	"github.com/gnolang/pygolf/internal/names"
	"github.com/gnolang/pygolf/internal/optimizers"
	"github.com/gnolang/pygolf/internal/parser"
	"github.com/gnolang/pygolf/internal/printer"
	"github.com/gnolang/pygolf/internal/rewrite"
	"github.com/gnolang/pygolf/internal/rules"
)

// Phase generates the rules to apply to a tree.
type Phase interface {
	Name() string
	Rules(tree *ast.Module) ([]rules.Rule, error)
}

// Filter reports whether the rule with the given name is enabled. A nil
// Filter enables every rule.
type Filter func(rule string) bool

func (f Filter) enabled(rule string) bool {
	return f == nil || f(rule)
}

// AlwaysApply holds the structural rewrites, which do not depend on the
// names used by the program.
type AlwaysApply struct {
	Filter Filter
}

func (AlwaysApply) Name() string { return "always-apply" }

func (p AlwaysApply) Rules(tree *ast.Module) ([]rules.Rule, error) {
	facts := rules.Analyze(tree)
	all := []rules.Rule{
		rules.FormatCall{},
		rules.NewRangeFor(facts),
		rules.NewComprehensionMap(facts),
		rules.NewListAppend(tree),
		rules.AnnAssign{},
	}
	var out []rules.Rule
	for _, r := range all {
		if p.Filter.enabled(r.Name()) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Rename shortens variable names and aliases frequently called builtins.
// Both optimizers share one pool, variables first.
type Rename struct {
	Filter Filter
}

func (Rename) Name() string { return "rename" }

func (p Rename) Rules(tree *ast.Module) ([]rules.Rule, error) {
	facts := rules.Analyze(tree)
	pool := names.NewPool()
	for name := range facts.Short {
		pool.Forbid(name)
	}

	var opts []optimizers.Optimizer
	if p.Filter.enabled(rules.RenameAssignedName) {
		opts = append(opts, optimizers.NewAssignName(pool, facts))
	}
	if p.Filter.enabled(rules.RenameBuiltinCall) {
		opts = append(opts, optimizers.NewRenameMethod(pool, facts))
	}
	batch := optimizers.NewBatch(opts...)
	batch.Visit(tree)
	return batch.Rules()
}

// Default returns the phases in the order they run.
func Default(filter Filter) []Phase {
	return []Phase{AlwaysApply{Filter: filter}, Rename{Filter: filter}}
}

// Result describes one completed phase.
type Result struct {
	Phase string
	Tree  *ast.Module
	Text  string
	// Generated counts the rules the phase produced.
	Generated int
	// Rejected lists rules refused for the target version.
	Rejected []string
	// Applied counts transforms per rule name.
	Applied map[string]int
	// Exhausted is set when renaming stopped for lack of names.
	Exhausted bool
}

// Run applies p to src. The rules are active only for the parse of src
// that applies them.
func Run(p Phase, src string, target *semver.Version) (*Result, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("phase %s: %w", p.Name(), err)
	}
	res := &Result{Phase: p.Name()}

	rs, err := p.Rules(tree)
	switch {
	case errors.Is(err, names.ErrPoolExhausted):
		res.Exhausted = true
	case err != nil:
		return nil, fmt.Errorf("phase %s: %w", p.Name(), err)
	}
	res.Generated = len(rs)

	res.Tree, res.Applied, res.Rejected, err = apply(src, rs, target)
	if err != nil {
		return nil, fmt.Errorf("phase %s: %w", p.Name(), err)
	}
	res.Text, err = printer.Config{Target: target}.Print(res.Tree)
	if err != nil {
		return nil, fmt.Errorf("phase %s: %w", p.Name(), err)
	}
	return res, nil
}

func apply(src string, rs []rules.Rule, target *semver.Version) (*ast.Module, map[string]int, []string, error) {
	s := rewrite.NewSession(target)
	defer s.Close()

	var rejected []string
	for _, r := range rs {
		err := s.Register(r)
		var te *rewrite.TargetError
		switch {
		case errors.As(err, &te):
			rejected = append(rejected, r.Name())
		case err != nil:
			return nil, nil, nil, err
		}
	}
	tree, err := parser.Parse(src, parser.WithHook(s.Hook()))
	if err != nil {
		return nil, nil, nil, err
	}
	return tree, s.Applied(), rejected, nil
}
