// Package optimizers turns usage statistics of a program into rename
// rules. An optimizer sees every node of the tree once, then emits the
// rules worth applying, drawing replacement names from a shared pool.
package optimizers

import (
	"errors"

	"github.com/gnolang/pygolf/internal/ast"
	"github.com/gnolang/pygolf/internal/rules"
)

// Optimizer collects statistics during one walk and emits rules.
type Optimizer interface {
	Name() string

	// Visit is called once for every node of the tree, in pre-order.
	Visit(n ast.Node)

	// Rules returns the rules worth applying. When the name pool runs dry
	// it returns the rules found so far together with
	// names.ErrPoolExhausted.
	Rules() ([]rules.Rule, error)
}

// Batch runs several optimizers over one walk of the tree. Rules are
// generated in the order the optimizers were given, so earlier optimizers
// get the better names.
type Batch struct {
	optimizers []Optimizer
}

// NewBatch returns a batch of the given optimizers.
func NewBatch(optimizers ...Optimizer) *Batch {
	return &Batch{optimizers: optimizers}
}

// Visit walks root once, handing every node to each optimizer.
func (b *Batch) Visit(root ast.Node) {
	ast.Inspect(root, func(n ast.Node) bool {
		for _, o := range b.optimizers {
			o.Visit(n)
		}
		return true
	})
}

// Rules collects the rules of every optimizer. Errors are joined; rules
// returned alongside an error are still valid.
func (b *Batch) Rules() ([]rules.Rule, error) {
	var (
		out  []rules.Rule
		errs []error
	)
	for _, o := range b.optimizers {
		rs, err := o.Rules()
		out = append(out, rs...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return out, errors.Join(errs...)
}
