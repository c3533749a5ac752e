package optimizers

import (
	"fmt"

	"github.com/gnolang/pygolf/internal/ast"
	"github.com/gnolang/pygolf/internal/names"
	"github.com/gnolang/pygolf/internal/rules"
)

// RenameMethod routes frequent builtin calls through a short alias bound
// once at the top of the module, when that saves characters.
type RenameMethod struct {
	pool   *names.Pool
	facts  *rules.Facts
	counts map[string]int
	order  []string
}

// NewRenameMethod returns an optimizer drawing aliases from pool. facts
// describes the program it will visit.
func NewRenameMethod(pool *names.Pool, facts *rules.Facts) *RenameMethod {
	return &RenameMethod{pool: pool, facts: facts, counts: make(map[string]int)}
}

func (o *RenameMethod) Name() string { return rules.RenameBuiltinCall }

func (o *RenameMethod) Visit(n ast.Node) {
	call, ok := n.(*ast.Call)
	if !ok {
		return
	}
	name, ok := call.Func.(*ast.Name)
	if !ok || !rules.IsBuiltin(name.ID) || o.facts.Rebound(name.ID) {
		return
	}
	if o.counts[name.ID] == 0 {
		o.order = append(o.order, name.ID)
	}
	o.counts[name.ID]++
}

// Count returns how many calls of builtin were seen.
func (o *RenameMethod) Count(builtin string) int {
	return o.counts[builtin]
}

func (o *RenameMethod) Rules() ([]rules.Rule, error) {
	var out []rules.Rule
	for _, builtin := range o.order {
		alias, err := o.pool.Peek()
		if err != nil {
			return out, fmt.Errorf("aliasing %s: %w", builtin, err)
		}
		if !worthAliasing(builtin, alias, o.counts[builtin]) {
			continue
		}
		if _, err := o.pool.Pop(); err != nil {
			return out, err
		}
		out = append(out,
			rules.RenameCall{Original: builtin, Alias: alias},
			rules.DefineAlias{Alias: alias, Original: builtin},
		)
	}
	return out, nil
}

// worthAliasing compares count calls spelled in full with count calls of
// the alias plus the alias definition.
func worthAliasing(builtin, alias string, count int) bool {
	renamed := len(alias)*count + len(alias+"="+builtin)
	return renamed < len(builtin)*count
}
