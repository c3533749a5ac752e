package optimizers

import (
	"fmt"
	"unicode/utf8"

	"github.com/gnolang/pygolf/internal/ast"
	"github.com/gnolang/pygolf/internal/names"
	"github.com/gnolang/pygolf/internal/rules"
)

// AssignName renames assigned variables to shorter pool names. Renaming is
// flat: a name is renamed everywhere in the program, whatever its scope.
type AssignName struct {
	pool  *names.Pool
	facts *rules.Facts
	seen  map[string]bool
	order []string
}

// NewAssignName returns an optimizer drawing names from pool. facts
// describes the program it will visit.
func NewAssignName(pool *names.Pool, facts *rules.Facts) *AssignName {
	return &AssignName{pool: pool, facts: facts, seen: make(map[string]bool)}
}

func (o *AssignName) Name() string { return rules.RenameAssignedName }

func (o *AssignName) Visit(n ast.Node) {
	if a, ok := n.(*ast.AssignName); ok && !o.seen[a.ID] {
		o.seen[a.ID] = true
		o.order = append(o.order, a.ID)
	}
}

func (o *AssignName) Rules() ([]rules.Rule, error) {
	for _, name := range o.order {
		o.pool.Forbid(name)
	}
	var out []rules.Rule
	for _, name := range o.order {
		if !o.facts.Renamable(name) {
			continue
		}
		short, err := o.pool.Peek()
		if err != nil {
			return out, fmt.Errorf("renaming %s: %w", name, err)
		}
		if utf8.RuneCountInString(short) >= utf8.RuneCountInString(name) {
			continue
		}
		if _, err := o.pool.Pop(); err != nil {
			return out, err
		}
		out = append(out, rules.Rename(name, short)...)
	}
	return out, nil
}
