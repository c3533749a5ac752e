// Package rewrite scopes the rules active while a tree is parsed.
//
// A Session is owned by its caller: rules are registered before the parse
// that applies them, and the session is closed right after, so no rule
// outlives the phase that produced it. Sessions are independent; concurrent
// pipelines each use their own.
package rewrite

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/gnolang/pygolf/internal/ast"
	"github.com/gnolang/pygolf/internal/rules"
)

// ErrClosed is returned when registering on a closed session.
var ErrClosed = errors.New("rewrite session closed")

// TargetError reports a rule whose output needs a newer language version
// than the session targets.
type TargetError struct {
	Rule   string
	Since  *semver.Version
	Target *semver.Version
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("rule %s needs python %s, target is %s", e.Rule, e.Since, e.Target)
}

// Session is a set of active rules.
type Session struct {
	mu      sync.Mutex
	target  *semver.Version
	rules   []rules.Rule
	applied map[string]int
	closed  bool
}

// NewSession returns an empty session for the given target version. A nil
// target accepts every rule.
func NewSession(target *semver.Version) *Session {
	return &Session{target: target, applied: make(map[string]int)}
}

// Register activates r. Rules apply in registration order.
func (s *Session) Register(r rules.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.target != nil && r.Since() != nil && r.Since().GreaterThan(s.target) {
		return &TargetError{Rule: r.Name(), Since: r.Since(), Target: s.target}
	}
	s.rules = append(s.rules, r)
	return nil
}

// Len returns the number of active rules.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rules)
}

// Hook returns the parse hook applying the active rules. Once the session
// is closed the hook leaves every node unchanged.
func (s *Session) Hook() ast.Hook {
	return func(n ast.Node) ast.Node {
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, r := range s.rules {
			if n.Kind() == r.OnNode() && r.Predicate(n) {
				n = r.Transform(n)
				s.applied[r.Name()]++
			}
		}
		return n
	}
}

// Applied returns how many times each rule, by name, has fired.
func (s *Session) Applied() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.applied))
	for k, v := range s.applied {
		out[k] = v
	}
	return out
}

// Close deactivates every rule. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = nil
	s.closed = true
}
