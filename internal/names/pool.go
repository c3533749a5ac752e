// Package names allocates short replacement identifiers.
package names

import (
	"errors"
	"unicode/utf8"
)

// ErrPoolExhausted is returned when no candidate identifier remains.
var ErrPoolExhausted = errors.New("identifier pool exhausted")

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Pool hands out one-character identifiers in a fixed order, skipping the
// ones the program already relies on. A Pool lives for one renaming phase
// and is not safe for concurrent use.
type Pool struct {
	candidates []string
	next       int
	forbidden  map[string]bool
}

// NewPool returns a pool holding the 52 ASCII letters, lowercase first.
func NewPool() *Pool {
	p := &Pool{forbidden: make(map[string]bool)}
	for i := 0; i < len(letters); i++ {
		p.candidates = append(p.candidates, letters[i:i+1])
	}
	return p
}

// Forbid blocks name from being handed out. Names longer than one
// character can never clash with a candidate and are ignored.
func (p *Pool) Forbid(name string) {
	if utf8.RuneCountInString(name) == 1 {
		p.forbidden[name] = true
	}
}

// Forbidden reports whether name has been blocked.
func (p *Pool) Forbidden(name string) bool {
	return p.forbidden[name]
}

// Peek returns the best remaining candidate without consuming it.
func (p *Pool) Peek() (string, error) {
	i, err := p.seek()
	if err != nil {
		return "", err
	}
	return p.candidates[i], nil
}

// Pop returns the best remaining candidate and removes it from the pool.
func (p *Pool) Pop() (string, error) {
	i, err := p.seek()
	if err != nil {
		return "", err
	}
	p.next = i + 1
	return p.candidates[i], nil
}

// Remaining returns how many candidates are still available.
func (p *Pool) Remaining() int {
	n := 0
	for _, c := range p.candidates[p.next:] {
		if !p.forbidden[c] {
			n++
		}
	}
	return n
}

func (p *Pool) seek() (int, error) {
	for i := p.next; i < len(p.candidates); i++ {
		if !p.forbidden[p.candidates[i]] {
			return i, nil
		}
	}
	return 0, ErrPoolExhausted
}
