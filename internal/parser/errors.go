package parser

import (
	"errors"
	"fmt"

	"github.com/gnolang/pygolf/internal/ast"
)

// Error is a syntax error at a source position.
type Error struct {
	Filename string
	Pos      ast.Pos
	Msg      string

	// Incomplete is set when the input ended while a bracket, a triple-quoted
	// string or a block was still open, so more input could make it valid.
	Incomplete bool
}

func (e *Error) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// IsIncomplete reports whether err is a syntax error caused by input that
// ended too early.
func IsIncomplete(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Incomplete
}
