// Package fixer writes shortened programs to disk.
package fixer

import (
	"fmt"
	"io"
	"os"

	"github.com/gnolang/pygolf/internal/parser"
	tt "github.com/gnolang/pygolf/internal/types"
)

type Fixer struct {
	DryRun bool
	// Out receives dry-run previews.
	Out io.Writer
}

func New(dryRun bool, out io.Writer) *Fixer {
	if out == nil {
		out = os.Stdout
	}
	return &Fixer{DryRun: dryRun, Out: out}
}

// Fix writes res to dest, or over the file it was read from when dest is
// empty. The output is checked to parse before anything is written.
func (f *Fixer) Fix(res *tt.Result, dest string) error {
	if dest == "" {
		dest = res.Filename
	}
	if dest == "" {
		return fmt.Errorf("no destination for shortened code")
	}
	if _, err := parser.Parse(res.Output, parser.WithFilename(dest)); err != nil {
		return fmt.Errorf("refusing to write %s: %w", dest, err)
	}

	if f.DryRun {
		fmt.Fprintf(f.Out, "Would write %d characters to %s (saving %d):\n%s\n",
			res.Stats.Shortened, dest, res.Stats.Saved(), res.Output)
		return nil
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(dest); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(dest, []byte(res.Output), mode); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
