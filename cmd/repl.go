package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/gnolang/pygolf/formatter"
	"github.com/gnolang/pygolf/golf"
	"github.com/gnolang/pygolf/internal/parser"
)

const (
	historyFile = ".pygolf_history"
	promptMain  = ">>> "
	promptCont  = "... "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Shorten programs typed interactively; a blank line ends a program",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := newEngine()
		if err != nil {
			return err
		}

		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)

		home, _ := os.UserHomeDir()
		histPath := filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()

		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		fmt.Fprintln(out, "pygolf repl: enter a program, end it with a blank line, :quit to exit")
		for {
			src, ok := readProgram(ln.Prompt)
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			switch strings.TrimSpace(src) {
			case "":
				continue
			case ":quit", ":q":
				return nil
			}

			res, err := golf.ProcessSource(cmd.Context(), engine, src+"\n")
			if err != nil {
				fmt.Fprint(errOut, formatter.FormatError("", err, isInvalid(err)))
				continue
			}
			fmt.Fprint(out, formatter.FormatResult(res, true))
			ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		}
	},
}

// readProgram reads lines until they form a complete program. A single
// simple statement completes at once; anything spanning several lines
// ends with a blank line.
func readProgram(prompt func(string) (string, error)) (string, bool) {
	var lines []string
	for {
		p := promptMain
		if len(lines) > 0 {
			p = promptCont
		}
		line, err := prompt(p)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			if len(lines) == 0 {
				return "", false
			}
			return strings.Join(lines, "\n"), true
		}
		if err != nil {
			return "", false
		}

		if strings.TrimSpace(line) == "" && len(lines) > 0 {
			return strings.Join(lines, "\n"), true
		}
		lines = append(lines, line)

		src := strings.Join(lines, "\n")
		_, perr := parser.Parse(src + "\n")
		if parser.IsIncomplete(perr) {
			continue
		}
		if len(lines) == 1 && !strings.HasSuffix(strings.TrimSpace(line), ":") {
			return src, true
		}
	}
}
