package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/pygolf/internal/ast"
	"github.com/gnolang/pygolf/internal/parser"
	"github.com/gnolang/pygolf/internal/printer"
)

var dumpPrinted bool

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Print the syntax tree of a Python file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		tree, err := parser.Parse(string(src), parser.WithFilename(args[0]))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		ast.Dump(out, tree)
		if dumpPrinted {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			v, err := cfg.Target()
			if err != nil {
				return err
			}
			text, err := printer.Config{Target: v}.Print(tree)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s\n", text)
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpPrinted, "printed", false, "Also print the minimal rendering of the tree")
}
