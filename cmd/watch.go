package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnolang/pygolf/formatter"
	"github.com/gnolang/pygolf/internal"
	tt "github.com/gnolang/pygolf/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Shorten .py files every time they are saved",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := newEngine()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		err = engine.StartWatching(ctx, args, func(name string, res *tt.Result, err error) {
			if err != nil {
				fmt.Fprint(errOut, formatter.FormatError(name, err, isInvalid(err)))
				return
			}
			fmt.Fprintf(out, "%s -> %s\n", name, engine.OutputPath(name))
			fmt.Fprint(out, formatter.FormatResult(res, false))
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Watching %d directories, press Ctrl-C to stop\n", len(args))

		<-ctx.Done()
		return engine.StopWatching()
	},
}

func isInvalid(err error) bool {
	return errors.Is(err, internal.ErrInvalidInput)
}
