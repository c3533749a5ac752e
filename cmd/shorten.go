package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/gnolang/pygolf/formatter"
	"github.com/gnolang/pygolf/golf"
	"github.com/gnolang/pygolf/internal"
	"github.com/gnolang/pygolf/internal/fixer"
	tt "github.com/gnolang/pygolf/internal/types"
)

type shortenOptions struct {
	code      string
	clipboard bool
	output    string
	write     bool
	dryRun    bool
	json      bool
}

func (o *shortenOptions) hasInput() bool {
	return o.code != "" || o.clipboard
}

var shortenFlags shortenOptions

// Clipboard access, replaced in tests.
var (
	readClipboard  = clipboard.ReadAll
	writeClipboard = clipboard.WriteAll
)

var shortenCmd = &cobra.Command{
	Use:   "shorten [paths...]",
	Short: "Shorten Python code from files, directories, stdin (-), --code or the clipboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShorten(cmd, args)
	},
}

func init() {
	addShortenFlags(shortenCmd)
}

func addShortenFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&shortenFlags.code, "code", "c", "", "Python code to shorten")
	f.BoolVar(&shortenFlags.clipboard, "clipboard", false, "Read code from the clipboard and write the result back")
	f.StringVarP(&shortenFlags.output, "output", "o", "", "Write the shortened file to this path")
	f.BoolVarP(&shortenFlags.write, "write", "w", false, "Overwrite each input file with its shortened version")
	f.BoolVar(&shortenFlags.dryRun, "dry-run", false, "Show what --write or --output would write")
	f.BoolVar(&shortenFlags.json, "json", false, "Report results as JSON")
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func runShorten(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	engine, _, err := newEngine()
	if err != nil {
		return err
	}
	return shorten(ctx, cmd, engine, shortenFlags, args)
}

// input is one program to shorten that is not a file.
type input struct {
	name string
	src  string
}

func shorten(ctx context.Context, cmd *cobra.Command, engine golf.Shortener, opts shortenOptions, args []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	var (
		sources []input
		paths   []string
	)
	if opts.code != "" {
		sources = append(sources, input{name: "", src: opts.code})
	}
	if opts.clipboard {
		src, err := readClipboard()
		if err != nil {
			return fmt.Errorf("reading clipboard: %w", err)
		}
		sources = append(sources, input{name: "clipboard", src: src})
	}
	for _, arg := range args {
		if arg != "-" {
			paths = append(paths, arg)
			continue
		}
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		sources = append(sources, input{name: "stdin", src: string(src)})
	}
	if len(sources) == 0 && len(paths) == 0 {
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		sources = append(sources, input{name: "stdin", src: string(src)})
	}

	output := opts.output
	if output != "" && (len(paths) != 1 || isDir(paths[0])) {
		fmt.Fprintln(stderr, "warning: --output needs exactly one file input and is ignored")
		output = ""
	}
	if opts.write && len(paths) == 0 {
		fmt.Fprintln(stderr, "warning: --write needs file inputs and is ignored")
	}

	var (
		results []*tt.Result
		errs    []error
		failed  bool
	)
	report := func(name string, err error) {
		failed = true
		errs = append(errs, err)
		if !opts.json {
			fmt.Fprint(stderr, formatter.FormatError(name, err, errors.Is(err, internal.ErrInvalidInput)))
		}
	}

	for _, in := range sources {
		res, err := golf.ProcessSource(ctx, engine, in.src)
		if err != nil {
			report(in.name, err)
			continue
		}
		if in.name == "clipboard" {
			if err := writeClipboard(res.Output); err != nil {
				report(in.name, fmt.Errorf("writing clipboard: %w", err))
				continue
			}
		}
		results = append(results, res)
		if !opts.json {
			fmt.Fprint(stdout, formatter.FormatResult(res, true))
		}
	}

	if len(paths) > 0 {
		exclude := ""
		if cfg, err := loadConfig(); err == nil {
			exclude = cfg.OutputSuffix
		}
		fileResults, err := golf.ProcessFiles(ctx, logger, engine, paths, exclude, golf.ProcessFile)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		for _, ferr := range golf.Errors(err) {
			report("", ferr)
		}

		fix := fixer.New(opts.dryRun, stdout)
		for _, res := range fileResults {
			results = append(results, res)
			var (
				written bool
				werr    error
			)
			switch {
			case output != "":
				written = true
				werr = fix.Fix(res, output)
			case opts.write:
				written = true
				werr = fix.Fix(res, "")
			}
			if werr != nil {
				logger.Debug("error writing result", zap.String("file", res.Filename), zap.Error(werr))
				report(res.Filename, werr)
				continue
			}
			if !opts.json {
				fmt.Fprint(stdout, formatter.FormatResult(res, !written))
			}
		}
		if len(fileResults) > 1 && !opts.json {
			fmt.Fprint(stdout, formatter.FormatSummary(fileResults))
		}
	}

	if opts.json {
		if err := formatter.WriteJSON(stdout, results, errs); err != nil {
			return err
		}
	}
	if failed {
		return ErrReported
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
