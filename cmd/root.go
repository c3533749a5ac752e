package cmd

import (
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/pygolf/golf"
	"github.com/gnolang/pygolf/internal"
)

const defaultTimeout = 5 * time.Minute

// ErrReported is returned once a failure has been shown to the user; the
// caller only has to set the exit status.
var ErrReported = errors.New("failed")

var (
	cfgFile     string
	timeout     time.Duration
	verbose     bool
	ignoreRules string
	target      string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "pygolf [paths...]",
	Short:            "pygolf - shorten Python programs to as few characters as possible",
	TraverseChildren: true,
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !shortenFlags.hasInput() && stdinIsTerminal() {
			return cmd.Help()
		}
		return runShorten(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", golf.DefaultConfigFile, "Path to the configuration file")
	pf.DurationVar(&timeout, "timeout", defaultTimeout, "Give up after this long")
	pf.BoolVar(&verbose, "verbose", false, "Log every phase of the pipeline")
	pf.StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to disable")
	pf.StringVar(&target, "target", "", "Oldest Python version the output must run on (e.g. 3.6)")

	addShortenFlags(rootCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(shortenCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(replCmd)
}

// loadConfig reads the configuration file and applies the flags over it.
func loadConfig() (golf.Config, error) {
	cfg, err := golf.LoadConfig(cfgFile)
	if err != nil {
		return cfg, err
	}
	if target != "" {
		if _, err := semver.NewVersion(target); err != nil {
			return cfg, err
		}
		cfg.TargetVersion = target
	}
	return cfg, nil
}

// newEngine builds an engine from the configuration and flags.
func newEngine() (*internal.Engine, golf.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	engine, err := golf.New(logger, cfg)
	if err != nil {
		return nil, cfg, err
	}
	for _, rule := range splitList(ignoreRules) {
		engine.IgnoreRule(rule)
	}
	return engine, cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
