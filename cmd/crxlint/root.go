package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jamesainslie/crxlint/pkg/crxlint/config"
	"github.com/jamesainslie/crxlint/pkg/crxlint/logging"
	"github.com/jamesainslie/crxlint/pkg/crxlint/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by all commands of one invocation.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "crxlint",
		Short: "Lint browser extension manifests and permission usage",
		Long: `crxlint checks Manifest V3 browser extensions.

It validates manifest.json against a fixed rule set, analyzes which
permissions the sources actually use, and keeps plugin registries in sync.

Examples:
  crxlint validate ./manifest.json        # Validate a manifest
  crxlint validate -w .                   # Re-validate on every change
  crxlint analyze ./my-extension          # Compare declared and used permissions
  crxlint analyze -o json .               # Machine-readable analysis
  crxlint registry sync ./plugins -n      # Preview plugin.json updates
  crxlint config show                     # Show configuration`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/crxlint/config.yaml)")
	root.PersistentFlags().StringP("output", "o", "", "output format ("+strings.Join(output.Available(), ", ")+")")
	root.PersistentFlags().BoolP("verbose", "v", false, "debug output on stderr")

	root.AddCommand(
		newValidateCmd(a),
		newAnalyzeCmd(a),
		newRegistryCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and initializes logging before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.v = config.New(a.cfgFile)
	if err := a.v.BindPFlag("output", cmd.Flags().Lookup("output")); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	console := cfg.Logging.Console
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		console = "debug"
	}

	return logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		ConsoleLevel: console,
		Components:   cfg.Logging.Components,
		Console:      cmd.ErrOrStderr(),
	})
}

// formatter returns the configured output formatter.
func (a *app) formatter() (output.Formatter, error) {
	return output.Get(a.cfg.Output)
}

// existingPathArg requires exactly one argument naming an existing path.
func existingPathArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return fmt.Errorf("%w\nUsage: %s", err, cmd.UseLine())
	}
	if _, err := os.Stat(args[0]); err != nil {
		return fmt.Errorf("path not found: %s", args[0])
	}
	return nil
}
