package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jamesainslie/crxlint/pkg/crxlint/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage crxlint configuration settings.

Configuration is loaded from:
  1. --config <file> (if given)
  2. $XDG_CONFIG_HOME/crxlint/config.yaml (~/.config/crxlint/config.yaml
     when XDG_CONFIG_HOME is unset)

Environment variables override config file settings using the CRXLINT_ prefix:
  CRXLINT_OUTPUT=json
  CRXLINT_LOGGING_LEVEL=debug
  CRXLINT_SCAN_EXCLUDE=vendor/**,third_party/**`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.runConfigShow(cmd)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if used := a.v.ConfigFileUsed(); used != "" {
					fmt.Fprintln(cmd.OutOrStdout(), used)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), config.ConfigPath())
				return nil
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create default configuration file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, created, err := config.WriteDefault()
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", path)
				}
				return nil
			},
		},
	)
	return cmd
}

func (a *app) runConfigShow(cmd *cobra.Command) error {
	w := cmd.OutOrStdout()

	if used := a.v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", used)
	} else {
		fmt.Fprint(w, "Config file: (using defaults, no file found)\n\n")
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a.v.AllSettings()); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nEnvironment overrides:")
	var overrides []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, config.EnvPrefix+"_") {
			overrides = append(overrides, kv)
		}
	}
	sort.Strings(overrides)
	if len(overrides) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, kv := range overrides {
		fmt.Fprintln(w, kv)
	}
	return nil
}
