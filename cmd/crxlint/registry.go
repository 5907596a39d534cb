package main

import (
	"bytes"
	"fmt"

	"github.com/jamesainslie/crxlint/pkg/crxlint/registry"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newRegistryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Maintain category bundle plugin.json files",
	}
	cmd.AddCommand(newRegistrySyncCmd(a))
	return cmd
}

func newRegistrySyncCmd(a *app) *cobra.Command {
	var (
		dryRun   bool
		excludes []string
	)

	cmd := &cobra.Command{
		Use:   "sync <plugins-dir>",
		Short: "Regenerate skills arrays from the plugin directory layout",
		Long: `Sync visits every category directory under <plugins-dir> that contains
.claude-plugin/plugin.json and rewrites its "skills" array from the plugin
directories found beside it:

  <plugin>/skills/SKILL.md  ->  "./<plugin>/skills/"
  <plugin>/SKILL.md         ->  "./<plugin>/"

Plugins without a SKILL.md are skipped with a warning. Other keys keep their
order. With --dry-run nothing is written.

Concurrent runs against the same directory are not supported.`,
		Args: existingPathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.formatter()
			if err != nil {
				return err
			}

			syncer := registry.New(afero.NewOsFs(), registry.Options{
				Exclude: append(append([]string{}, a.cfg.Registry.Exclude...), excludes...),
				DryRun:  dryRun,
			})
			// A failed run still reports the categories it already handled.
			res, syncErr := syncer.Sync(args[0])
			if res != nil {
				var buf bytes.Buffer
				if err := f.FormatSync(&buf, res); err != nil {
					return fmt.Errorf("formatting sync result: %w", err)
				}
				if _, err := buf.WriteTo(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return syncErr
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report changes without writing")
	cmd.Flags().StringSliceVarP(&excludes, "exclude", "e", nil, "category directory to ignore (repeatable)")
	return cmd
}
