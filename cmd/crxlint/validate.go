package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jamesainslie/crxlint/pkg/crxlint/manifest"
	"github.com/jamesainslie/crxlint/pkg/crxlint/output"
	"github.com/jamesainslie/crxlint/pkg/crxlint/validator"
	"github.com/jamesainslie/crxlint/pkg/crxlint/watcher"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate <manifest.json|extension-dir>",
		Short: "Validate a Manifest V3 manifest.json",
		Long: `Validate runs every manifest check and prints findings grouped by
severity. Referenced files (icons, service worker, content scripts) are
resolved relative to the manifest's directory.

Exit status is 1 when any error is reported or the manifest cannot be
loaded; warnings and info findings alone exit 0.`,
		Args: existingPathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifestPath(args[0])
			if watch {
				return a.watchValidate(cmd.Context(), cmd.OutOrStdout(), path)
			}
			return a.runValidate(cmd.OutOrStdout(), path)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-validate whenever the extension directory changes")
	return cmd
}

// manifestPath accepts either a manifest file or its extension directory.
func manifestPath(arg string) string {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return filepath.Join(arg, manifest.FileName)
	}
	return arg
}

func (a *app) runValidate(w io.Writer, path string) error {
	f, err := a.formatter()
	if err != nil {
		return err
	}

	report, err := validator.New().ValidateFile(path)
	if err != nil {
		return err
	}
	if err := writeValidation(w, f, report); err != nil {
		return err
	}

	if report.HasErrors() {
		return errValidationFailed
	}
	return nil
}

func writeValidation(w io.Writer, f output.Formatter, report *validator.Report) error {
	var buf bytes.Buffer
	if err := f.FormatValidation(&buf, report); err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// watchValidate validates once, then again after every change under the
// manifest's directory, until interrupted. Load failures are reported and
// watching continues.
func (a *app) watchValidate(ctx context.Context, w io.Writer, path string) error {
	f, err := a.formatter()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := validator.New()
	validate := func() {
		report, err := engine.ValidateFile(path)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return
		}
		if err := writeValidation(w, f, report); err != nil {
			logger.Error("writing report", "error", err)
		}
	}

	wt, err := watcher.New(watcher.WithExcludeDirs(a.cfg.Scan.ExcludeDirs))
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer wt.Close()

	if err := wt.Watch(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	logger.Debug("watching", "dirs", wt.Watched())

	validate()
	wt.Run(ctx, func(paths []string) {
		logger.Info("change detected", "paths", paths)
		fmt.Fprintln(w)
		validate()
	})
	return nil
}
