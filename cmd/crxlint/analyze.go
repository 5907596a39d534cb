package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jamesainslie/crxlint/pkg/crxlint/analyzer"
	"github.com/jamesainslie/crxlint/pkg/crxlint/capability"
	"github.com/jamesainslie/crxlint/pkg/crxlint/scanner"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		excludes   []string
		extensions []string
	)

	cmd := &cobra.Command{
		Use:   "analyze <project-root>",
		Short: "Compare declared permissions with the APIs the sources use",
		Long: `Analyze loads <project-root>/manifest.json, scans the project's
sources for chrome.* API references and reports declared, used, unused and
missing permissions along with suggestions.

Sources under node_modules, dist and .git are never scanned. Matching is
lexical, so references in comments and strings are counted.

Missing or unused permissions do not change the exit status; only a failure
to load the manifest or read the tree does.

Recognized APIs:
` + recognizedAPIs(),
		Args: existingPathArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := scanner.Options{
				Extensions:   a.cfg.Scan.Extensions,
				ExcludeDirs:  a.cfg.Scan.ExcludeDirs,
				ExcludeGlobs: append(append([]string{}, a.cfg.Scan.Exclude...), excludes...),
			}
			if len(extensions) > 0 {
				opts.Extensions = extensions
			}

			f, err := a.formatter()
			if err != nil {
				return err
			}

			res, err := analyzer.New(analyzer.WithScanOptions(opts)).Analyze(args[0])
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := f.FormatAnalysis(&buf, res); err != nil {
				return fmt.Errorf("formatting analysis: %w", err)
			}
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&excludes, "exclude", "e", nil, "exclude glob relative to the root (repeatable)")
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "source extensions to scan (default .ts,.js,.tsx,.jsx)")
	return cmd
}

// recognizedAPIs lists the mapped capabilities, three per line.
func recognizedAPIs() string {
	lines := lo.Map(lo.Chunk(capability.Capabilities(), 3), func(ids []string, _ int) string {
		return "  " + strings.Join(ids, ", ")
	})
	return strings.Join(lines, "\n")
}
