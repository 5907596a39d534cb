package output

import (
	"bytes"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/crxlint/pkg/crxlint/analyzer"
	"github.com/jamesainslie/crxlint/pkg/crxlint/registry"
	"github.com/jamesainslie/crxlint/pkg/crxlint/validator"
)

// PlainFormatter writes unstyled text suitable for logs and piping.
type PlainFormatter struct{}

// FormatValidation writes findings grouped by severity.
func (f *PlainFormatter) FormatValidation(w *bytes.Buffer, r *validator.Report) error {
	fmt.Fprintf(w, "Validating manifest: %s\n", r.Path)

	for _, g := range validator.GroupBySeverity(r.Findings) {
		fmt.Fprintf(w, "\n%s (%d):\n", severityLabel(g.Severity), len(g.Findings))
		for _, finding := range g.Findings {
			fmt.Fprintf(w, "  %s\n", finding)
		}
	}

	fmt.Fprintf(w, "\n%s\n", verdict(r))
	return nil
}

// FormatAnalysis writes the declared, used, unused and missing sections.
func (f *PlainFormatter) FormatAnalysis(w *bytes.Buffer, r *analyzer.Result) error {
	fmt.Fprintf(w, "Analyzing permissions in: %s\n", r.Root)

	writeList(w, "DECLARED PERMISSIONS", r.DeclaredPermissions, "(none)")
	writeList(w, "HOST PERMISSIONS", r.DeclaredHostPermissions, "(none)")

	w.WriteString("\nUSED PERMISSIONS:\n")
	if len(r.Usages) == 0 {
		w.WriteString("  (none detected)\n")
	}
	for _, u := range r.Usages {
		fmt.Fprintf(w, "  - %s\n", u.Permission)
		fmt.Fprintf(w, "    APIs: %s\n", u.Capability)
		fmt.Fprintf(w, "    Files: %s\n", fileList(u.Files))
	}

	if len(r.Unused) > 0 {
		writeList(w, "UNUSED PERMISSIONS", r.Unused, "")
	}
	if len(r.Missing) > 0 {
		writeList(w, "MISSING PERMISSIONS", r.Missing, "")
	}
	if len(r.Suggestions) > 0 {
		writeList(w, "SUGGESTIONS", r.Suggestions, "")
	}

	fmt.Fprintf(w, "\nScanned %s files (%s)\n", humanize.Comma(int64(r.FilesScanned)), humanize.IBytes(uint64(r.BytesScanned)))
	return nil
}

// FormatSync writes one block per category and a closing summary.
func (f *PlainFormatter) FormatSync(w *bytes.Buffer, r *registry.Result) error {
	for _, c := range r.Categories {
		switch c.Status {
		case registry.StatusSkipped:
			fmt.Fprintf(w, "[%s] skipped: not a category bundle\n", c.Category)
		case registry.StatusUnchanged:
			fmt.Fprintf(w, "[%s] no changes (%d skills)\n", c.Category, len(c.New))
		default:
			fmt.Fprintf(w, "[%s] %s: %d -> %d skills\n", c.Category, c.Status, len(c.Old), len(c.New))
			if len(c.Added) > 0 {
				fmt.Fprintf(w, "  + Added: %s\n", joinList(c.Added))
			}
			if len(c.Removed) > 0 {
				fmt.Fprintf(w, "  - Removed: %s\n", joinList(c.Removed))
			}
		}
		for _, p := range c.MissingSkills {
			fmt.Fprintf(w, "  ! %s: SKILL.md not found\n", p)
		}
	}

	fmt.Fprintf(w, "\n%s\n", syncSummary(r))
	return nil
}

func writeList(w *bytes.Buffer, title string, items []string, empty string) {
	fmt.Fprintf(w, "\n%s:\n", title)
	if len(items) == 0 && empty != "" {
		fmt.Fprintf(w, "  %s\n", empty)
	}
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
