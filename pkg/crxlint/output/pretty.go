package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/crxlint/pkg/crxlint/analyzer"
	"github.com/jamesainslie/crxlint/pkg/crxlint/registry"
	"github.com/jamesainslie/crxlint/pkg/crxlint/validator"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
type PrettyFormatter struct{}

// FormatValidation writes a header box, findings by severity and a footer.
func (f *PrettyFormatter) FormatValidation(w *bytes.Buffer, r *validator.Report) error {
	w.WriteString(HeaderBox.Render(LabelStyle.Render("Manifest:") + " " + ValueStyle.Render(r.Path)))
	w.WriteString("\n")

	for _, g := range validator.GroupBySeverity(r.Findings) {
		style := severityStyle(g.Severity)
		w.WriteString(style.Bold(true).Render(fmt.Sprintf("%s (%d)", severityLabel(g.Severity), len(g.Findings))))
		w.WriteString("\n")
		for _, finding := range g.Findings {
			line := "  " + style.Render(severityIcon(g.Severity)) + " " + finding.Message
			if finding.Field != "" {
				line += " " + FieldStyle.Render("["+finding.Field+"]")
			}
			w.WriteString(line + "\n")
		}
		w.WriteString("\n")
	}

	w.WriteString(f.validationFooter(r))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) validationFooter(r *validator.Report) string {
	s := r.Summary()
	parts := []string{
		ErrorStyle.Render(fmt.Sprintf("%d errors", s.Errors)),
		WarningStyle.Render(fmt.Sprintf("%d warnings", s.Warnings)),
		InfoStyle.Render(fmt.Sprintf("%d info", s.Infos)),
	}

	status := SuccessStyle.Render(verdict(r))
	if r.HasErrors() {
		status = ErrorStyle.Bold(true).Render(verdict(r))
	}
	return FooterBox.Render(status + "  " + strings.Join(parts, MutedStyle.Render(" · ")))
}

// FormatAnalysis writes the analysis sections with styled headings.
func (f *PrettyFormatter) FormatAnalysis(w *bytes.Buffer, r *analyzer.Result) error {
	w.WriteString(HeaderBox.Render(LabelStyle.Render("Project:") + " " + ValueStyle.Render(r.Root)))
	w.WriteString("\n")

	f.list(w, TitleStyle, "Declared permissions", r.DeclaredPermissions, "(none)")
	f.list(w, TitleStyle, "Host permissions", r.DeclaredHostPermissions, "(none)")

	w.WriteString(SuccessStyle.Bold(true).Render("Used permissions") + "\n")
	if len(r.Usages) == 0 {
		w.WriteString("  " + MutedStyle.Render("(none detected)") + "\n")
	}
	for _, u := range r.Usages {
		fmt.Fprintf(w, "  %s %s\n", ValueStyle.Render(u.Permission), MutedStyle.Render(u.Capability))
		fmt.Fprintf(w, "    %s %s\n", LabelStyle.Render("Files:"), fileList(u.Files))
	}
	w.WriteString("\n")

	if len(r.Unused) > 0 {
		f.list(w, WarningStyle.Bold(true), "Unused permissions", r.Unused, "")
	}
	if len(r.Missing) > 0 {
		f.list(w, ErrorStyle.Bold(true), "Missing permissions", r.Missing, "")
	}
	if len(r.Suggestions) > 0 {
		f.list(w, TitleStyle, "Suggestions", r.Suggestions, "")
	}

	footer := fmt.Sprintf("%s %s  %s %s",
		LabelStyle.Render("Files:"), ValueStyle.Render(humanize.Comma(int64(r.FilesScanned))),
		LabelStyle.Render("Read:"), ValueStyle.Render(humanize.IBytes(uint64(r.BytesScanned))))
	w.WriteString(FooterBox.Render(footer))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) list(w *bytes.Buffer, title lipgloss.Style, heading string, items []string, empty string) {
	w.WriteString(title.Render(heading) + "\n")
	if len(items) == 0 && empty != "" {
		w.WriteString("  " + MutedStyle.Render(empty) + "\n")
	}
	for _, item := range items {
		w.WriteString("  • " + item + "\n")
	}
	w.WriteString("\n")
}

// FormatSync writes one styled line per category and a summary footer.
func (f *PrettyFormatter) FormatSync(w *bytes.Buffer, r *registry.Result) error {
	for _, c := range r.Categories {
		name := TitleStyle.Render(c.Category)
		switch c.Status {
		case registry.StatusSkipped:
			fmt.Fprintf(w, "%s %s\n", name, MutedStyle.Render("skipped (no .claude-plugin/plugin.json)"))
		case registry.StatusUnchanged:
			fmt.Fprintf(w, "%s %s\n", name, SuccessStyle.Render(fmt.Sprintf("no changes (%d skills)", len(c.New))))
		default:
			fmt.Fprintf(w, "%s %s\n", name, WarningStyle.Render(fmt.Sprintf("%s: %d → %d skills", c.Status, len(c.Old), len(c.New))))
			for _, a := range c.Added {
				w.WriteString("  " + SuccessStyle.Render("+ "+a) + "\n")
			}
			for _, rm := range c.Removed {
				w.WriteString("  " + ErrorStyle.Render("- "+rm) + "\n")
			}
		}
		for _, p := range c.MissingSkills {
			w.WriteString("  " + MutedStyle.Render("! "+p+": SKILL.md not found") + "\n")
		}
	}

	w.WriteString(FooterBox.Render(syncSummary(r)))
	w.WriteString("\n")
	return nil
}

func severityIcon(s validator.Severity) string {
	switch s {
	case validator.SeverityError:
		return "✗"
	case validator.SeverityWarning:
		return "!"
	default:
		return "i"
	}
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
