package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/crxlint/pkg/crxlint/validator"
)

// ANSI 256-color palette shared by the pretty formatter.
const (
	ColorPrimary = lipgloss.Color("39")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorDanger  = lipgloss.Color("196")
	ColorInfo    = lipgloss.Color("75")
	ColorMuted   = lipgloss.Color("245")
)

var (
	// HeaderBox frames the report header.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	// FooterBox frames the summary line.
	FooterBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1)
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	LabelStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorDanger)
	InfoStyle    = lipgloss.NewStyle().Foreground(ColorInfo)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	FieldStyle   = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
)

// severityStyle returns the text style for a severity.
func severityStyle(s validator.Severity) lipgloss.Style {
	switch s {
	case validator.SeverityError:
		return ErrorStyle
	case validator.SeverityWarning:
		return WarningStyle
	default:
		return InfoStyle
	}
}
