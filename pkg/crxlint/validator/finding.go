package validator

import (
	"errors"
	"fmt"
	"strings"
)

// Severity classifies a Finding. Values are ordered so that
// SeverityError > SeverityWarning > SeverityInfo.
type Severity int

// Severities from least to most severe.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Severities lists all severities in reporting order, most severe first.
var Severities = []Severity{SeverityError, SeverityWarning, SeverityInfo}

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrInvalidSeverity is returned by ParseSeverity for unknown names.
var ErrInvalidSeverity = errors.New("invalid severity")

// ParseSeverity parses a severity name (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityInfo, fmt.Errorf("%w: %s", ErrInvalidSeverity, s)
	}
}

// MarshalText encodes the severity by name for JSON and YAML reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Finding is a single validation outcome.
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	// Field locates the finding in the document, e.g. "content_scripts[0].js".
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
}

// String renders the finding as "<message> [<field>]".
func (f Finding) String() string {
	if f.Field == "" {
		return f.Message
	}
	return fmt.Sprintf("%s [%s]", f.Message, f.Field)
}

func newFinding(sev Severity, field, format string, args ...interface{}) Finding {
	return Finding{Severity: sev, Message: fmt.Sprintf(format, args...), Field: field}
}

// Group is the findings of one severity.
type Group struct {
	Severity Severity
	Findings []Finding
}

// GroupBySeverity splits findings into error, warning and info groups,
// in that order, keeping the original order within each group.
// Empty groups are omitted.
func GroupBySeverity(findings []Finding) []Group {
	groups := make([]Group, 0, len(Severities))
	for _, sev := range Severities {
		var items []Finding
		for _, f := range findings {
			if f.Severity == sev {
				items = append(items, f)
			}
		}
		if len(items) > 0 {
			groups = append(groups, Group{Severity: sev, Findings: items})
		}
	}
	return groups
}

// Summary counts findings per severity.
type Summary struct {
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Infos    int `json:"infos" yaml:"infos"`
}

// Summarize counts findings per severity.
func Summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		case SeverityInfo:
			s.Infos++
		}
	}
	return s
}

// Total returns the number of findings counted.
func (s Summary) Total() int {
	return s.Errors + s.Warnings + s.Infos
}

// MaxSeverity returns the highest severity among findings and false when
// there are none.
func MaxSeverity(findings []Finding) (Severity, bool) {
	if len(findings) == 0 {
		return SeverityInfo, false
	}
	highest := SeverityInfo
	for _, f := range findings {
		if f.Severity > highest {
			highest = f.Severity
		}
	}
	return highest, true
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []Finding) bool {
	sev, ok := MaxSeverity(findings)
	return ok && sev == SeverityError
}
