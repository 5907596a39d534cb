package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/crxlint/pkg/crxlint/analyzer"
	"github.com/jamesainslie/crxlint/pkg/crxlint/registry"
	"github.com/jamesainslie/crxlint/pkg/crxlint/validator"
)

// validationOutput is the structured form of a validation report.
type validationOutput struct {
	Path     string              `json:"path" yaml:"path"`
	Valid    bool                `json:"valid" yaml:"valid"`
	Summary  validator.Summary   `json:"summary" yaml:"summary"`
	Findings []validator.Finding `json:"findings" yaml:"findings"`
}

func buildValidation(r *validator.Report) validationOutput {
	findings := r.Findings
	if findings == nil {
		findings = []validator.Finding{}
	}
	return validationOutput{
		Path:     r.Path,
		Valid:    !r.HasErrors(),
		Summary:  r.Summary(),
		Findings: findings,
	}
}

// syncCategory is the structured form of one category result.
type syncCategory struct {
	Category      string   `json:"category" yaml:"category"`
	Path          string   `json:"path" yaml:"path"`
	Status        string   `json:"status" yaml:"status"`
	Skills        []string `json:"skills,omitempty" yaml:"skills,omitempty"`
	Added         []string `json:"added,omitempty" yaml:"added,omitempty"`
	Removed       []string `json:"removed,omitempty" yaml:"removed,omitempty"`
	MissingSkills []string `json:"missing_skills,omitempty" yaml:"missing_skills,omitempty"`
}

type syncOutput struct {
	DryRun     bool           `json:"dry_run" yaml:"dry_run"`
	Changed    int            `json:"changed" yaml:"changed"`
	Categories []syncCategory `json:"categories" yaml:"categories"`
}

func buildSync(r *registry.Result) syncOutput {
	cats := make([]syncCategory, len(r.Categories))
	for i, c := range r.Categories {
		cats[i] = syncCategory{
			Category:      c.Category,
			Path:          c.Path,
			Status:        c.Status.String(),
			Skills:        c.New,
			Added:         c.Added,
			Removed:       c.Removed,
			MissingSkills: c.MissingSkills,
		}
	}
	return syncOutput{DryRun: r.DryRun, Changed: r.Changed(), Categories: cats}
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

func (f *JSONFormatter) encode(w *bytes.Buffer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// FormatValidation writes the report as JSON.
func (f *JSONFormatter) FormatValidation(w *bytes.Buffer, r *validator.Report) error {
	return f.encode(w, buildValidation(r))
}

// FormatAnalysis writes the result as JSON.
func (f *JSONFormatter) FormatAnalysis(w *bytes.Buffer, r *analyzer.Result) error {
	return f.encode(w, r)
}

// FormatSync writes the sync result as JSON.
func (f *JSONFormatter) FormatSync(w *bytes.Buffer, r *registry.Result) error {
	return f.encode(w, buildSync(r))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
