package output

import (
	"bytes"

	"github.com/jamesainslie/crxlint/pkg/crxlint/analyzer"
	"github.com/jamesainslie/crxlint/pkg/crxlint/registry"
	"github.com/jamesainslie/crxlint/pkg/crxlint/validator"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML, with the same structure as
// JSONFormatter.
type YAMLFormatter struct{}

func (f *YAMLFormatter) encode(w *bytes.Buffer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

// FormatValidation writes the report as YAML.
func (f *YAMLFormatter) FormatValidation(w *bytes.Buffer, r *validator.Report) error {
	return f.encode(w, buildValidation(r))
}

// FormatAnalysis writes the result as YAML.
func (f *YAMLFormatter) FormatAnalysis(w *bytes.Buffer, r *analyzer.Result) error {
	return f.encode(w, r)
}

// FormatSync writes the sync result as YAML.
func (f *YAMLFormatter) FormatSync(w *bytes.Buffer, r *registry.Result) error {
	return f.encode(w, buildSync(r))
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
