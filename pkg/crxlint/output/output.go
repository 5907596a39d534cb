// Package output renders validation reports, analysis results and registry
// sync results in several formats (pretty, plain, json, yaml).
//
// Formatters are registered by name and selected at runtime:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.FormatValidation(&buf, report); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jamesainslie/crxlint/pkg/crxlint/analyzer"
	"github.com/jamesainslie/crxlint/pkg/crxlint/registry"
	"github.com/jamesainslie/crxlint/pkg/crxlint/validator"
)

// MaxListedFiles is how many files are shown per capability before the
// list is truncated with "...".
const MaxListedFiles = 3

// Formatter renders each kind of result.
type Formatter interface {
	FormatValidation(w *bytes.Buffer, r *validator.Report) error
	FormatAnalysis(w *bytes.Buffer, r *analyzer.Result) error
	FormatSync(w *bytes.Buffer, r *registry.Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory, replacing any with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// fileList joins up to MaxListedFiles files, appending "..." when truncated.
func fileList(files []string) string {
	if len(files) <= MaxListedFiles {
		return joinList(files)
	}
	return joinList(files[:MaxListedFiles]) + "..."
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}

func severityLabel(s validator.Severity) string {
	switch s {
	case validator.SeverityError:
		return "ERRORS"
	case validator.SeverityWarning:
		return "WARNINGS"
	default:
		return "INFOS"
	}
}

// verdict is the closing line of a validation report.
func verdict(r *validator.Report) string {
	switch {
	case len(r.Findings) == 0:
		return "Manifest is valid!"
	case r.HasErrors():
		return "Validation failed"
	default:
		return "Validation completed with warnings"
	}
}

// syncSummary is the closing line of a registry sync.
func syncSummary(r *registry.Result) string {
	changed := r.Changed()
	switch {
	case changed == 0:
		return "All plugin.json files are up to date!"
	case r.DryRun:
		return fmt.Sprintf("Dry-run mode: %d file(s) would be updated", changed)
	default:
		return fmt.Sprintf("Successfully updated %d file(s)", changed)
	}
}
