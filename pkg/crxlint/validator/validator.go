// Package validator checks a manifest against a fixed, ordered rule set
// and classifies the outcome as error, warning or info findings.
//
// Each rule is an independent pure function; the engine concatenates their
// findings in declaration order so that identical input always yields an
// identical Finding sequence.
package validator

import (
	"path/filepath"

	"github.com/jamesainslie/crxlint/pkg/crxlint/logging"
	"github.com/jamesainslie/crxlint/pkg/crxlint/manifest"
	"github.com/jamesainslie/crxlint/pkg/crxlint/probe"
	"github.com/spf13/afero"
)

var logger = logging.Get("validator")

// Engine runs the rule set.
type Engine struct {
	fs afero.Fs
}

// Option configures an Engine.
type Option func(*Engine)

// WithFs makes the engine load manifests and probe files on fsys.
func WithFs(fsys afero.Fs) Option {
	return func(e *Engine) {
		e.fs = fsys
	}
}

// New creates an Engine that uses the host filesystem unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate runs every check against doc, resolving referenced files relative
// to baseDir.
func (e *Engine) Validate(doc *manifest.Document, baseDir string) []Finding {
	return e.ValidateWith(doc, probe.New(e.fs, baseDir))
}

// ValidateWith runs every check against doc using p for file existence.
func (e *Engine) ValidateWith(doc *manifest.Document, p probe.Prober) []Finding {
	var findings []Finding
	for _, check := range Checks() {
		log := logger.With("check", check)
		out := check.Run(doc, p)
		log.Debug("check complete", "findings", len(out))
		findings = append(findings, out...)
	}
	return findings
}

// Report is the result of validating one manifest file.
type Report struct {
	Path     string    `json:"path" yaml:"path"`
	Findings []Finding `json:"findings" yaml:"findings"`
}

// HasErrors reports whether the report contains an error finding.
func (r *Report) HasErrors() bool {
	return HasErrors(r.Findings)
}

// Summary counts the report's findings per severity.
func (r *Report) Summary() Summary {
	return Summarize(r.Findings)
}

// ValidateFile loads the manifest at path and validates it against the
// manifest's own directory. A load failure is returned as an error wrapping
// manifest.ErrLoad and no findings are produced.
func (e *Engine) ValidateFile(path string) (*Report, error) {
	doc, err := manifest.Load(e.fs, path)
	if err != nil {
		return nil, err
	}

	findings := e.Validate(doc, filepath.Dir(path))
	logger.Debug("validated manifest", "path", path, "findings", len(findings))

	return &Report{Path: path, Findings: findings}, nil
}
