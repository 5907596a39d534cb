// Package analyzer cross-references the capabilities a project's sources use
// with the permissions its manifest declares.
package analyzer

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jamesainslie/crxlint/pkg/crxlint/capability"
	"github.com/jamesainslie/crxlint/pkg/crxlint/logging"
	"github.com/jamesainslie/crxlint/pkg/crxlint/manifest"
	"github.com/jamesainslie/crxlint/pkg/crxlint/scanner"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

var logger = logging.Get("analyzer")

// OptionalCandidates are permissions rarely needed at install time.
var OptionalCandidates = []string{"tabs", "bookmarks", "history"}

// Usage records where a mapped capability is referenced.
type Usage struct {
	Capability string   `json:"capability" yaml:"capability"`
	Permission string   `json:"permission" yaml:"permission"`
	Files      []string `json:"files" yaml:"files"`
}

// Result is the outcome of one analysis run.
type Result struct {
	Root                    string   `json:"root" yaml:"root"`
	DeclaredPermissions     []string `json:"declared_permissions" yaml:"declared_permissions"`
	DeclaredHostPermissions []string `json:"declared_host_permissions" yaml:"declared_host_permissions"`
	Usages                  []Usage  `json:"usages" yaml:"usages"`
	Unused                  []string `json:"unused" yaml:"unused"`
	Missing                 []string `json:"missing" yaml:"missing"`
	Suggestions             []string `json:"suggestions" yaml:"suggestions"`
	FilesScanned            int      `json:"files_scanned" yaml:"files_scanned"`
	BytesScanned            int64    `json:"bytes_scanned" yaml:"bytes_scanned"`
}

// Required returns the permissions the detected usages require, sorted.
func (r *Result) Required() []string {
	perms := lo.Uniq(lo.Map(r.Usages, func(u Usage, _ int) string { return u.Permission }))
	slices.Sort(perms)
	return perms
}

// Analyzer scans project sources for capability usage.
type Analyzer struct {
	fs       afero.Fs
	scanOpts scanner.Options
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithFs makes the analyzer read manifests and sources from fsys.
func WithFs(fsys afero.Fs) Option {
	return func(a *Analyzer) {
		a.fs = fsys
	}
}

// WithScanOptions overrides the scanner filters. The root is always the
// directory passed to Analyze.
func WithScanOptions(opts scanner.Options) Option {
	return func(a *Analyzer) {
		a.scanOpts = opts
	}
}

// New creates an Analyzer over the host filesystem with default filters.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		fs:       afero.NewOsFs(),
		scanOpts: scanner.DefaultOptions(""),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze loads root/manifest.json and analyzes the sources under root.
func (a *Analyzer) Analyze(root string) (*Result, error) {
	doc, err := manifest.Load(a.fs, filepath.Join(root, manifest.FileName))
	if err != nil {
		return nil, err
	}
	return a.AnalyzeDocument(doc, root)
}

// AnalyzeDocument analyzes the sources under root against an already
// loaded manifest.
func (a *Analyzer) AnalyzeDocument(doc *manifest.Document, root string) (*Result, error) {
	opts := a.scanOpts
	opts.Root = root

	s, err := scanner.New(a.fs, opts)
	if err != nil {
		return nil, err
	}

	for _, key := range doc.InvalidFields() {
		logger.Debug("ignoring wrongly typed manifest field", "field", key)
	}

	res := &Result{
		Root:                    s.Root(),
		DeclaredPermissions:     nonNil(doc.Permissions),
		DeclaredHostPermissions: nonNil(doc.HostPermissions),
		Usages:                  []Usage{},
	}

	// capability id -> set of relative files
	used := make(map[string]map[string]struct{})
	for path, err := range s.Files() {
		if err != nil {
			return nil, err
		}

		data, err := afero.ReadFile(a.fs, path)
		if err != nil {
			return nil, fmt.Errorf("reading source file: %w", err)
		}
		res.FilesScanned++
		res.BytesScanned += int64(len(data))

		rel := s.Rel(path)
		for _, id := range capability.DetectBytes(data) {
			if used[id] == nil {
				used[id] = make(map[string]struct{})
			}
			used[id][rel] = struct{}{}
		}
	}
	logger.Debug("scan complete", "root", res.Root, "files", res.FilesScanned, "capabilities", len(used))

	ids := lo.Keys(used)
	slices.Sort(ids)
	for _, id := range ids {
		perm, ok := capability.Permission(id)
		if !ok {
			logger.Debug("unmapped capability", "capability", id)
			continue
		}
		files := lo.Keys(used[id])
		slices.Sort(files)
		res.Usages = append(res.Usages, Usage{Capability: id, Permission: perm, Files: files})
	}

	required := res.Required()
	res.Unused = lo.Uniq(lo.Filter(res.DeclaredPermissions, func(p string, _ int) bool {
		return !slices.Contains(required, p)
	}))
	res.Missing = lo.Filter(required, func(p string, _ int) bool {
		return !slices.Contains(res.DeclaredPermissions, p)
	})
	res.Suggestions = nonNil(suggest(res))

	return res, nil
}

func suggest(r *Result) []string {
	var out []string

	if len(r.Unused) > 0 {
		out = append(out, "Remove unused permissions: "+strings.Join(r.Unused, ", "))
	}
	if len(r.Missing) > 0 {
		out = append(out, "Add missing permissions: "+strings.Join(r.Missing, ", "))
	}
	for _, host := range r.DeclaredHostPermissions {
		if manifest.IsBroadHostPattern(host) {
			out = append(out, fmt.Sprintf("Consider narrowing host permission: %q → specific domains", host))
		}
	}

	optional := lo.Uniq(lo.Filter(r.DeclaredPermissions, func(p string, _ int) bool {
		return slices.Contains(OptionalCandidates, p)
	}))
	if len(optional) > 0 {
		out = append(out, "Consider making these permissions optional: "+strings.Join(optional, ", "))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
