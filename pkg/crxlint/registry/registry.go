// Package registry keeps category bundle plugin.json files in sync with the
// skill directories laid out beneath them.
//
// A plugins directory contains category directories. A category is a bundle
// when it has .claude-plugin/plugin.json; each of its subdirectories is a
// plugin whose skill is found at skills/SKILL.md or SKILL.md.
package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/jamesainslie/crxlint/pkg/crxlint/logging"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

var logger = logging.Get("registry")

const (
	// MetaDir holds a category bundle's metadata.
	MetaDir = ".claude-plugin"

	// PluginFileName is the bundle metadata file inside MetaDir.
	PluginFileName = "plugin.json"

	// SkillFileName marks a directory as a skill.
	SkillFileName = "SKILL.md"
)

// ErrNoPluginsDir is returned when the plugins directory does not exist.
var ErrNoPluginsDir = errors.New("plugins directory not found")

// Status describes what happened to one category.
type Status int

const (
	StatusUnchanged Status = iota
	StatusUpdated
	StatusWouldUpdate
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusUpdated:
		return "updated"
	case StatusWouldUpdate:
		return "would update"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// CategoryResult is the sync outcome for one category directory.
type CategoryResult struct {
	Category string
	Path     string
	Status   Status
	Old      []string
	New      []string
	Added    []string
	Removed  []string

	// MissingSkills lists plugin directories without a SKILL.md.
	MissingSkills []string
}

// Changed reports whether the skills list differs from the file.
func (c CategoryResult) Changed() bool {
	return c.Status == StatusUpdated || c.Status == StatusWouldUpdate
}

// Result aggregates a sync run.
type Result struct {
	DryRun     bool
	Categories []CategoryResult
}

// Changed returns the number of categories whose skills list changed.
func (r *Result) Changed() int {
	return lo.CountBy(r.Categories, func(c CategoryResult) bool { return c.Changed() })
}

// Options configures a Syncer.
type Options struct {
	// Exclude lists category directory names to ignore.
	Exclude []string

	// DryRun computes changes without writing.
	DryRun bool
}

// Syncer regenerates skills arrays. It takes no locks; concurrent runs
// against the same tree are unsupported.
type Syncer struct {
	fs   afero.Fs
	opts Options
}

// New creates a Syncer operating on fsys.
func New(fsys afero.Fs, opts Options) *Syncer {
	return &Syncer{fs: fsys, opts: opts}
}

// Sync processes every category under pluginsDir in lexical order.
func (s *Syncer) Sync(pluginsDir string) (*Result, error) {
	info, err := s.fs.Stat(pluginsDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoPluginsDir, pluginsDir)
	}

	categories, err := s.subdirs(pluginsDir)
	if err != nil {
		return nil, err
	}
	categories = lo.Without(categories, s.opts.Exclude...)

	res := &Result{DryRun: s.opts.DryRun}
	for _, category := range categories {
		cr, err := s.syncCategory(pluginsDir, category)
		if err != nil {
			return res, err
		}
		res.Categories = append(res.Categories, cr)
	}
	return res, nil
}

func (s *Syncer) syncCategory(pluginsDir, category string) (CategoryResult, error) {
	dir := filepath.Join(pluginsDir, category)
	cr := CategoryResult{
		Category: category,
		Path:     filepath.Join(dir, MetaDir, PluginFileName),
	}

	if ok, _ := afero.Exists(s.fs, cr.Path); !ok {
		logger.Warn("not a valid category bundle, skipping", "category", category, "missing", filepath.Join(MetaDir, PluginFileName))
		cr.Status = StatusSkipped
		return cr, nil
	}

	skills, missing, err := s.SkillPaths(dir)
	if err != nil {
		return cr, err
	}
	cr.New = skills
	cr.MissingSkills = missing
	for _, plugin := range missing {
		logger.Warn("SKILL.md not found, skipping", "category", category, "plugin", plugin)
	}

	pf, err := readPluginFile(s.fs, cr.Path)
	if err != nil {
		return cr, err
	}
	if err := pf.checkVersion(); err != nil {
		v, _ := pf.Version()
		logger.Warn("plugin version is not a semantic version", "category", category, "version", v, "error", err)
	}

	cr.Old, err = pf.Skills()
	if err != nil {
		return cr, err
	}

	if slices.Equal(cr.Old, cr.New) {
		cr.Status = StatusUnchanged
		return cr, nil
	}

	cr.Added, cr.Removed = lo.Difference(cr.New, cr.Old)
	if s.opts.DryRun {
		cr.Status = StatusWouldUpdate
		return cr, nil
	}

	if err := pf.SetSkills(cr.New); err != nil {
		return cr, err
	}
	if err := pf.write(s.fs); err != nil {
		return cr, err
	}
	logger.Info("updated plugin.json", "category", category, "skills", len(cr.New))
	cr.Status = StatusUpdated
	return cr, nil
}

// SkillPaths returns the skill path of every plugin directory in
// categoryDir, sorted by plugin name, plus the plugins that have no skill.
func (s *Syncer) SkillPaths(categoryDir string) ([]string, []string, error) {
	plugins, err := s.subdirs(categoryDir)
	if err != nil {
		return nil, nil, err
	}

	skills := []string{}
	var missing []string
	for _, plugin := range plugins {
		if plugin == MetaDir {
			continue
		}
		if path, ok := DetectSkillPath(s.fs, categoryDir, plugin); ok {
			skills = append(skills, path)
		} else {
			missing = append(missing, plugin)
		}
	}
	return skills, missing, nil
}

// DetectSkillPath returns "./<plugin>/skills/" when skills/SKILL.md exists,
// "./<plugin>/" when SKILL.md exists at the plugin root, and false otherwise.
func DetectSkillPath(fsys afero.Fs, categoryDir, plugin string) (string, bool) {
	pluginDir := filepath.Join(categoryDir, plugin)

	if ok, _ := afero.Exists(fsys, filepath.Join(pluginDir, "skills", SkillFileName)); ok {
		return "./" + plugin + "/skills/", true
	}
	if ok, _ := afero.Exists(fsys, filepath.Join(pluginDir, SkillFileName)); ok {
		return "./" + plugin + "/", true
	}
	return "", false
}

// subdirs lists directory names in dir, sorted.
func (s *Syncer) subdirs(dir string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}
