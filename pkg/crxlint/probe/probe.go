// Package probe resolves paths declared in a manifest against the
// manifest's directory and reports whether they exist.
package probe

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// Prober reports whether a manifest-relative path exists.
type Prober interface {
	Exists(rel string) bool
}

// FileProbe resolves relative paths against a base directory on an afero.Fs.
type FileProbe struct {
	fs   afero.Fs
	base string
}

// New returns a FileProbe rooted at baseDir on fsys.
func New(fsys afero.Fs, baseDir string) *FileProbe {
	return &FileProbe{fs: fsys, base: baseDir}
}

// Resolve joins rel onto the base directory. Leading slashes in rel do not
// escape the base; "/icon.png" resolves to "<base>/icon.png".
func (p *FileProbe) Resolve(rel string) string {
	return filepath.Join(p.base, filepath.FromSlash(rel))
}

// Exists reports whether rel resolves to an existing file or directory.
// Stat errors other than not-exist are reported as missing.
func (p *FileProbe) Exists(rel string) bool {
	ok, err := afero.Exists(p.fs, p.Resolve(rel))
	return err == nil && ok
}

var _ Prober = (*FileProbe)(nil)
