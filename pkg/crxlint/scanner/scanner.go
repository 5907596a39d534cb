package scanner

import (
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jamesainslie/crxlint/pkg/crxlint/logging"
	"github.com/spf13/afero"
)

var logger = logging.Get("scanner")

var (
	// ErrNotDirectory is returned when the scan root is not a directory.
	ErrNotDirectory = errors.New("scan root is not a directory")

	// ErrInvalidPattern is returned for malformed exclude globs.
	ErrInvalidPattern = errors.New("invalid exclude pattern")
)

// Scanner yields source files under a root directory.
type Scanner struct {
	fs   afero.Fs
	opts Options
	root string
}

// New validates opts and resolves the root to an absolute directory on fsys.
func New(fsys afero.Fs, opts Options) (*Scanner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving scan root: %w", err)
	}

	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	return &Scanner{fs: fsys, opts: opts, root: root}, nil
}

// Root returns the absolute scan root.
func (s *Scanner) Root() string {
	return s.root
}

// Rel returns path relative to the root, slash-separated.
func (s *Scanner) Rel(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Files returns a lazy, depth-first sequence of absolute paths of matching
// files. Entries within a directory are visited in lexical order.
//
// A directory that cannot be read ends the sequence with a non-nil error;
// no partial-tree recovery is attempted. Symbolic links are neither followed
// nor yielded.
func (s *Scanner) Files() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s.walk(s.root, yield)
	}
}

// Collect drains Files into a slice.
func (s *Scanner) Collect() ([]string, error) {
	var files []string
	for path, err := range s.Files() {
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

// walk returns false when the consumer stopped or an error was yielded.
func (s *Scanner) walk(dir string, yield func(string, error) bool) bool {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		yield("", fmt.Errorf("reading directory %s: %w", dir, err))
		return false
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if s.skipDir(path, entry.Name()) {
				logger.Debug("skipping directory", "path", path)
				continue
			}
			if !s.walk(path, yield) {
				return false
			}
			continue
		}

		if !entry.Mode().IsRegular() || !s.matches(path) {
			continue
		}
		if !yield(path, nil) {
			return false
		}
	}
	return true
}

func (s *Scanner) skipDir(path, name string) bool {
	return slices.Contains(s.opts.ExcludeDirs, name) || s.globExcluded(path)
}

func (s *Scanner) matches(path string) bool {
	return slices.Contains(s.opts.Extensions, filepath.Ext(path)) && !s.globExcluded(path)
}

func (s *Scanner) globExcluded(path string) bool {
	if len(s.opts.ExcludeGlobs) == 0 {
		return false
	}
	rel := s.Rel(path)
	for _, pattern := range s.opts.ExcludeGlobs {
		// Patterns were validated in New, so Match cannot fail here.
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
