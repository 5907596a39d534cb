// Package scanner discovers source files of an extension project. It walks
// a directory tree depth-first in lexical order and yields matching files
// lazily, skipping dependency, build-output and VCS directories.
package scanner

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExtensions are the source file extensions scanned by default.
var DefaultExtensions = []string{".ts", ".js", ".tsx", ".jsx"}

// DefaultExcludeDirs are directory names never descended into.
var DefaultExcludeDirs = []string{"node_modules", "dist", ".git"}

// Options configures the scanner behavior.
type Options struct {
	// Root is the directory to scan.
	Root string

	// Extensions lists recognized file extensions, including the dot.
	Extensions []string

	// ExcludeDirs lists directory base names that are skipped entirely.
	ExcludeDirs []string

	// ExcludeGlobs are doublestar patterns matched against root-relative,
	// slash-separated paths of both files and directories.
	ExcludeGlobs []string
}

// DefaultOptions returns options for scanning root with the default filters.
func DefaultOptions(root string) Options {
	return Options{
		Root:        root,
		Extensions:  append([]string(nil), DefaultExtensions...),
		ExcludeDirs: append([]string(nil), DefaultExcludeDirs...),
	}
}

// Validate fills defaults for empty fields, normalizes extensions and
// rejects malformed glob patterns.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = "."
	}
	if len(o.Extensions) == 0 {
		o.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if o.ExcludeDirs == nil {
		o.ExcludeDirs = append([]string(nil), DefaultExcludeDirs...)
	}

	exts := make([]string, 0, len(o.Extensions))
	for _, ext := range o.Extensions {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	o.Extensions = exts

	for _, pattern := range o.ExcludeGlobs {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
	}
	return nil
}
