package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/spf13/afero"
)

// ErrLoad is matched by every error returned from Load and Parse.
var ErrLoad = errors.New("failed to load manifest.json")

// LoadError reports a manifest that could not be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", ErrLoad, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrLoad, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLoad) true for any LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// Load reads and decodes the manifest at path from fsys.
func Load(fsys afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	doc, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Parse decodes manifest bytes. The top-level value must be a JSON object.
func Parse(data []byte) (*Document, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, &LoadError{Err: errors.New("manifest is null")}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Err: err}
	}
	return &doc, nil
}

var hostPattern = regexp.MustCompile(`^(\*|https?|ftp)://`)

// IsHostPattern reports whether p has the shape of a URL match pattern
// rather than a named permission.
func IsHostPattern(p string) bool {
	return hostPattern.MatchString(p)
}

// Maximally broad host patterns.
const (
	AllURLs      = "<all_urls>"
	AnyURLScheme = "*://*/*"
)

// IsBroadHostPattern reports whether p grants access to every host.
func IsBroadHostPattern(p string) bool {
	return p == AnyURLScheme || p == AllURLs
}
