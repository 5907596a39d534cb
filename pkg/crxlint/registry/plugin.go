package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// pluginFile is a decoded plugin.json. Top-level and nested key order is
// preserved across a read/write cycle; only the skills value is replaced.
type pluginFile struct {
	path   string
	fields *orderedmap.OrderedMap[string, json.RawMessage]
}

func readPluginFile(fsys afero.Fs, path string) (*pluginFile, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	fields := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, fields); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &pluginFile{path: path, fields: fields}, nil
}

// Skills returns the current skills array. A missing key is an empty list.
func (p *pluginFile) Skills() ([]string, error) {
	raw, ok := p.fields.Get("skills")
	if !ok {
		return []string{}, nil
	}
	var skills []string
	if err := json.Unmarshal(raw, &skills); err != nil {
		return nil, fmt.Errorf("%s: skills must be an array of strings: %w", p.path, err)
	}
	if skills == nil {
		skills = []string{}
	}
	return skills, nil
}

// SetSkills replaces the skills value, appending the key if absent.
func (p *pluginFile) SetSkills(skills []string) error {
	raw, err := json.Marshal(skills)
	if err != nil {
		return err
	}
	p.fields.Set("skills", raw)
	return nil
}

// Version returns the plugin version string, if any.
func (p *pluginFile) Version() (string, bool) {
	raw, ok := p.fields.Get("version")
	if !ok {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return v, true
}

// checkVersion reports whether the version field is a valid semantic version.
func (p *pluginFile) checkVersion() error {
	v, ok := p.Version()
	if !ok {
		return nil
	}
	_, err := semver.StrictNewVersion(v)
	return err
}

// encode renders the file with 2-space indentation and a trailing newline.
// Values are emitted as read, so no HTML escaping is introduced.
func (p *pluginFile) encode() ([]byte, error) {
	var obj bytes.Buffer
	keyEnc := json.NewEncoder(&obj)
	keyEnc.SetEscapeHTML(false)

	obj.WriteByte('{')
	for pair := p.fields.Oldest(); pair != nil; pair = pair.Next() {
		if pair != p.fields.Oldest() {
			obj.WriteByte(',')
		}
		if err := keyEnc.Encode(pair.Key); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", p.path, err)
		}
		obj.WriteByte(':')
		obj.Write(pair.Value)
	}
	obj.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, obj.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", p.path, err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// write replaces the file atomically using a temp file and rename.
func (p *pluginFile) write(fsys afero.Fs) error {
	data, err := p.encode()
	if err != nil {
		return err
	}

	tmpPath := filepath.Join(filepath.Dir(p.path), "."+filepath.Base(p.path)+"."+uuid.NewString()+".tmp")
	if err := afero.WriteFile(fsys, tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := fsys.Rename(tmpPath, p.path); err != nil {
		_ = fsys.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
