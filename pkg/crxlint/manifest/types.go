// Package manifest provides the typed, read-only representation of a
// browser extension's manifest.json.
//
// Optional fields use pointers, nil maps and nil slices so that an absent
// key can be told apart from a key that is present but empty.
package manifest

import (
	"bytes"
	"encoding/json"
	"slices"
)

// SupportedVersion is the only manifest_version accepted by the validator.
const SupportedVersion = 3

// FileName is the conventional manifest file name at a project root.
const FileName = "manifest.json"

// RunAt is the injection timing of a content script.
type RunAt string

// Injection timings.
const (
	RunAtDocumentStart RunAt = "document_start"
	RunAtDocumentEnd   RunAt = "document_end"
	RunAtDocumentIdle  RunAt = "document_idle"
)

// Valid reports whether r is one of the known injection timings.
// The zero value (key absent) is considered valid.
func (r RunAt) Valid() bool {
	switch r {
	case "", RunAtDocumentStart, RunAtDocumentEnd, RunAtDocumentIdle:
		return true
	default:
		return false
	}
}

// Document is a loaded manifest. It is never mutated after Load.
//
// A top-level key whose value has the wrong JSON type leaves its field at the
// zero value and is reported by Invalid, so the checks can describe the
// mistake instead of failing the load.
type Document struct {
	ManifestVersion        *int
	Name                   string
	Version                string
	Description            *string
	Icons                  map[string]string
	Action                 *Action
	Background             *Background
	ContentScripts         []ContentScript
	Permissions            []string
	HostPermissions        []string
	OptionalPermissions    []string
	WebAccessibleResources []WebAccessibleResource
	ContentSecurityPolicy  *ContentSecurityPolicy

	raw     map[string]json.RawMessage
	invalid []string
}

// Raw returns the compacted JSON value of a top-level key as written in the
// file. It reports false for absent keys and for documents not built by Parse.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	raw, ok := d.raw[key]
	if !ok {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw, true
	}
	return buf.Bytes(), true
}

// Invalid reports whether key was present with a value of the wrong type.
func (d *Document) Invalid(key string) bool {
	return slices.Contains(d.invalid, key)
}

// InvalidFields returns the wrongly typed top-level keys, sorted.
func (d *Document) InvalidFields() []string {
	return slices.Sorted(slices.Values(d.invalid))
}

// UnmarshalJSON decodes each known key on its own. Only a value that is not
// an object fails.
func (d *Document) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	*d = Document{raw: obj}
	decodeField(obj, "manifest_version", &d.ManifestVersion, &d.invalid)
	decodeField(obj, "name", &d.Name, &d.invalid)
	decodeField(obj, "version", &d.Version, &d.invalid)
	decodeField(obj, "description", &d.Description, &d.invalid)
	decodeField(obj, "icons", &d.Icons, &d.invalid)
	decodeField(obj, "action", &d.Action, &d.invalid)
	decodeField(obj, "background", &d.Background, &d.invalid)
	decodeField(obj, "content_scripts", &d.ContentScripts, &d.invalid)
	decodeField(obj, "permissions", &d.Permissions, &d.invalid)
	decodeField(obj, "host_permissions", &d.HostPermissions, &d.invalid)
	decodeField(obj, "optional_permissions", &d.OptionalPermissions, &d.invalid)
	decodeField(obj, "web_accessible_resources", &d.WebAccessibleResources, &d.invalid)
	decodeField(obj, "content_security_policy", &d.ContentSecurityPolicy, &d.invalid)
	return nil
}

// Action describes the toolbar action. It is parsed but not validated.
type Action struct {
	DefaultPopup *string `json:"default_popup,omitempty"`
	DefaultTitle *string `json:"default_title,omitempty"`
}

// Background describes the background service worker.
// A nil ServiceWorker with HasServiceWorker false means the key was not
// present at all.
type Background struct {
	ServiceWorker *string
	Type          *string

	serviceWorkerKey bool
	invalid          []string
}

// HasServiceWorker reports whether the service_worker key is present, even
// when its value is null or of the wrong type.
func (b *Background) HasServiceWorker() bool {
	return b.ServiceWorker != nil || b.serviceWorkerKey
}

// Invalid reports whether key was present with a value of the wrong type.
func (b *Background) Invalid(key string) bool {
	return slices.Contains(b.invalid, key)
}

// IsModule reports whether the worker is declared as an ES module.
func (b *Background) IsModule() bool {
	return b != nil && b.Type != nil && *b.Type == "module"
}

func (b *Background) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}

	*b = Background{}
	b.serviceWorkerKey = decodeField(obj, "service_worker", &b.ServiceWorker, &b.invalid)
	decodeField(obj, "type", &b.Type, &b.invalid)
	return nil
}

// ContentScript describes one entry of content_scripts.
type ContentScript struct {
	Matches []string `json:"matches,omitempty"`
	JS      []string `json:"js,omitempty"`
	CSS     []string `json:"css,omitempty"`
	RunAt   RunAt    `json:"run_at,omitempty"`
}

// WebAccessibleResource describes one entry of web_accessible_resources.
type WebAccessibleResource struct {
	Resources []string `json:"resources,omitempty"`
	Matches   []string `json:"matches,omitempty"`
}

// ContentSecurityPolicy holds the page and sandbox policy strings.
type ContentSecurityPolicy struct {
	ExtensionPages *string `json:"extension_pages,omitempty"`
	Sandbox        *string `json:"sandbox,omitempty"`
}
