package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jamesainslie/crxlint/pkg/crxlint/analyzer"
	"github.com/jamesainslie/crxlint/pkg/crxlint/registry"
	"github.com/jamesainslie/crxlint/pkg/crxlint/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testReport() *validator.Report {
	return &validator.Report{
		Path: "/ext/manifest.json",
		Findings: []validator.Finding{
			{Severity: validator.SeverityInfo, Message: "No background service worker defined", Field: "background"},
			{Severity: validator.SeverityError, Message: "Missing required field: name", Field: "name"},
			{Severity: validator.SeverityWarning, Message: "Missing icons field"},
		},
	}
}

func testAnalysis() *analyzer.Result {
	return &analyzer.Result{
		Root:                    "/ext",
		DeclaredPermissions:     []string{"tabs"},
		DeclaredHostPermissions: []string{},
		Usages: []analyzer.Usage{
			{Capability: "chrome.storage", Permission: "storage", Files: []string{"a.js", "b.js", "c.js", "d.js"}},
		},
		Unused:       []string{"tabs"},
		Missing:      []string{"storage"},
		Suggestions:  []string{"Remove unused permissions: tabs"},
		FilesScanned: 4,
		BytesScanned: 2048,
	}
}

func testSync() *registry.Result {
	return &registry.Result{
		DryRun: true,
		Categories: []registry.CategoryResult{
			{Category: "dev-tools", Status: registry.StatusWouldUpdate, Old: []string{"./a/"}, New: []string{"./b/"}, Added: []string{"./b/"}, Removed: []string{"./a/"}},
			{Category: "docs", Status: registry.StatusSkipped},
			{Category: "web", Status: registry.StatusUnchanged, New: []string{"./x/"}, MissingSkills: []string{"draft"}},
		},
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"json", "plain", "pretty", "yaml"}, Available())

	for _, name := range Available() {
		f, err := Get(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f)
	}

	_, err := Get("xml")
	assert.ErrorContains(t, err, "unknown formatter: xml")

	r := NewRegistry()
	r.Register("plain", func() Formatter { return &PlainFormatter{} })
	assert.Equal(t, []string{"plain"}, r.Available())
}

func TestFileList(t *testing.T) {
	assert.Equal(t, "", fileList(nil))
	assert.Equal(t, "a, b, c", fileList([]string{"a", "b", "c"}))
	assert.Equal(t, "a, b, c...", fileList([]string{"a", "b", "c", "d"}))
}

func TestPlainFormatter_Validation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).FormatValidation(&buf, testReport()))

	assert.Equal(t, `Validating manifest: /ext/manifest.json

ERRORS (1):
  Missing required field: name [name]

WARNINGS (1):
  Missing icons field

INFOS (1):
  No background service worker defined [background]

Validation failed
`, buf.String())
}

func TestPlainFormatter_ValidationClean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).FormatValidation(&buf, &validator.Report{Path: "m.json"}))
	assert.Equal(t, "Validating manifest: m.json\n\nManifest is valid!\n", buf.String())

	buf.Reset()
	warnOnly := &validator.Report{Path: "m.json", Findings: []validator.Finding{{Severity: validator.SeverityWarning, Message: "w"}}}
	require.NoError(t, (&PlainFormatter{}).FormatValidation(&buf, warnOnly))
	assert.Contains(t, buf.String(), "Validation completed with warnings")
}

func TestPlainFormatter_Analysis(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).FormatAnalysis(&buf, testAnalysis()))
	out := buf.String()

	assert.Contains(t, out, "DECLARED PERMISSIONS:\n  - tabs\n")
	assert.Contains(t, out, "HOST PERMISSIONS:\n  (none)\n")
	assert.Contains(t, out, "    Files: a.js, b.js, c.js...\n")
	assert.Contains(t, out, "UNUSED PERMISSIONS:\n  - tabs\n")
	assert.Contains(t, out, "MISSING PERMISSIONS:\n  - storage\n")
	assert.Contains(t, out, "SUGGESTIONS:\n  - Remove unused permissions: tabs\n")
	assert.Contains(t, out, "Scanned 4 files (2.0 KiB)")
}

func TestPlainFormatter_AnalysisEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).FormatAnalysis(&buf, &analyzer.Result{Root: "/x"}))
	out := buf.String()

	assert.Contains(t, out, "(none detected)")
	assert.NotContains(t, out, "UNUSED")
	assert.NotContains(t, out, "MISSING")
	assert.NotContains(t, out, "SUGGESTIONS")
}

func TestPlainFormatter_Sync(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).FormatSync(&buf, testSync()))

	assert.Equal(t, `[dev-tools] would update: 1 -> 1 skills
  + Added: ./b/
  - Removed: ./a/
[docs] skipped: not a category bundle
[web] no changes (1 skills)
  ! draft: SKILL.md not found

Dry-run mode: 1 file(s) would be updated
`, buf.String())
}

func TestPrettyFormatter(t *testing.T) {
	f := &PrettyFormatter{}

	var buf bytes.Buffer
	require.NoError(t, f.FormatValidation(&buf, testReport()))
	out := buf.String()
	assert.Contains(t, out, "/ext/manifest.json")
	assert.Contains(t, out, "Missing required field: name")
	assert.Contains(t, out, "[name]")
	assert.Contains(t, out, "Validation failed")

	buf.Reset()
	require.NoError(t, f.FormatAnalysis(&buf, testAnalysis()))
	out = buf.String()
	assert.Contains(t, out, "Unused permissions")
	assert.Contains(t, out, "a.js, b.js, c.js...")
	assert.Contains(t, out, "2.0 KiB")

	buf.Reset()
	require.NoError(t, f.FormatSync(&buf, testSync()))
	out = buf.String()
	assert.Contains(t, out, "+ ./b/")
	assert.Contains(t, out, "- ./a/")
	assert.Contains(t, out, "would be updated")
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{}

	var buf bytes.Buffer
	require.NoError(t, f.FormatValidation(&buf, testReport()))

	var got validationOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.False(t, got.Valid)
	assert.Equal(t, validator.Summary{Errors: 1, Warnings: 1, Infos: 1}, got.Summary)
	assert.Len(t, got.Findings, 3)
	assert.Contains(t, buf.String(), `"severity": "error"`)

	buf.Reset()
	require.NoError(t, f.FormatValidation(&buf, &validator.Report{Path: "m.json"}))
	assert.Contains(t, buf.String(), `"findings": []`)

	buf.Reset()
	require.NoError(t, f.FormatAnalysis(&buf, testAnalysis()))
	var analysis analyzer.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &analysis))
	assert.Equal(t, *testAnalysis(), analysis)

	buf.Reset()
	require.NoError(t, f.FormatSync(&buf, testSync()))
	var sync syncOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &sync))
	assert.Equal(t, 1, sync.Changed)
	assert.Equal(t, "would update", sync.Categories[0].Status)
	assert.Equal(t, []string{"draft"}, sync.Categories[2].MissingSkills)
}

func TestYAMLFormatter(t *testing.T) {
	f := &YAMLFormatter{}

	var buf bytes.Buffer
	require.NoError(t, f.FormatValidation(&buf, testReport()))
	assert.Contains(t, buf.String(), "severity: error")

	var got validationOutput
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "/ext/manifest.json", got.Path)
	assert.Equal(t, validator.SeverityInfo, got.Findings[0].Severity)

	buf.Reset()
	require.NoError(t, f.FormatAnalysis(&buf, testAnalysis()))
	assert.Contains(t, buf.String(), "files_scanned: 4")

	buf.Reset()
	require.NoError(t, f.FormatSync(&buf, testSync()))
	assert.Contains(t, buf.String(), "dry_run: true")
}
