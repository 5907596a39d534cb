package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/crxlint/pkg/crxlint/manifest"
	"github.com/jamesainslie/crxlint/pkg/crxlint/scanner"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, fsys afero.Fs, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fsys, filepath.Join(root, name), []byte(content), 0o644))
	}
}

func TestAnalyze_UnusedAndMissing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeProject(t, fsys, "/ext", map[string]string{
		"manifest.json": `{"manifest_version":3,"name":"x","version":"1.0","permissions":["tabs"]}`,
		"bg.js":         `chrome.storage.local.get("k")`,
	})

	res, err := New(WithFs(fsys)).Analyze("/ext")
	require.NoError(t, err)

	assert.Equal(t, []string{"tabs"}, res.DeclaredPermissions)
	assert.Equal(t, []string{"tabs"}, res.Unused)
	assert.Equal(t, []string{"storage"}, res.Missing)
	require.Len(t, res.Usages, 1)
	assert.Equal(t, Usage{Capability: "chrome.storage", Permission: "storage", Files: []string{"bg.js"}}, res.Usages[0])
	assert.Equal(t, []string{
		"Remove unused permissions: tabs",
		"Add missing permissions: storage",
		"Consider making these permissions optional: tabs",
	}, res.Suggestions)
	assert.Equal(t, 1, res.FilesScanned)
}

func TestAnalyze_AllDeclaredAndUsed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeProject(t, fsys, "/ext", map[string]string{
		"manifest.json":     `{"manifest_version":3,"name":"x","version":"1.0","permissions":["storage","alarms"]}`,
		"src/a.ts":          `chrome.storage.sync.set({}); chrome.runtime.getURL("x")`,
		"src/b.ts":          `chrome.alarms.create("tick", {periodInMinutes: 1}); chrome.storage.local`,
		"node_modules/x.js": `chrome.cookies.getAll({})`,
	})

	res, err := New(WithFs(fsys)).Analyze("/ext")
	require.NoError(t, err)

	assert.Empty(t, res.Unused)
	assert.Empty(t, res.Missing)
	assert.Empty(t, res.Suggestions)
	assert.Equal(t, []string{"alarms", "storage"}, res.Required())
	require.Len(t, res.Usages, 2)
	assert.Equal(t, "chrome.alarms", res.Usages[0].Capability)
	assert.Equal(t, []string{"src/a.ts", "src/b.ts"}, res.Usages[1].Files)
	assert.Equal(t, 2, res.FilesScanned)
}

func TestAnalyze_UnusedDeclaredOrderDeduplicated(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeProject(t, fsys, "/ext", map[string]string{
		"manifest.json": `{"permissions":["storage","history","alarms","history"]}`,
		"a.js":          `chrome.downloads.download({}); chrome.bookmarks.get("1"); chrome.alarms.clear()`,
	})

	res, err := New(WithFs(fsys)).Analyze("/ext")
	require.NoError(t, err)

	assert.Equal(t, []string{"storage", "history"}, res.Unused)
	assert.Equal(t, []string{"bookmarks", "downloads"}, res.Missing)
	assert.Contains(t, res.Suggestions, "Consider making these permissions optional: history")
}

func TestAnalyze_BroadHostPermissions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeProject(t, fsys, "/ext", map[string]string{
		"manifest.json": `{"host_permissions":["<all_urls>","https://example.com/*","*://*/*"]}`,
	})

	res, err := New(WithFs(fsys)).Analyze("/ext")
	require.NoError(t, err)

	assert.Equal(t, []string{
		`Consider narrowing host permission: "<all_urls>" → specific domains`,
		`Consider narrowing host permission: "*://*/*" → specific domains`,
	}, res.Suggestions)
	assert.Empty(t, res.DeclaredPermissions)
	assert.Len(t, res.DeclaredHostPermissions, 3)
}

func TestAnalyze_ScanOptions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeProject(t, fsys, "/ext", map[string]string{
		"manifest.json": `{}`,
		"vendor/lib.js": `chrome.tabs.query({})`,
		"main.mjs":      `chrome.identity.getAuthToken()`,
	})

	opts := scanner.DefaultOptions("")
	opts.Extensions = []string{".js", ".mjs"}
	opts.ExcludeGlobs = []string{"vendor/**"}

	res, err := New(WithFs(fsys), WithScanOptions(opts)).Analyze("/ext")
	require.NoError(t, err)

	require.Len(t, res.Usages, 1)
	assert.Equal(t, "identity", res.Usages[0].Permission)
	assert.Equal(t, []string{"identity"}, res.Missing)
}

func TestAnalyze_WronglyTypedManifestFields(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeProject(t, fsys, "/ext", map[string]string{
		"manifest.json": `{"manifest_version":"3","version":1.0,"permissions":["tabs"],"host_permissions":"<all_urls>"}`,
		"popup.js":      `chrome.tabs.query({})`,
	})

	res, err := New(WithFs(fsys)).Analyze("/ext")
	require.NoError(t, err)

	assert.Equal(t, []string{"tabs"}, res.DeclaredPermissions)
	assert.Empty(t, res.DeclaredHostPermissions)
	assert.NotNil(t, res.DeclaredHostPermissions)
	assert.Empty(t, res.Unused)
	assert.Empty(t, res.Missing)
}

func TestAnalyze_LoadFailure(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/empty", 0o755))

	_, err := New(WithFs(fsys)).Analyze("/empty")
	assert.ErrorIs(t, err, manifest.ErrLoad)

	writeProject(t, fsys, "/bad", map[string]string{"manifest.json": `{"permissions":`})
	_, err = New(WithFs(fsys)).Analyze("/bad")
	assert.ErrorIs(t, err, manifest.ErrLoad)
}

func TestAnalyzeDocument_RootNotDirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeProject(t, fsys, "/ext", map[string]string{"file.js": ""})

	_, err := New(WithFs(fsys)).AnalyzeDocument(&manifest.Document{}, "/ext/file.js")
	assert.ErrorIs(t, err, scanner.ErrNotDirectory)
}

func TestAnalyze_OnDisk(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "manifest.json"), []byte(`{"permissions":["notifications"]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sw.js"), []byte(`chrome.notifications.create({})`), 0o644))

	res, err := New().Analyze(root)
	require.NoError(t, err)
	assert.Empty(t, res.Unused)
	assert.Empty(t, res.Missing)
	assert.Equal(t, int64(len(`chrome.notifications.create({})`)), res.BytesScanned)
}
