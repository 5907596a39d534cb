package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	xdg.Reload()
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New(""))
	require.NoError(t, err)

	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultExtensions, cfg.Scan.Extensions)
	assert.Equal(t, DefaultExcludeDirs, cfg.Scan.ExcludeDirs)
	assert.Empty(t, cfg.Scan.Exclude)
	assert.Empty(t, cfg.Registry.Exclude)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultConsoleLevel, cfg.Logging.Console)
	assert.Empty(t, cfg.Logging.Path)
}

func TestLoad_FromFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", AppName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`
output: json
scan:
  extensions: [.js]
  exclude: ["vendor/**"]
registry:
  exclude: [templates]
logging:
  level: debug
  path: ~/logs/crxlint.log
`), 0o644))

	cfg, err := Load(New(""))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, []string{".js"}, cfg.Scan.Extensions)
	assert.Equal(t, DefaultExcludeDirs, cfg.Scan.ExcludeDirs)
	assert.Equal(t, []string{"vendor/**"}, cfg.Scan.Exclude)
	assert.Equal(t, []string{"templates"}, cfg.Registry.Exclude)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(home, "logs", "crxlint.log"), cfg.Logging.Path)
}

func TestLoad_XDGConfigHome(t *testing.T) {
	isolate(t)
	xdgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgHome)
	xdg.Reload()
	require.NoError(t, os.MkdirAll(filepath.Join(xdgHome, AppName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdgHome, AppName, FileName), []byte("output: yaml\n"), 0o644))

	cfg, err := Load(New(""))
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output)
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("CRXLINT_OUTPUT", "plain")
	t.Setenv("CRXLINT_LOGGING_CONSOLE", "error")

	cfg, err := Load(New(""))
	require.NoError(t, err)
	assert.Equal(t, "plain", cfg.Output)
	assert.Equal(t, "error", cfg.Logging.Console)
}

func TestRead_ExplicitFile(t *testing.T) {
	isolate(t)

	v := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, Read(v))

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: json\n"), 0o644))
	v = New(path)
	require.NoError(t, Read(v))
	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, path, v.ConfigFileUsed())
}

func TestRead_Malformed(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", AppName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("output: [unterminated\n"), 0o644))

	_, err := Load(New(""))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestWriteDefault(t *testing.T) {
	home := isolate(t)

	path, created, err := WriteDefault()
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, filepath.Join(home, ".config", AppName, FileName), path)

	cfg, err := Load(New(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultExtensions, cfg.Scan.Extensions)
	assert.Equal(t, DefaultExcludeDirs, cfg.Scan.ExcludeDirs)

	_, created, err = WriteDefault()
	require.NoError(t, err)
	assert.False(t, created)
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)

	got, err := ExpandPath("~/x/y")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y"), got)

	got, err = ExpandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestConfigPath_FollowsXDG(t *testing.T) {
	isolate(t)
	xdgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgHome)
	xdg.Reload()

	assert.Equal(t, filepath.Join(xdgHome, AppName), ConfigDir())
	assert.Equal(t, filepath.Join(xdgHome, AppName, FileName), ConfigPath())
}

func TestLoad_BoundValueWins(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", AppName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("output: json\n"), 0o644))

	v := New("")
	v.Set("output", "yaml")
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, filepath.Join(dir, FileName), v.ConfigFileUsed())
}
