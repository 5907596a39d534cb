package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "unknown", Level(42).String())
}

func TestGet_SilentBeforeInit(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	logger := Get("silent")
	assert.NotPanics(t, func() {
		logger.Info("nobody hears this", "k", "v")
	})
}

func TestInit_RewiresExistingLoggers(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	logger := Get("early")

	var console bytes.Buffer
	require.NoError(t, Init(Config{ConsoleLevel: "info", Console: &console}))

	logger.Info("hello from early", "n", 1)
	logger.Debug("filtered out")

	out := console.String()
	assert.Contains(t, out, "hello from early")
	assert.Contains(t, out, "early")
	assert.NotContains(t, out, "filtered out")
}

func TestInit_FileOutputAndComponents(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	path := filepath.Join(t.TempDir(), "logs", "crxlint.log")
	require.NoError(t, Init(Config{
		Level:      "warn",
		Path:       path,
		Components: map[string]string{"scanner": "debug"},
	}))

	Get("scanner").Debug("scanner detail")
	Get("validator").Info("validator chatter")
	Get("validator").With("check", "icons").Warn("validator warning")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "scanner detail")
	assert.NotContains(t, content, "validator chatter")
	assert.Contains(t, content, "validator warning")
	assert.Contains(t, content, "check=icons")
}

func TestInit_InvalidLevels(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	assert.Error(t, Init(Config{Level: "loud"}))
	assert.Error(t, Init(Config{ConsoleLevel: "loud"}))
	assert.Error(t, Init(Config{Components: map[string]string{"x": "loud"}}))
}

func TestInit_FailedReinitKeepsPreviousFile(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	path := filepath.Join(t.TempDir(), "crxlint.log")
	require.NoError(t, Init(Config{Level: "info", Path: path}))

	logger := Get("cli")
	logger.Info("before reinit")

	assert.Error(t, Init(Config{Level: "loud", Path: filepath.Join(t.TempDir(), "other.log")}))
	assert.Error(t, Init(Config{Level: "info", Path: filepath.Join(path, "not-a-dir", "x.log")}))

	logger.Info("after failed reinit")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "before reinit")
	assert.Contains(t, string(data), "after failed reinit")
}

func TestInit_ReinitMovesToNewFile(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	require.NoError(t, Init(Config{Path: first}))
	logger := Get("cli")
	logger.Info("into first")

	require.NoError(t, Init(Config{Path: second}))
	logger.Info("into second")
	require.NoError(t, Close())

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(data), "into first")
	assert.NotContains(t, string(data), "into second")

	data, err = os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), "into second")
}
