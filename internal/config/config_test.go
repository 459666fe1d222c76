package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setDataDir(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_DATA_HOME", base)
	return filepath.Join(base, "taskpilot")
}

func TestLoadDefaults(t *testing.T) {
	setDataDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0 9 * * *", cfg.ReminderCron)
	assert.True(t, cfg.NotificationsGranted)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dataDir := setDataDir(t)
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte(
		"backend: sqlite\ndebounce_ms: 500\nlog_level: debug\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dataDir := setDataDir(t)
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.yaml"),
		[]byte("backend: sqlite\n"), 0644))
	t.Setenv("TASKPILOT_BACKEND", "file")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Backend)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	setDataDir(t)
	t.Setenv("TASKPILOT_BACKEND", "redis")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadCreatesDataDir(t *testing.T) {
	dataDir := setDataDir(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir)

	info, err := os.Stat(dataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
