package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBackend, cfg.Store.Backend)
	assert.Equal(t, DefaultSnapshotName, cfg.Snapshot.Name)
	assert.Equal(t, DefaultFormat, cfg.Snapshot.Format)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, DefaultRetentionDays, cfg.Journal.RetentionDays)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "warn", cfg.Logging.Components["blob"])
	assert.Equal(t, filepath.Join(DataDir(), DefaultBackend), cfg.StorePath())
	assert.Equal(t, filepath.Join(DataDir(), "journal"), cfg.JournalPath())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `
store:
  backend: sqlite
  path: /var/lib/syncstate/state.db
snapshot:
  name: photos.state
  format: json
journal:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/var/lib/syncstate/state.db", cfg.StorePath())
	assert.Equal(t, "photos.state", cfg.Snapshot.Name)
	assert.Equal(t, "json", cfg.Snapshot.Format)
	assert.False(t, cfg.Journal.Enabled)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultRetentionDays, cfg.Journal.RetentionDays)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SYNCSTATE_STORE_BACKEND", "dir")
	t.Setenv("SYNCSTATE_SNAPSHOT_NAME", "music.state")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dir", cfg.Store.Backend)
	assert.Equal(t, "music.state", cfg.Snapshot.Name)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  path: ~/state\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "state"), cfg.Store.Path)
}

func TestLogConfig(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:    "debug",
			Path:     "/tmp/syncstate.log",
			Rotation: RotationConfig{MaxSize: "2MB", MaxAge: 7, MaxBackups: 2, Daily: true},
		},
	}

	lc, err := cfg.LogConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "/tmp/syncstate.log", lc.Path)
	assert.Equal(t, int64(2_000_000), lc.Rotation.MaxSize)
	assert.Equal(t, 2, lc.Rotation.MaxBackups)

	cfg.Logging.Rotation.MaxSize = "lots"
	_, err = cfg.LogConfig()
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"10MB":   10_000_000,
		"1MiB":   1 << 20,
		"512":    512,
		" 1KB ": 1000,
	}
	for in, want := range tests {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSize("ten megs")
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestWriteDefault(t *testing.T) {
	xdgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgHome)

	path, err := WriteDefault()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdgHome, "syncstate", "config.yaml"), path)

	// The written file must load back to the defaults.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSnapshotName, cfg.Snapshot.Name)
	assert.Equal(t, DefaultLogMaxSize, cfg.Logging.Rotation.MaxSize)

	// Existing files are left untouched.
	require.NoError(t, os.WriteFile(path, []byte("snapshot:\n  name: kept\n"), 0o644))
	_, err = WriteDefault()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), got)

	got, err = ExpandPath("/abs")
	require.NoError(t, err)
	assert.Equal(t, "/abs", got)
}
