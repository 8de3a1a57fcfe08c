package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aklerup/keyline/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	loader := NewLoader()
	loader.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := loader.Load()
	require.Error(t, err, "explicit missing config file should fail")

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	loader = NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 30.0, cfg.Timeline.DefaultDuration)
	assert.Equal(t, models.SegmentKindAnimation, cfg.Timeline.DefaultKind)
	assert.Equal(t, 50.0, cfg.Editor.PixelsPerSecond)
	assert.Equal(t, 1.0, cfg.Playback.Speed)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
timeline:
  default_duration: 45
  default_kind: marker
playback:
  speed: 1.5
  loop: true
editor:
  pixels_per_second: 120
  snap_interval: 0.25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	loader := NewLoader()
	loader.SetConfigFile(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 45.0, cfg.Timeline.DefaultDuration)
	assert.Equal(t, models.SegmentKindMarker, cfg.Timeline.DefaultKind)
	assert.Equal(t, 1.5, cfg.Playback.Speed)
	assert.True(t, cfg.Playback.Loop)
	assert.Equal(t, 120.0, cfg.Editor.PixelsPerSecond)
	assert.Equal(t, 0.25, cfg.Editor.SnapInterval)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
playback:
  speed: 7.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	loader := NewLoader()
	loader.SetConfigFile(path)
	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "playback.speed")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("KEYLINE_LOGGING_LEVEL", "warn")
	t.Setenv("KEYLINE_EDITOR_SNAP_INTERVAL", "0.5")

	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 0.5, cfg.Editor.SnapInterval)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "projects"), expandTilde("~/projects"))
	assert.Equal(t, home, expandTilde("~"))
	assert.Equal(t, "/absolute/path", expandTilde("/absolute/path"))
	assert.Equal(t, "", expandTilde(""))
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Timeline.DefaultDuration = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timeline.DefaultKind = "bogus"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Editor.PixelsPerSecond = 5
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.TUI.RefreshInterval = 0
	require.Error(t, cfg.Validate())
}
