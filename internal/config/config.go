// Package config handles Keyline configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aklerup/keyline/internal/models"
)

// Config is the root configuration structure for Keyline.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Timeline defaults for new projects
	Timeline TimelineConfig `yaml:"timeline" mapstructure:"timeline"`

	// Playback transport settings
	Playback PlaybackConfig `yaml:"playback" mapstructure:"playback"`

	// Editor interaction settings
	Editor EditorConfig `yaml:"editor" mapstructure:"editor"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global Keyline settings.
type GlobalConfig struct {
	// DataDir is where Keyline stores its data (default: ~/.local/share/keyline).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/keyline).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// BusyTimeoutMs is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// TimelineConfig contains defaults for new timelines.
type TimelineConfig struct {
	// DefaultDuration is the length of a fresh timeline in seconds.
	DefaultDuration float64 `yaml:"default_duration" mapstructure:"default_duration"`

	// DefaultKind is the segment kind armed for creation gestures.
	DefaultKind models.SegmentKind `yaml:"default_kind" mapstructure:"default_kind"`
}

// PlaybackConfig contains playback transport settings.
type PlaybackConfig struct {
	// Speed is the initial rate multiplier.
	Speed float64 `yaml:"speed" mapstructure:"speed"`

	// Loop wraps the playhead at the end of the timeline.
	Loop bool `yaml:"loop" mapstructure:"loop"`

	// FollowAudio binds the clock to an external audio position instead
	// of free-running.
	FollowAudio bool `yaml:"follow_audio" mapstructure:"follow_audio"`
}

// EditorConfig contains interaction settings.
type EditorConfig struct {
	// PixelsPerSecond is the initial horizontal zoom level.
	PixelsPerSecond float64 `yaml:"pixels_per_second" mapstructure:"pixels_per_second"`

	// SnapInterval rounds drag and resize times to a grid, in seconds.
	// Zero disables snapping.
	SnapInterval float64 `yaml:"snap_interval" mapstructure:"snap_interval"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// RefreshInterval is how often to refresh the display.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// Theme is the color theme (default, dark, light).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// ShowTimestamps shows a timecode ruler in the UI.
	ShowTimestamps bool `yaml:"show_timestamps" mapstructure:"show_timestamps"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "keyline"),
			ConfigDir: filepath.Join(homeDir, ".config", "keyline"),
		},
		Database: DatabaseConfig{
			Path:          "", // Will be set to DataDir/keyline.db
			BusyTimeoutMs: 5000,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		Timeline: TimelineConfig{
			DefaultDuration: 30,
			DefaultKind:     models.SegmentKindAnimation,
		},
		Playback: PlaybackConfig{
			Speed: 1.0,
			Loop:  false,
		},
		Editor: EditorConfig{
			PixelsPerSecond: 50,
			SnapInterval:    0,
		},
		TUI: TUIConfig{
			RefreshInterval: 500 * time.Millisecond,
			Theme:           "default",
			ShowTimestamps:  true,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.BusyTimeoutMs < 0 {
		return fmt.Errorf("database.busy_timeout_ms must not be negative")
	}

	if c.Timeline.DefaultDuration <= 0 {
		return fmt.Errorf("timeline.default_duration must be positive")
	}
	if !c.Timeline.DefaultKind.IsValid() {
		return fmt.Errorf("timeline.default_kind must be one of animation, pause, transition, marker, audio, video")
	}

	if c.Playback.Speed < 0.25 || c.Playback.Speed > 2.0 {
		return fmt.Errorf("playback.speed must be between 0.25 and 2.0")
	}

	if c.Editor.PixelsPerSecond < 10 || c.Editor.PixelsPerSecond > 200 {
		return fmt.Errorf("editor.pixels_per_second must be between 10 and 200")
	}
	if c.Editor.SnapInterval < 0 {
		return fmt.Errorf("editor.snap_interval must not be negative")
	}

	if c.TUI.RefreshInterval < 50*time.Millisecond {
		return fmt.Errorf("tui.refresh_interval must be at least 50ms")
	}

	return nil
}

// DatabasePath returns the configured database path, defaulting to
// DataDir/keyline.db.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "keyline.db")
}
