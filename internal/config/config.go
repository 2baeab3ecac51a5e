// Package config handles configuration loading, validation, and defaults
// for the mimic CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"mimic/internal/logging"
)

// Config holds the complete tool configuration.
type Config struct {
	// Recording configuration.
	Recording RecordingConfig `toml:"recording" json:"recording" yaml:"recording"`

	// Playback configuration.
	Playback PlaybackConfig `toml:"playback" json:"playback" yaml:"playback"`

	// Storage configuration for the recording catalog.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Logging configuration.
	Logging logging.Config `toml:"logging" json:"logging" yaml:"logging"`
}

// RecordingConfig holds capture-side settings.
type RecordingConfig struct {
	// Simplify condenses the recording when it is stopped: mouse-move
	// runs collapse to their final position and scroll bursts merge.
	Simplify bool `toml:"simplify" json:"simplify" yaml:"simplify"`

	// MoveMergeMs is the move-merge window in milliseconds when
	// Simplify is on.
	MoveMergeMs int `toml:"move_merge_ms" json:"move_merge_ms" yaml:"move_merge_ms"`

	// ScrollMergeMs is the scroll-merge window in milliseconds when
	// Simplify is on.
	ScrollMergeMs int `toml:"scroll_merge_ms" json:"scroll_merge_ms" yaml:"scroll_merge_ms"`
}

// PlaybackConfig holds replay-side settings.
type PlaybackConfig struct {
	// Speed scales all offsets; 2.0 replays twice as fast.
	Speed float64 `toml:"speed" json:"speed" yaml:"speed"`

	// OnError is the per-event failure policy: abort, skip, or retry.
	OnError string `toml:"on_error" json:"on_error" yaml:"on_error"`

	// MaxRetries bounds re-attempts under the retry policy.
	MaxRetries int `toml:"max_retries" json:"max_retries" yaml:"max_retries"`

	// InhibitScreensaver keeps the desktop session awake for the
	// duration of playback (Linux only).
	InhibitScreensaver bool `toml:"inhibit_screensaver" json:"inhibit_screensaver" yaml:"inhibit_screensaver"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// Dir is the directory holding loose recording files (*.json).
	Dir string `toml:"dir" json:"dir" yaml:"dir"`

	// DatabasePath is the SQLite catalog of named recordings.
	DatabasePath string `toml:"database_path" json:"database_path" yaml:"database_path"`
}

// Default returns the default configuration.
func Default() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Recording: RecordingConfig{
			Simplify:      false,
			MoveMergeMs:   200,
			ScrollMergeMs: 400,
		},
		Playback: PlaybackConfig{
			Speed:              1.0,
			OnError:            "abort",
			MaxRetries:         3,
			InhibitScreensaver: true,
		},
		Storage: StorageConfig{
			Dir:          filepath.Join(dataDir, "recordings"),
			DatabasePath: filepath.Join(dataDir, "mimic.db"),
		},
		Logging: logging.DefaultConfig(),
	}
}

// defaultDataDir returns the platform-specific data directory.
func defaultDataDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "mimic")
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		return filepath.Join(appData, "mimic")
	default:
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, _ := os.UserHomeDir()
			dataHome = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(dataHome, "mimic")
	}
}

// DefaultPath returns the platform-specific config file path.
func DefaultPath() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "mimic", "config.toml")
	case "windows":
		appData := os.Getenv("APPDATA")
		return filepath.Join(appData, "mimic", "config.toml")
	default:
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, _ := os.UserHomeDir()
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, "mimic", "config.toml")
	}
}

// Load reads a config file, applies it over the defaults, and validates
// the result. TOML by default; .yaml/.yml files are parsed as YAML. A
// missing file at the default path is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath() {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Playback.Speed <= 0 {
		return fmt.Errorf("config: playback.speed must be positive, got %v", c.Playback.Speed)
	}
	switch c.Playback.OnError {
	case "abort", "skip", "retry":
	default:
		return fmt.Errorf("config: playback.on_error must be abort, skip, or retry, got %q", c.Playback.OnError)
	}
	if c.Playback.MaxRetries < 0 {
		return fmt.Errorf("config: playback.max_retries must be non-negative, got %d", c.Playback.MaxRetries)
	}
	if c.Recording.MoveMergeMs < 0 || c.Recording.ScrollMergeMs < 0 {
		return fmt.Errorf("config: recording merge windows must be non-negative")
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("config: storage.dir must not be empty")
	}
	return nil
}
