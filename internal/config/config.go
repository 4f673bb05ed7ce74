// Package config loads the application settings from a YAML file layered
// over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	// DataDir holds the database and the import watch folder.
	DataDir string `yaml:"data_dir"`

	History  History  `yaml:"history"`
	Tools    Tools    `yaml:"tools"`
	Autosave Autosave `yaml:"autosave"`
	Figma    Figma    `yaml:"figma"`
}

type History struct {
	Limit    int           `yaml:"limit"`
	Debounce time.Duration `yaml:"debounce"`
}

// Tools holds the drawing thresholds in screen pixels.
type Tools struct {
	MinSize       float64 `yaml:"min_size"`
	CloseDistance float64 `yaml:"close_distance"`
	PenStep       float64 `yaml:"pen_step"`
	PasteStep     float64 `yaml:"paste_step"`
}

type Autosave struct {
	Enabled bool `yaml:"enabled"`
	// Schedule is a cron spec, e.g. "@every 30s".
	Schedule string `yaml:"schedule"`
}

type Figma struct {
	APIBaseURL string `yaml:"api_base_url"`
	// WatchDir is scanned for dropped Figma JSON exports. Relative paths
	// are resolved against DataDir. Empty disables watching.
	WatchDir     string        `yaml:"watch_dir"`
	WatchPattern string        `yaml:"watch_pattern"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir: filepath.Join(home, ".vectorboard"),
		History: History{Limit: 50, Debounce: 500 * time.Millisecond},
		Tools:   Tools{MinSize: 5, CloseDistance: 20, PenStep: 2, PasteStep: 20},
		Autosave: Autosave{
			Enabled:  true,
			Schedule: "@every 30s",
		},
		Figma: Figma{
			APIBaseURL:   "https://api.figma.com/v1",
			WatchDir:     "figma-inbox",
			WatchPattern: "**/*.json",
			Timeout:      30 * time.Second,
		},
	}
}

// DefaultPath returns ~/.config/vectorboard/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "vectorboard", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the editor cannot work with.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("history.limit must be positive, got %d", c.History.Limit)
	}
	if c.History.Debounce < 0 {
		return fmt.Errorf("history.debounce must not be negative, got %s", c.History.Debounce)
	}
	if c.Tools.MinSize <= 0 || c.Tools.CloseDistance <= 0 || c.Tools.PenStep <= 0 {
		return errors.New("tool thresholds must be positive")
	}
	if c.Autosave.Enabled && c.Autosave.Schedule == "" {
		return errors.New("autosave.schedule is required when autosave is enabled")
	}
	return nil
}

// WatchPath returns the absolute watch folder, or "" when disabled.
func (c Config) WatchPath() string {
	if c.Figma.WatchDir == "" {
		return ""
	}
	if filepath.IsAbs(c.Figma.WatchDir) {
		return c.Figma.WatchDir
	}
	return filepath.Join(c.DataDir, c.Figma.WatchDir)
}

// DBPath returns the SQLite database file.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "vectorboard.db")
}

// Save writes c to path as YAML, creating the directory.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
