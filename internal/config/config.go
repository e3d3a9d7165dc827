// Package config handles configuration loading and defaults for cycleplanner.
// Configuration is loaded from XDG-compliant paths (typically ~/.config/cycle-planner/config.yaml).
package config

import (
	"os"
	"path/filepath"

	"cycleplanner/internal/fsutil"
	"cycleplanner/internal/pathutil"

	"gopkg.in/yaml.v3"
)

const appDirName = "cycle-planner"

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory holding index.json
	DataDir string `yaml:"data_dir,omitempty"`

	// Storage tunes how files are written
	Storage StorageConfig `yaml:"storage,omitempty"`

	// Window sets the initial window state of the terminal host
	Window WindowConfig `yaml:"window,omitempty"`

	// Theme customizes the visual appearance
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// Log configures the log file
	Log LogConfig `yaml:"log,omitempty"`

	// Backup configures snapshot retention
	Backup BackupConfig `yaml:"backup,omitempty"`
}

// StorageConfig defines persistence settings.
type StorageConfig struct {
	// KeepBackups keeps a .bak copy of each file before it is replaced
	KeepBackups bool `yaml:"keep_backups"`
}

// WindowConfig defines terminal window settings.
type WindowConfig struct {
	// Opacity is the initial window opacity, clamped to [0.5, 1.0]
	Opacity float64 `yaml:"opacity,omitempty"`

	// CellWidth is the number of logical units per terminal column
	CellWidth float64 `yaml:"cell_width,omitempty"`

	// CellHeight is the number of logical units per terminal row
	CellHeight float64 `yaml:"cell_height,omitempty"`
}

// ThemeConfig defines color and style settings.
type ThemeConfig struct {
	// Primary color for focused elements (hex, e.g., "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for highlights (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`

	// Background color (hex); also the color frames fade toward at low opacity
	Background string `yaml:"background,omitempty"`

	// Text color (hex)
	Text string `yaml:"text,omitempty"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level,omitempty"`

	// File overrides the log file path (default <data_dir>/logs/cycleplanner.log)
	File string `yaml:"file,omitempty"`
}

// BackupConfig defines backup retention.
type BackupConfig struct {
	// Keep is the number of backups kept by prune (0 keeps all)
	Keep int `yaml:"keep"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Storage: StorageConfig{
			KeepBackups: true,
		},
		Window: WindowConfig{
			Opacity:    1.0,
			CellWidth:  8,
			CellHeight: 16,
		},
		Theme: ThemeConfig{
			Primary:    "#7C3AED", // Violet
			Accent:     "#10B981", // Emerald
			Muted:      "#6B7280", // Gray
			Background: "#1F2937", // Slate
			Text:       "",        // Terminal default
		},
		Log: LogConfig{
			Level: "info",
		},
		Backup: BackupConfig{
			Keep: 10,
		},
	}
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + appDirName
	}
	return filepath.Join(dir, appDirName)
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}

	// Fall back to ~/.config/cycle-planner
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// Path returns the path to the config file, or "" when no home is known.
func Path() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from disk, merging with defaults.
// If no config file exists, returns default configuration.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads configuration from path, merging with defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults
			return cfg, nil
		}
		return nil, err
	}

	// Parse YAML and merge with defaults
	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return nil, err
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; fall back to conservative merge if this fails

	cfg.mergeFromYAML(&userCfg, &doc)
	return cfg, nil
}

// mergeNonEmpty applies non-empty values from other to c.
// It intentionally does not touch booleans (those require presence-aware merging).
func (c *Config) mergeNonEmpty(other *Config) {
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}

	if other.Window.Opacity > 0 {
		c.Window.Opacity = other.Window.Opacity
	}
	if other.Window.CellWidth > 0 {
		c.Window.CellWidth = other.Window.CellWidth
	}
	if other.Window.CellHeight > 0 {
		c.Window.CellHeight = other.Window.CellHeight
	}

	if other.Theme.Primary != "" {
		c.Theme.Primary = other.Theme.Primary
	}
	if other.Theme.Accent != "" {
		c.Theme.Accent = other.Theme.Accent
	}
	if other.Theme.Muted != "" {
		c.Theme.Muted = other.Theme.Muted
	}
	if other.Theme.Background != "" {
		c.Theme.Background = other.Theme.Background
	}
	if other.Theme.Text != "" {
		c.Theme.Text = other.Theme.Text
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}

	if other.Backup.Keep > 0 {
		c.Backup.Keep = other.Backup.Keep
	}
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)

	// Fall back to conservative behavior if we can't inspect presence.
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	// Booleans and explicit zeros apply only when present in YAML.
	if yamlHasPath(doc, "storage", "keep_backups") {
		c.Storage.KeepBackups = other.Storage.KeepBackups
	}
	if yamlHasPath(doc, "backup", "keep") && other.Backup.Keep >= 0 {
		c.Backup.Keep = other.Backup.Keep
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	// Document -> root mapping.
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			if k.Kind == yaml.ScalarNode && k.Value == key {
				next = v
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	if path == "" {
		return nil
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path with ~ expanded.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	if dir, err := pathutil.Expand(c.DataDir); err == nil {
		return dir
	}
	return c.DataDir
}

// LogFile returns the resolved log file path.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		if f, err := pathutil.Expand(c.Log.File); err == nil {
			return f
		}
		return c.Log.File
	}
	return filepath.Join(c.GetDataDir(), "logs", "cycleplanner.log")
}
