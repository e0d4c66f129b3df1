// Package config loads and saves the application configuration. A missing
// file yields the defaults; a malformed file is an error the caller
// surfaces rather than silently repairing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/winjanitor/winjanitor/internal/scanner"
)

// AppConfig is the persisted application configuration.
type AppConfig struct {
	Scan             ScanSettings `yaml:"scan"`
	UITheme          string       `yaml:"ui_theme"`
	Language         string       `yaml:"language"`
	AutoCheckUpdates bool         `yaml:"auto_check_updates"`
}

// ScanSettings is the persisted form of a scanner.ScanConfig. Categories
// are stored by their stable names so the file survives reordering and
// future enum growth.
type ScanSettings struct {
	EnabledCategories []string `yaml:"enabled_categories"`
	CustomFolders     []string `yaml:"custom_folders,omitempty"`
	ExcludedPaths     []string `yaml:"excluded_paths,omitempty"`
	MaxFileAgeDays    int      `yaml:"max_file_age_days,omitempty"`
}

// Default returns the configuration used when no file exists: every fixed
// category enabled, no custom folders, no filters.
func Default() *AppConfig {
	var names []string
	for _, c := range scanner.AllCategories() {
		if c == scanner.CategoryCustom {
			continue
		}
		names = append(names, c.String())
	}
	return &AppConfig{
		Scan:             ScanSettings{EnabledCategories: names},
		UITheme:          "light",
		Language:         "en_US",
		AutoCheckUpdates: true,
	}
}

// Load reads the configuration from path. A missing file returns the
// defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func Save(cfg *AppConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects unknown category names and non-absolute filter paths.
func (c *AppConfig) Validate() error {
	if len(c.Scan.EnabledCategories) == 0 {
		return fmt.Errorf("no categories enabled")
	}
	for _, name := range c.Scan.EnabledCategories {
		if _, err := scanner.CategoryFromName(name); err != nil {
			return err
		}
	}
	for _, p := range c.Scan.ExcludedPaths {
		if !filepath.IsAbs(p) {
			return fmt.Errorf("excluded path must be absolute: %s", p)
		}
	}
	if c.Scan.MaxFileAgeDays < 0 {
		return fmt.Errorf("max_file_age_days must be >= 0")
	}
	return nil
}

// ScanConfig converts the persisted settings into the engine's input.
// Duplicate category names collapse; the set, not the order, is what the
// round trip preserves.
func (c *AppConfig) ScanConfig() (scanner.ScanConfig, error) {
	enabled := make(map[scanner.JunkCategory]bool, len(c.Scan.EnabledCategories))
	for _, name := range c.Scan.EnabledCategories {
		cat, err := scanner.CategoryFromName(name)
		if err != nil {
			return scanner.ScanConfig{}, err
		}
		enabled[cat] = true
	}
	return scanner.ScanConfig{
		Enabled:        enabled,
		CustomFolders:  c.Scan.CustomFolders,
		ExcludedPaths:  c.Scan.ExcludedPaths,
		MaxFileAgeDays: c.Scan.MaxFileAgeDays,
	}, nil
}

// SetScanConfig writes a scanner.ScanConfig back into the persisted form,
// with category names serialized in the fixed enum order.
func (c *AppConfig) SetScanConfig(sc scanner.ScanConfig) {
	var names []string
	for _, cat := range scanner.AllCategories() {
		if sc.Enabled[cat] {
			names = append(names, cat.String())
		}
	}
	c.Scan = ScanSettings{
		EnabledCategories: names,
		CustomFolders:     sc.CustomFolders,
		ExcludedPaths:     sc.ExcludedPaths,
		MaxFileAgeDays:    sc.MaxFileAgeDays,
	}
}

// DefaultPath returns the config file location in the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "winjanitor", "config.yaml"), nil
}

// EnsureExists writes the default configuration when no file is present
// and returns the path used.
func EnsureExists() (string, error) {
	path, err := DefaultPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(Default(), path); err != nil {
			return "", err
		}
	}
	return path, nil
}
