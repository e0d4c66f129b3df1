package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winjanitor/winjanitor/internal/scanner"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDefaultEnablesEveryFixedCategory(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	sc, err := cfg.ScanConfig()
	require.NoError(t, err)
	for _, c := range scanner.AllCategories() {
		if c == scanner.CategoryCustom {
			assert.False(t, sc.Enabled[c], "custom must not be a default category")
			continue
		}
		assert.True(t, sc.Enabled[c], "category %s not enabled by default", c)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := Default()
	cfg.UITheme = "dark"
	cfg.Scan.CustomFolders = []string{filepath.Join(string(filepath.Separator), "data", "downloads")}
	cfg.Scan.MaxFileAgeDays = 14
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [not: a: mapping"), 0o644))

	_, err := Load(path)
	assert.Error(t, err, "malformed yaml must surface, not silently reset")
}

func TestValidate(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "x")

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"defaults are valid", func(*AppConfig) {}, false},
		{"no categories", func(c *AppConfig) { c.Scan.EnabledCategories = nil }, true},
		{"unknown category", func(c *AppConfig) {
			c.Scan.EnabledCategories = []string{"registry_hives"}
		}, true},
		{"relative excluded path", func(c *AppConfig) {
			c.Scan.ExcludedPaths = []string{"relative/path"}
		}, true},
		{"absolute excluded path", func(c *AppConfig) {
			c.Scan.ExcludedPaths = []string{abs}
		}, false},
		{"negative age", func(c *AppConfig) { c.Scan.MaxFileAgeDays = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScanConfigRoundTripPreservesSet(t *testing.T) {
	cfg := Default()
	// Persisted order is irrelevant; only the set matters.
	cfg.Scan.EnabledCategories = []string{"recycle_bin", "temp_files", "recycle_bin"}

	sc, err := cfg.ScanConfig()
	require.NoError(t, err)
	assert.Len(t, sc.Enabled, 2)

	cfg.SetScanConfig(sc)
	assert.Equal(t, []string{"temp_files", "recycle_bin"}, cfg.Scan.EnabledCategories,
		"serialized names follow the fixed category order")
}

func TestScanConfigRejectsUnknownName(t *testing.T) {
	cfg := Default()
	cfg.Scan.EnabledCategories = append(cfg.Scan.EnabledCategories, "bogus")
	_, err := cfg.ScanConfig()
	assert.Error(t, err)
}
