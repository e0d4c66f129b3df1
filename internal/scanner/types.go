package scanner

import (
	"fmt"
	"time"
)

// JunkCategory is the fixed classification bucket for disposable files.
type JunkCategory int

const (
	CategoryTempFiles JunkCategory = iota
	CategoryUpdateCache
	CategoryRecycleBin
	CategoryBrowserCache
	CategoryThumbnailCache
	CategoryCustom
)

var categoryNames = map[JunkCategory]string{
	CategoryTempFiles:      "temp_files",
	CategoryUpdateCache:    "update_cache",
	CategoryRecycleBin:     "recycle_bin",
	CategoryBrowserCache:   "browser_cache",
	CategoryThumbnailCache: "thumbnail_cache",
	CategoryCustom:         "custom",
}

var categoryLabels = map[JunkCategory]string{
	CategoryTempFiles:      "Temporary files",
	CategoryUpdateCache:    "Windows Update cache",
	CategoryRecycleBin:     "Recycle Bin",
	CategoryBrowserCache:   "Browser cache",
	CategoryThumbnailCache: "Thumbnail cache",
	CategoryCustom:         "Custom folders",
}

// String returns the stable machine name used in configuration files.
func (c JunkCategory) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return fmt.Sprintf("junkcategory(%d)", int(c))
}

// Label returns the human-readable category name.
func (c JunkCategory) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return c.String()
}

// RequiresElevation reports whether scanning this category needs an
// elevated process. Only the categories rooted in protected system
// directories are gated.
func (c JunkCategory) RequiresElevation() bool {
	return c == CategoryTempFiles || c == CategoryUpdateCache
}

// AllCategories returns every category in its fixed order, custom last.
func AllCategories() []JunkCategory {
	return []JunkCategory{
		CategoryTempFiles,
		CategoryUpdateCache,
		CategoryRecycleBin,
		CategoryBrowserCache,
		CategoryThumbnailCache,
		CategoryCustom,
	}
}

// CategoryFromName resolves a stable machine name back to its category.
func CategoryFromName(name string) (JunkCategory, error) {
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown junk category %q", name)
}

// FileRecord describes one candidate file discovered during a scan. Records
// are immutable after creation and owned by the ScanResult that holds them.
type FileRecord struct {
	Path         string
	Size         int64
	Category     JunkCategory
	Deletable    bool
	ErrorMessage string
}

// ScanResult aggregates one complete scan.
//
// Invariants: TotalCount equals the sum of the category list lengths,
// TotalSize the sum of all record sizes, every record's Category equals the
// key of the list holding it, and no record appears under two keys.
type ScanResult struct {
	Categories    map[JunkCategory][]FileRecord
	TotalSize     int64
	TotalCount    int
	Duration      time.Duration
	Errors        []string
	RequiresAdmin bool
	Inaccessible  []JunkCategory
}

// ScanConfig is the immutable input for one scan.
type ScanConfig struct {
	// Enabled is the set of categories to scan. Must be non-empty.
	Enabled map[JunkCategory]bool

	// CustomFolders are walked as an additional pseudo-category, without
	// elevation gating.
	CustomFolders []string

	// ExcludedPaths are prefixes removed from every walk.
	ExcludedPaths []string

	// MaxFileAgeDays, when positive, drops files modified more recently
	// than the threshold.
	MaxFileAgeDays int
}

// Validate checks the configuration before a scan starts.
func (c ScanConfig) Validate() error {
	if len(c.Enabled) == 0 {
		return fmt.Errorf("scan config: no categories enabled")
	}
	for cat := range c.Enabled {
		if _, ok := categoryNames[cat]; !ok {
			return fmt.Errorf("scan config: invalid category %d", int(cat))
		}
	}
	return nil
}

// ProgressFunc receives a display label and a percentage in [0,100].
// Percentages within one operation are non-decreasing and the final call
// always carries 100.
type ProgressFunc func(label string, percent int)
