package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/winjanitor/winjanitor/internal/winpath"
)

// CategoryScanner discovers the candidate files of one junk category. A
// scanner never fails; at worst it returns an empty list.
type CategoryScanner interface {
	Category() JunkCategory
	Scan(w *Walker) []FileRecord
}

// TempScanner walks the per-user temp roots and the system temp root.
type TempScanner struct {
	roots winpath.Roots
}

func NewTempScanner(roots winpath.Roots) *TempScanner {
	return &TempScanner{roots: roots}
}

func (s *TempScanner) Category() JunkCategory { return CategoryTempFiles }

func (s *TempScanner) Scan(w *Walker) []FileRecord {
	dirs := append([]string{}, s.roots.UserTempRoots...)
	dirs = append(dirs, s.roots.SystemTemp)

	var files []FileRecord
	for _, dir := range dirs {
		files = append(files, w.ScanDirectory(dir, CategoryTempFiles)...)
	}
	return files
}

// UpdateCacheScanner walks the Windows Update download cache.
type UpdateCacheScanner struct {
	roots winpath.Roots
}

func NewUpdateCacheScanner(roots winpath.Roots) *UpdateCacheScanner {
	return &UpdateCacheScanner{roots: roots}
}

func (s *UpdateCacheScanner) Category() JunkCategory { return CategoryUpdateCache }

func (s *UpdateCacheScanner) Scan(w *Walker) []FileRecord {
	return w.ScanDirectory(s.roots.UpdateDownload, CategoryUpdateCache)
}

// RecycleBinScanner walks the $RECYCLE.BIN directory of every mounted
// volume.
type RecycleBinScanner struct {
	roots winpath.Roots
}

func NewRecycleBinScanner(roots winpath.Roots) *RecycleBinScanner {
	return &RecycleBinScanner{roots: roots}
}

func (s *RecycleBinScanner) Category() JunkCategory { return CategoryRecycleBin }

func (s *RecycleBinScanner) Scan(w *Walker) []FileRecord {
	var files []FileRecord
	for _, vol := range s.roots.VolumeRoots {
		bin := filepath.Join(vol, "$RECYCLE.BIN")
		files = append(files, w.ScanDirectory(bin, CategoryRecycleBin)...)
	}
	return files
}

// BrowserCacheScanner walks the fixed Chrome/Edge cache directories and
// enumerates the cache2 directory of every Firefox profile.
type BrowserCacheScanner struct {
	roots winpath.Roots
}

func NewBrowserCacheScanner(roots winpath.Roots) *BrowserCacheScanner {
	return &BrowserCacheScanner{roots: roots}
}

func (s *BrowserCacheScanner) Category() JunkCategory { return CategoryBrowserCache }

func (s *BrowserCacheScanner) Scan(w *Walker) []FileRecord {
	var files []FileRecord
	for _, dir := range s.roots.BrowserCacheDirs {
		files = append(files, w.ScanDirectory(dir, CategoryBrowserCache)...)
	}
	files = append(files, s.scanFirefox(w)...)
	return files
}

func (s *BrowserCacheScanner) scanFirefox(w *Walker) []FileRecord {
	profiles, err := os.ReadDir(s.roots.FirefoxProfiles)
	if err != nil {
		// Firefox not installed, or profiles unreadable; either way the
		// category just yields nothing from it.
		return nil
	}

	var files []FileRecord
	for _, p := range profiles {
		if !p.IsDir() {
			continue
		}
		cache := filepath.Join(s.roots.FirefoxProfiles, p.Name(), "cache2")
		files = append(files, w.ScanDirectory(cache, CategoryBrowserCache)...)
	}
	return files
}

// ThumbnailCacheScanner lists the Explorer directory and keeps only the
// thumbcache_*.db files; everything else in that directory stays untouched.
type ThumbnailCacheScanner struct {
	roots winpath.Roots
}

func NewThumbnailCacheScanner(roots winpath.Roots) *ThumbnailCacheScanner {
	return &ThumbnailCacheScanner{roots: roots}
}

func (s *ThumbnailCacheScanner) Category() JunkCategory { return CategoryThumbnailCache }

const (
	thumbcachePrefix = "thumbcache_"
	thumbcacheSuffix = ".db"
)

func (s *ThumbnailCacheScanner) Scan(w *Walker) []FileRecord {
	entries, err := os.ReadDir(s.roots.ThumbnailDir)
	if err != nil {
		if !os.IsNotExist(err) {
			w.log.Warn("thumbnail cache not listable, skipping",
				"path", s.roots.ThumbnailDir, "error", err)
		}
		return nil
	}

	var files []FileRecord
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if e.IsDir() || !strings.HasPrefix(name, thumbcachePrefix) || !strings.HasSuffix(name, thumbcacheSuffix) {
			continue
		}
		path := filepath.Join(s.roots.ThumbnailDir, e.Name())
		if w.excludedPath(path) {
			continue
		}
		info, infoErr := e.Info()
		if infoErr != nil {
			info = nil
		}
		if info != nil && w.tooRecent(info) {
			continue
		}
		files = append(files, w.record(path, info, CategoryThumbnailCache))
	}
	return files
}

// CustomScanner walks user-supplied folders as the custom pseudo-category.
type CustomScanner struct {
	folders []string
}

func NewCustomScanner(folders []string) *CustomScanner {
	return &CustomScanner{folders: folders}
}

func (s *CustomScanner) Category() JunkCategory { return CategoryCustom }

func (s *CustomScanner) Scan(w *Walker) []FileRecord {
	var files []FileRecord
	for _, dir := range s.folders {
		files = append(files, w.ScanDirectory(dir, CategoryCustom)...)
	}
	return files
}
