package scanner

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/winjanitor/winjanitor/internal/policy"
	"github.com/winjanitor/winjanitor/internal/winpath"
)

// Walker carries the per-scan state shared by all category scanners: the
// deletion policy, the exclusion filters from the active ScanConfig and the
// logger. One Walker serves one scan.
type Walker struct {
	policy   *policy.Policy
	log      *slog.Logger
	excluded []string
	maxAge   time.Duration
}

// NewWalker builds a Walker for one scan. maxAgeDays <= 0 disables the age
// filter.
func NewWalker(pol *policy.Policy, log *slog.Logger, excluded []string, maxAgeDays int) *Walker {
	w := &Walker{
		policy:   pol,
		log:      log,
		excluded: excluded,
	}
	if maxAgeDays > 0 {
		w.maxAge = time.Duration(maxAgeDays) * 24 * time.Hour
	}
	return w
}

func (w *Walker) excludedPath(path string) bool {
	for _, ex := range w.excluded {
		if winpath.HasRoot(path, ex) {
			return true
		}
	}
	return false
}

func (w *Walker) tooRecent(info fs.FileInfo) bool {
	return w.maxAge > 0 && time.Since(info.ModTime()) < w.maxAge
}

// record builds the FileRecord for one surviving entry. Size is probed
// defensively: a failed stat yields 0, never an error.
func (w *Walker) record(path string, info fs.FileInfo, cat JunkCategory) FileRecord {
	var size int64
	if info != nil {
		size = info.Size()
	}
	return FileRecord{
		Path:      path,
		Size:      size,
		Category:  cat,
		Deletable: w.policy.IsSafeToDelete(path),
	}
}

// ScanDirectory walks root and emits a FileRecord for every regular file.
// A missing root is skipped silently. A root that exists but cannot be
// listed is skipped and logged. Faults on individual entries skip that
// entry only; the walk itself never fails.
func (w *Walker) ScanDirectory(root string, cat JunkCategory) []FileRecord {
	if _, err := os.Stat(root); err != nil {
		if !os.IsNotExist(err) {
			w.log.Warn("directory inaccessible, skipping", "path", root, "error", err)
		}
		return nil
	}
	if _, err := os.ReadDir(root); err != nil {
		w.log.Warn("directory not listable, skipping", "path", root, "error", err)
		return nil
	}

	var files []FileRecord
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission or transient I/O fault on one entry; keep walking.
			w.log.Debug("skipping entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if w.excludedPath(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.excludedPath(path) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			info = nil
		}
		if info != nil && w.tooRecent(info) {
			return nil
		}

		files = append(files, w.record(path, info, cat))
		return nil
	})
	if err != nil {
		// WalkDir only returns the root-enumeration fault; entry faults
		// were swallowed above.
		w.log.Warn("walk aborted", "path", root, "error", err)
	}
	return files
}
