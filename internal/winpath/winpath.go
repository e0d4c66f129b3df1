// Package winpath resolves the well-known Windows directories the cleaner
// works with. All roots are derived from environment variables so the
// package behaves correctly on installations that don't live on C: and so
// tests can point every root at a scratch directory.
package winpath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// Roots holds the resolved directory set for one scan session.
type Roots struct {
	// UserTempRoots are the per-user temp directories (%TEMP%, %TMP%,
	// %LOCALAPPDATA%\Temp), deduplicated since they usually alias.
	UserTempRoots []string

	// SystemTemp is %WINDIR%\Temp.
	SystemTemp string

	// UpdateRoot is %WINDIR%\SoftwareDistribution.
	UpdateRoot string

	// UpdateDownload is the update download cache under UpdateRoot.
	UpdateDownload string

	// ThumbnailDir is the Explorer directory holding thumbcache_*.db files.
	ThumbnailDir string

	// BrowserCacheDirs are the fixed Chrome/Edge cache directories.
	BrowserCacheDirs []string

	// FirefoxProfiles is the Firefox profiles root; cache2 subdirectories
	// are enumerated per profile at scan time.
	FirefoxProfiles string

	// System32 and ProgramData participate in elevation decisions only.
	System32    string
	ProgramData string

	// VolumeRoots are the mounted volume roots probed for $RECYCLE.BIN.
	VolumeRoots []string
}

func winDir() string {
	if w := os.Getenv("WINDIR"); w != "" {
		return w
	}
	return `C:\Windows`
}

func localAppData() string {
	if l := os.Getenv("LOCALAPPDATA"); l != "" {
		return l
	}
	return filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
}

func programData() string {
	if p := os.Getenv("PROGRAMDATA"); p != "" {
		return p
	}
	return `C:\ProgramData`
}

// Discover resolves all roots from the current environment.
func Discover() Roots {
	w := winDir()
	local := localAppData()

	return Roots{
		UserTempRoots:  userTempRoots(local),
		SystemTemp:     filepath.Join(w, "Temp"),
		UpdateRoot:     filepath.Join(w, "SoftwareDistribution"),
		UpdateDownload: filepath.Join(w, "SoftwareDistribution", "Download"),
		ThumbnailDir:   filepath.Join(local, "Microsoft", "Windows", "Explorer"),
		BrowserCacheDirs: []string{
			filepath.Join(local, "Google", "Chrome", "User Data", "Default", "Cache"),
			filepath.Join(local, "Google", "Chrome", "User Data", "Default", "Code Cache"),
			filepath.Join(local, "Microsoft", "Edge", "User Data", "Default", "Cache"),
			filepath.Join(local, "Microsoft", "Edge", "User Data", "Default", "Code Cache"),
		},
		FirefoxProfiles: filepath.Join(local, "Mozilla", "Firefox", "Profiles"),
		System32:        filepath.Join(w, "System32"),
		ProgramData:     programData(),
		VolumeRoots:     VolumeRoots(),
	}
}

func userTempRoots(local string) []string {
	candidates := []string{
		os.Getenv("TEMP"),
		os.Getenv("TMP"),
		filepath.Join(local, "Temp"),
	}

	// %TEMP% and %TMP% almost always alias %LOCALAPPDATA%\Temp.
	seen := make(map[string]bool)
	var roots []string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		key := Normalize(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		roots = append(roots, filepath.Clean(c))
	}
	return roots
}

// VolumeRoots returns the roots of all mounted volumes. Partition
// enumeration is preferred; if it yields nothing, drive letters A-Z are
// probed directly.
func VolumeRoots() []string {
	var roots []string
	if parts, err := disk.Partitions(false); err == nil {
		for _, p := range parts {
			if p.Mountpoint != "" {
				roots = append(roots, p.Mountpoint)
			}
		}
	}
	if len(roots) > 0 {
		return roots
	}

	for c := 'A'; c <= 'Z'; c++ {
		root := string(c) + `:\`
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			roots = append(roots, root)
		}
	}
	return roots
}

// Normalize produces the canonical form used for path comparisons:
// cleaned and upper-cased, since Windows paths compare case-insensitively.
func Normalize(path string) string {
	return strings.ToUpper(filepath.Clean(path))
}

func isSep(c byte) bool {
	return c == '\\' || c == '/'
}

// HasRoot reports whether path sits at or under root, comparing normalized
// forms on whole path segments so that C:\WindowsEvil does not match
// C:\Windows.
func HasRoot(path, root string) bool {
	if root == "" {
		return false
	}
	p, r := Normalize(path), Normalize(root)
	if !strings.HasPrefix(p, r) {
		return false
	}
	if len(p) == len(r) {
		return true
	}
	if isSep(r[len(r)-1]) {
		// Root already ends in a separator (a bare drive root).
		return true
	}
	return isSep(p[len(r)])
}

// ContainsSegment reports whether any segment of path equals name,
// case-insensitively. Used for markers like $RECYCLE.BIN that can appear
// at any depth.
func ContainsSegment(path, name string) bool {
	n := strings.ToUpper(name)
	for _, seg := range strings.FieldsFunc(Normalize(path), func(r rune) bool {
		return r == '\\' || r == '/'
	}) {
		if seg == n {
			return true
		}
	}
	return false
}
