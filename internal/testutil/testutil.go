// Package testutil provides test fixtures for winjanitor tests. Every root
// the scanner and policy work with is pointed at a t.TempDir() scratch tree
// through the same environment variables the real discovery reads, so tests
// never touch actual system directories.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/winjanitor/winjanitor/internal/winpath"
)

// TestFixture holds a scratch tree laid out like the Windows directories the
// cleaner cares about.
type TestFixture struct {
	T       *testing.T
	RootDir string

	// WinDir and LocalAppData are the fake %WINDIR% and %LOCALAPPDATA%.
	WinDir       string
	LocalAppData string
	ProgramData  string

	// Junk locations inside the fake tree.
	UserTemp       string
	SystemTemp     string
	UpdateDownload string
	ThumbnailDir   string
	ChromeCache    string
	EdgeCache      string
	FirefoxProfile string

	// VolumeRoot is a fake mounted volume holding a $RECYCLE.BIN.
	VolumeRoot string
	RecycleBin string
}

// NewFixture builds the scratch tree and overrides the discovery environment
// so winpath.Discover resolves into it.
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()

	root := t.TempDir()

	f := &TestFixture{
		T:            t,
		RootDir:      root,
		WinDir:       filepath.Join(root, "Windows"),
		LocalAppData: filepath.Join(root, "Users", "tester", "AppData", "Local"),
		ProgramData:  filepath.Join(root, "ProgramData"),
		VolumeRoot:   filepath.Join(root, "volume"),
	}
	f.UserTemp = filepath.Join(f.LocalAppData, "Temp")
	f.SystemTemp = filepath.Join(f.WinDir, "Temp")
	f.UpdateDownload = filepath.Join(f.WinDir, "SoftwareDistribution", "Download")
	f.ThumbnailDir = filepath.Join(f.LocalAppData, "Microsoft", "Windows", "Explorer")
	f.ChromeCache = filepath.Join(f.LocalAppData, "Google", "Chrome", "User Data", "Default", "Cache")
	f.EdgeCache = filepath.Join(f.LocalAppData, "Microsoft", "Edge", "User Data", "Default", "Cache")
	f.FirefoxProfile = filepath.Join(f.LocalAppData, "Mozilla", "Firefox", "Profiles", "abc123.default", "cache2")
	f.RecycleBin = filepath.Join(f.VolumeRoot, "$RECYCLE.BIN")

	for _, dir := range []string{
		f.UserTemp,
		f.SystemTemp,
		f.UpdateDownload,
		f.ThumbnailDir,
		f.ChromeCache,
		f.EdgeCache,
		f.FirefoxProfile,
		f.RecycleBin,
		f.ProgramData,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	t.Setenv("WINDIR", f.WinDir)
	t.Setenv("LOCALAPPDATA", f.LocalAppData)
	t.Setenv("PROGRAMDATA", f.ProgramData)
	t.Setenv("TEMP", f.UserTemp)
	t.Setenv("TMP", f.UserTemp)

	return f
}

// Roots discovers the root set from the fixture environment, with VolumeRoots
// replaced by the fixture volume so the recycle bin scanner stays inside the
// scratch tree.
func (f *TestFixture) Roots() winpath.Roots {
	roots := winpath.Discover()
	roots.VolumeRoots = []string{f.VolumeRoot}
	return roots
}

// CreateFile creates a file with content of the given size under dir and
// returns its path.
func (f *TestFixture) CreateFile(dir, name string, size int) string {
	f.T.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.T.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		f.T.Fatalf("write %s: %v", path, err)
	}
	return path
}

// CreateFileWithAge creates a file and pushes its modification time into the
// past.
func (f *TestFixture) CreateFileWithAge(dir, name string, size int, age time.Duration) string {
	f.T.Helper()

	path := f.CreateFile(dir, name, size)
	old := time.Now().Add(-age)
	if err := os.Chtimes(path, old, old); err != nil {
		f.T.Fatalf("chtimes %s: %v", path, err)
	}
	return path
}

// PopulateJunk fills every junk location with a small set of files and
// returns the total byte count created.
func (f *TestFixture) PopulateJunk() int64 {
	f.T.Helper()

	var total int64
	add := func(dir, name string, size int) {
		f.CreateFileWithAge(dir, name, size, 48*time.Hour)
		total += int64(size)
	}

	add(f.UserTemp, "setup.tmp", 100)
	add(f.UserTemp, "installer.log", 200)
	add(f.SystemTemp, "msi1234.tmp", 300)
	add(f.UpdateDownload, "update.cab", 400)
	add(f.ThumbnailDir, "thumbcache_256.db", 500)
	add(f.ChromeCache, "f_000001", 600)
	add(f.EdgeCache, "f_000002", 700)
	add(f.FirefoxProfile, "entries", 800)
	add(f.RecycleBin, "deleted.doc", 900)

	return total
}

// FileExists reports whether path still exists.
func (f *TestFixture) FileExists(path string) bool {
	f.T.Helper()
	_, err := os.Lstat(path)
	return err == nil
}
