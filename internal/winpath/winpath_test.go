package winpath

import (
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"upper-cases", `c:\windows\temp`, `C:\WINDOWS\TEMP`},
		{"already normal", `C:\WINDOWS`, `C:\WINDOWS`},
		{"cleans slash dots", "a/./b/../b", "A/B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := filepath.FromSlash(tt.want)
			if got := Normalize(tt.in); got != want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, want)
			}
		})
	}
}

func TestHasRoot(t *testing.T) {
	tests := []struct {
		name string
		path string
		root string
		want bool
	}{
		{"direct child", `C:\Windows\Temp\a.tmp`, `C:\Windows\Temp`, true},
		{"deep child", `C:\Windows\Temp\sub\dir\a.tmp`, `C:\Windows\Temp`, true},
		{"root itself", `C:\Windows\Temp`, `C:\Windows\Temp`, true},
		{"case insensitive", `c:\windows\temp\A.TMP`, `C:\Windows\Temp`, true},
		{"sibling with shared prefix", `C:\Windows\TempEvil\a.tmp`, `C:\Windows\Temp`, false},
		{"unrelated", `D:\Data\a.tmp`, `C:\Windows\Temp`, false},
		{"drive root with trailing sep", `C:\anything`, `C:\`, true},
		{"empty root", `C:\Windows`, ``, false},
		{"parent of root", `C:\Windows`, `C:\Windows\Temp`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasRoot(tt.path, tt.root); got != tt.want {
				t.Errorf("HasRoot(%q, %q) = %v, want %v", tt.path, tt.root, got, tt.want)
			}
		})
	}
}

func TestHasRootForwardSlashes(t *testing.T) {
	// Scratch trees on non-Windows hosts produce forward-slash paths.
	if !HasRoot("/tmp/fixture/Windows/Temp/a.tmp", "/tmp/fixture/Windows/Temp") {
		t.Error("expected forward-slash child to match its root")
	}
	if HasRoot("/tmp/fixture/Windows/TempX/a.tmp", "/tmp/fixture/Windows/Temp") {
		t.Error("segment boundary must hold for forward-slash paths too")
	}
}

func TestContainsSegment(t *testing.T) {
	tests := []struct {
		name string
		path string
		seg  string
		want bool
	}{
		{"at root", `C:\$RECYCLE.BIN\S-1-5-21\file`, "$RECYCLE.BIN", true},
		{"nested", `D:\backup\$RECYCLE.BIN\x`, "$RECYCLE.BIN", true},
		{"case insensitive", `c:\$recycle.bin\x`, "$RECYCLE.BIN", true},
		{"substring of a segment", `C:\my$RECYCLE.BINbackup\x`, "$RECYCLE.BIN", false},
		{"absent", `C:\Windows\Temp\x`, "$RECYCLE.BIN", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsSegment(tt.path, tt.seg); got != tt.want {
				t.Errorf("ContainsSegment(%q, %q) = %v, want %v", tt.path, tt.seg, got, tt.want)
			}
		})
	}
}

func TestDiscoverUsesEnvironment(t *testing.T) {
	t.Setenv("WINDIR", filepath.Join("/fix", "Windows"))
	t.Setenv("LOCALAPPDATA", filepath.Join("/fix", "Local"))
	t.Setenv("PROGRAMDATA", filepath.Join("/fix", "ProgramData"))
	t.Setenv("TEMP", filepath.Join("/fix", "Local", "Temp"))
	t.Setenv("TMP", filepath.Join("/fix", "Local", "Temp"))

	roots := Discover()

	if want := filepath.Join("/fix", "Windows", "Temp"); roots.SystemTemp != want {
		t.Errorf("SystemTemp = %q, want %q", roots.SystemTemp, want)
	}
	if want := filepath.Join("/fix", "Windows", "SoftwareDistribution", "Download"); roots.UpdateDownload != want {
		t.Errorf("UpdateDownload = %q, want %q", roots.UpdateDownload, want)
	}
	if want := filepath.Join("/fix", "ProgramData"); roots.ProgramData != want {
		t.Errorf("ProgramData = %q, want %q", roots.ProgramData, want)
	}

	// TEMP, TMP and LOCALAPPDATA\Temp all alias; one root survives.
	if len(roots.UserTempRoots) != 1 {
		t.Fatalf("UserTempRoots = %v, want exactly one deduplicated root", roots.UserTempRoots)
	}
	if want := filepath.Join("/fix", "Local", "Temp"); roots.UserTempRoots[0] != want {
		t.Errorf("UserTempRoots[0] = %q, want %q", roots.UserTempRoots[0], want)
	}
}

func TestUserTempRootsKeepsDistinctDirs(t *testing.T) {
	t.Setenv("TEMP", filepath.Join("/fix", "TempA"))
	t.Setenv("TMP", filepath.Join("/fix", "TempB"))

	roots := userTempRoots(filepath.Join("/fix", "Local"))
	if len(roots) != 3 {
		t.Fatalf("got %d roots %v, want 3 distinct", len(roots), roots)
	}
}
