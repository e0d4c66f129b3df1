package scanner

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/winjanitor/winjanitor/internal/policy"
	"github.com/winjanitor/winjanitor/internal/privilege"
	"github.com/winjanitor/winjanitor/internal/testutil"
)

func allEnabled() map[JunkCategory]bool {
	enabled := make(map[JunkCategory]bool)
	for _, c := range AllCategories() {
		if c != CategoryCustom {
			enabled[c] = true
		}
	}
	return enabled
}

func newTestEngine(t *testing.T, f *testutil.TestFixture, elevated bool, opts ...EngineOption) *Engine {
	t.Helper()
	roots := f.Roots()
	pol := policy.New(roots)
	opts = append([]EngineOption{}, opts...)
	return NewEngine(roots, pol, privilege.Static{Elevated: elevated}, opts...)
}

// panicScanner stands in for a category scanner that blows up mid-walk.
type panicScanner struct{ cat JunkCategory }

func (s panicScanner) Category() JunkCategory  { return s.cat }
func (s panicScanner) Scan(*Walker) []FileRecord { panic("boom") }

func checkResultInvariants(t *testing.T, res *ScanResult) {
	t.Helper()

	count := 0
	var size int64
	seen := make(map[string]JunkCategory)
	for cat, files := range res.Categories {
		count += len(files)
		for _, f := range files {
			size += f.Size
			if f.Category != cat {
				t.Errorf("%s: record category %v stored under key %v", f.Path, f.Category, cat)
			}
			if prev, dup := seen[f.Path]; dup {
				t.Errorf("%s: appears under both %v and %v", f.Path, prev, f.Category)
			}
			seen[f.Path] = cat
		}
	}
	if res.TotalCount != count {
		t.Errorf("TotalCount = %d, want %d", res.TotalCount, count)
	}
	if res.TotalSize != size {
		t.Errorf("TotalSize = %d, want %d", res.TotalSize, size)
	}
	if res.RequiresAdmin != (len(res.Inaccessible) > 0) {
		t.Errorf("RequiresAdmin = %v with %d inaccessible categories",
			res.RequiresAdmin, len(res.Inaccessible))
	}
}

func TestScanElevated(t *testing.T) {
	f := testutil.NewFixture(t)
	total := f.PopulateJunk()

	eng := newTestEngine(t, f, true)
	res, err := eng.Scan(context.Background(), ScanConfig{Enabled: allEnabled()}, nil)
	if err != nil {
		t.Fatal(err)
	}

	checkResultInvariants(t, res)
	if res.TotalSize != total {
		t.Errorf("TotalSize = %d, want %d", res.TotalSize, total)
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
	if res.RequiresAdmin {
		t.Error("elevated scan must not flag RequiresAdmin")
	}
	for _, cat := range []JunkCategory{CategoryTempFiles, CategoryUpdateCache, CategoryRecycleBin, CategoryBrowserCache, CategoryThumbnailCache} {
		if len(res.Categories[cat]) == 0 {
			t.Errorf("category %v found no files", cat)
		}
	}
}

func TestScanUnelevatedGatesPrivilegedCategories(t *testing.T) {
	f := testutil.NewFixture(t)
	f.PopulateJunk()

	eng := newTestEngine(t, f, false)
	res, err := eng.Scan(context.Background(), ScanConfig{Enabled: allEnabled()}, nil)
	if err != nil {
		t.Fatal(err)
	}

	checkResultInvariants(t, res)
	if !res.RequiresAdmin {
		t.Error("RequiresAdmin must be set when privileged categories were skipped")
	}
	if len(res.Inaccessible) != 2 {
		t.Fatalf("Inaccessible = %v, want temp and update cache", res.Inaccessible)
	}
	for _, cat := range []JunkCategory{CategoryTempFiles, CategoryUpdateCache} {
		files, present := res.Categories[cat]
		if !present {
			t.Errorf("gated category %v missing from result map", cat)
		}
		if len(files) != 0 {
			t.Errorf("gated category %v yielded %d files, want none", cat, len(files))
		}
	}
	if len(res.Errors) != 2 {
		t.Errorf("Errors = %v, want one diagnostic per gated category", res.Errors)
	}
	// Unprivileged categories still produce their files.
	if len(res.Categories[CategoryBrowserCache]) == 0 {
		t.Error("browser cache must still be scanned without elevation")
	}
}

func TestScanProgressSequence(t *testing.T) {
	f := testutil.NewFixture(t)
	f.PopulateJunk()

	type call struct {
		label   string
		percent int
	}
	var calls []call
	eng := newTestEngine(t, f, true)
	_, err := eng.Scan(context.Background(), ScanConfig{Enabled: allEnabled()},
		func(label string, percent int) {
			calls = append(calls, call{label, percent})
		})
	if err != nil {
		t.Fatal(err)
	}

	// One call per category plus the terminal call.
	if len(calls) != len(allEnabled())+1 {
		t.Fatalf("got %d progress calls, want %d", len(calls), len(allEnabled())+1)
	}
	prev := -1
	for _, c := range calls {
		if c.percent < prev {
			t.Errorf("percent went backwards: %d after %d", c.percent, prev)
		}
		prev = c.percent
	}
	last := calls[len(calls)-1]
	if last.label != "" || last.percent != 100 {
		t.Errorf("terminal call = (%q, %d), want (\"\", 100)", last.label, last.percent)
	}
	for _, c := range calls[:len(calls)-1] {
		if !strings.HasPrefix(c.label, "Scanning: ") {
			t.Errorf("category label %q missing prefix", c.label)
		}
	}
}

func TestScanPanicIsIsolated(t *testing.T) {
	f := testutil.NewFixture(t)
	f.PopulateJunk()

	eng := newTestEngine(t, f, true, WithScanner(panicScanner{cat: CategoryRecycleBin}))
	res, err := eng.Scan(context.Background(), ScanConfig{Enabled: allEnabled()}, nil)
	if err != nil {
		t.Fatal(err)
	}

	checkResultInvariants(t, res)
	if len(res.Categories[CategoryRecycleBin]) != 0 {
		t.Error("failed category must yield no files")
	}
	found := false
	for _, msg := range res.Errors {
		if strings.Contains(msg, "Recycle Bin") {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want a diagnostic naming the failed category", res.Errors)
	}
	// Later categories still ran.
	if len(res.Categories[CategoryBrowserCache]) == 0 {
		t.Error("categories after the failed one must still be scanned")
	}
}

func TestScanCustomFolders(t *testing.T) {
	f := testutil.NewFixture(t)
	downloads := filepath.Join(f.RootDir, "downloads")
	custom := f.CreateFile(downloads, "stale.zip", 10)

	eng := newTestEngine(t, f, true)
	cfg := ScanConfig{
		Enabled:       map[JunkCategory]bool{CategoryThumbnailCache: true},
		CustomFolders: []string{downloads},
	}
	res, err := eng.Scan(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	files := res.Categories[CategoryCustom]
	if len(files) != 1 || files[0].Path != custom {
		t.Fatalf("custom category = %v, want only %s", files, custom)
	}
	if files[0].Deletable {
		t.Error("custom folder content outside the allowlist must not be deletable")
	}
}

func TestScanCancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	f.PopulateJunk()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := newTestEngine(t, f, true)
	res, err := eng.Scan(ctx, ScanConfig{Enabled: allEnabled()}, nil)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res != nil {
		t.Errorf("cancelled scan returned a result: %+v", res)
	}
}

func TestScanInvalidConfig(t *testing.T) {
	f := testutil.NewFixture(t)
	eng := newTestEngine(t, f, true)

	if _, err := eng.Scan(context.Background(), ScanConfig{}, nil); err == nil {
		t.Error("empty config must be rejected")
	}
}
