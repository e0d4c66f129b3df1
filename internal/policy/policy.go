// Package policy decides what the cleaner may touch. It is the single
// source of truth for elevation requirements and delete eligibility; every
// deletion re-checks it regardless of what the scan recorded.
package policy

import (
	"log/slog"
	"os"

	"github.com/winjanitor/winjanitor/internal/winpath"
)

const recycleBinMarker = "$RECYCLE.BIN"

// Policy evaluates paths against the fixed allowlists derived from a
// resolved root set. Its prefix lists are immutable after construction, so
// a single Policy is safe for concurrent use.
type Policy struct {
	adminRoots []string
	safeRoots  []string
	log        *slog.Logger
}

// Option configures a Policy.
type Option func(*Policy)

// WithLogger sets the logger used for probe diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(p *Policy) { p.log = log }
}

// New builds a Policy for the given root set.
func New(roots winpath.Roots, opts ...Option) *Policy {
	p := &Policy{
		adminRoots: []string{
			roots.SystemTemp,
			roots.UpdateRoot,
			roots.System32,
			roots.ProgramData,
		},
		log: slog.Default(),
	}

	p.safeRoots = append(p.safeRoots, roots.UserTempRoots...)
	p.safeRoots = append(p.safeRoots,
		roots.SystemTemp,
		roots.UpdateDownload,
		roots.ThumbnailDir,
	)
	p.safeRoots = append(p.safeRoots, roots.BrowserCacheDirs...)
	p.safeRoots = append(p.safeRoots, roots.FirefoxProfiles)

	for _, o := range opts {
		o(p)
	}
	return p
}

// RequiresElevation reports whether path sits under a root that needs an
// elevated process to enumerate or delete reliably. An unmatched path is
// assumed not to require elevation; this function classifies, it never
// blocks listing of records that were already discovered.
func (p *Policy) RequiresElevation(path string) bool {
	for _, root := range p.adminRoots {
		if winpath.HasRoot(path, root) {
			return true
		}
	}
	return false
}

// IsSafeToDelete reports whether path falls inside the deletion allowlist.
// The allowlist is strict: a path that matches no entry is never deletable,
// whatever category claimed it.
func (p *Policy) IsSafeToDelete(path string) bool {
	for _, root := range p.safeRoots {
		if winpath.HasRoot(path, root) {
			return true
		}
	}
	// Recycle bin storage carries its marker at any depth of the path.
	return winpath.ContainsSegment(path, recycleBinMarker)
}

// IsInUse probes whether another process holds path open, by attempting an
// append-mode exclusive open. A path that no longer exists is reported as
// not in use; the caller detects existence separately. Any other failure is
// treated as in use, which is the conservative branch for a deletion
// decision.
func (p *Policy) IsInUse(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err == nil {
		f.Close()
		return false
	}
	if os.IsNotExist(err) {
		return false
	}
	p.log.Debug("open probe failed, treating file as in use",
		"path", path, "error", err)
	return true
}
