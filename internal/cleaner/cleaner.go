// Package cleaner deletes previously discovered junk files one at a time,
// re-validating the deletion policy per file. Policy checks run again here
// even for records marked deletable, since records may be stale by the time
// the user confirms a clean.
package cleaner

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/winjanitor/winjanitor/internal/policy"
	"github.com/winjanitor/winjanitor/internal/scanner"
)

// FailedFile records one file that could not be deleted.
type FailedFile struct {
	Path   string
	Reason string
}

// CleanResult aggregates one clean operation.
//
// Invariant: SuccessCount + FailedCount equals the number of files
// submitted.
type CleanResult struct {
	SuccessCount int
	FailedCount  int
	FreedBytes   int64
	FailedFiles  []FailedFile
	Duration     time.Duration
}

// Engine deletes a caller-selected set of records.
type Engine struct {
	policy *policy.Policy
	log    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New builds a clean engine over the given policy.
func New(pol *policy.Policy, opts ...Option) *Engine {
	e := &Engine{policy: pol, log: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Clean attempts to delete every submitted file, strictly in the given
// order. onProgress fires before each file with floor(index/total*100) and
// once more with ("", 100) after the last file, also when files is empty.
// No per-file failure aborts the batch. Cancellation is observed only at
// file boundaries and yields ctx.Err() instead of a result.
func (e *Engine) Clean(ctx context.Context, files []scanner.FileRecord, onProgress scanner.ProgressFunc) (*CleanResult, error) {
	if onProgress == nil {
		onProgress = func(string, int) {}
	}

	start := time.Now()
	e.log.Info("clean starting", "files", len(files))

	result := &CleanResult{}
	total := len(files)

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		onProgress(f.Path, i*100/total)

		if reason, ok := e.deleteOne(f.Path); ok {
			result.SuccessCount++
			result.FreedBytes += f.Size
		} else {
			result.FailedCount++
			result.FailedFiles = append(result.FailedFiles, FailedFile{
				Path:   f.Path,
				Reason: reason,
			})
			e.log.Warn("delete failed", "path", f.Path, "reason", reason)
		}
	}

	onProgress("", 100)
	result.Duration = time.Since(start)

	e.log.Info("clean complete",
		"deleted", result.SuccessCount,
		"failed", result.FailedCount,
		"freed_bytes", result.FreedBytes,
		"duration", result.Duration)
	return result, nil
}

// deleteOne deletes a single path after re-running every safety check. On
// failure the returned reason is one of the fixed taxonomy strings.
func (e *Engine) deleteOne(path string) (reason string, ok bool) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ReasonNotFound, false
		}
		return categorizeDeleteError(err), false
	}

	if !e.policy.IsSafeToDelete(path) {
		return ReasonNotAllowlisted, false
	}

	if e.policy.IsInUse(path) {
		return ReasonInUse, false
	}

	// os.Remove refuses a non-empty directory, which keeps directory
	// targets restricted to empty ones.
	if err := os.Remove(path); err != nil {
		if info.IsDir() && !os.IsPermission(err) && !os.IsNotExist(err) {
			return otherReason(err), false
		}
		return categorizeDeleteError(err), false
	}
	return "", true
}
