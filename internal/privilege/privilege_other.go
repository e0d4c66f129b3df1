//go:build !windows

package privilege

import "os"

type osChecker struct{}

// IsElevated reports whether the process runs as root. This keeps the
// engine testable on development machines; the production target is
// Windows.
func (osChecker) IsElevated() bool { return os.Geteuid() == 0 }

type osRelauncher struct{}

func (osRelauncher) RelaunchElevated() error { return ErrRelaunchUnsupported }
