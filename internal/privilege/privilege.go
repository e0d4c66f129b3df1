// Package privilege exposes the two OS capabilities the engine needs but
// does not own: querying whether the current process is elevated, and
// relaunching it elevated. Both are injected so the engines stay free of
// OS-specific calls.
package privilege

import "errors"

// ErrRelaunchUnsupported is returned when elevated relaunch is not
// available on this platform.
var ErrRelaunchUnsupported = errors.New("privilege: elevated relaunch not supported on this platform")

// Checker answers whether the current process runs elevated. The query has
// no side effects.
type Checker interface {
	IsElevated() bool
}

// Relauncher restarts the current executable with elevated privileges.
type Relauncher interface {
	RelaunchElevated() error
}

// Static is a fixed-answer Checker for tests and dry runs.
type Static struct {
	Elevated bool
}

func (s Static) IsElevated() bool { return s.Elevated }

// Current returns the platform Checker.
func Current() Checker { return osChecker{} }

// CurrentRelauncher returns the platform Relauncher.
func CurrentRelauncher() Relauncher { return osRelauncher{} }
