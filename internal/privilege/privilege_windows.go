//go:build windows

package privilege

import (
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

type osChecker struct{}

// IsElevated reports whether the process token carries elevation.
func (osChecker) IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

type osRelauncher struct{}

// RelaunchElevated restarts the current executable through the shell
// "runas" verb, which triggers the UAC consent prompt. The caller is
// expected to exit once this returns nil; the elevated instance runs
// independently.
func (osRelauncher) RelaunchElevated() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	verb, err := syscall.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}
	exePtr, err := syscall.UTF16PtrFromString(exe)
	if err != nil {
		return err
	}
	cwdPtr, err := syscall.UTF16PtrFromString(cwd)
	if err != nil {
		return err
	}

	return windows.ShellExecute(0, verb, exePtr, nil, cwdPtr, windows.SW_NORMAL)
}
