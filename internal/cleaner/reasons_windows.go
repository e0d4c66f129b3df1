//go:build windows

package cleaner

import (
	"errors"

	"golang.org/x/sys/windows"
)

// isSharingViolation reports whether err is the Windows sharing-violation
// or lock-violation status another process holding the file produces.
func isSharingViolation(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) ||
		errors.Is(err, windows.ERROR_LOCK_VIOLATION)
}
