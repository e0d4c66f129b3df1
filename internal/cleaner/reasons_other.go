//go:build !windows

package cleaner

import (
	"errors"
	"syscall"
)

// isSharingViolation approximates the Windows sharing violation with the
// busy errnos Unix reports for files held open exclusively.
func isSharingViolation(err error) bool {
	return errors.Is(err, syscall.EBUSY) || errors.Is(err, syscall.ETXTBSY)
}
