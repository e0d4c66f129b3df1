package cleaner

import (
	"fmt"
	"os"
)

// Failure reasons recorded in CleanResult.FailedFiles. The fixed strings
// are part of the result contract; platform detail only ever rides on the
// "other" form.
const (
	ReasonNotFound         = "not-found"
	ReasonNotAllowlisted   = "not-in-allowlist"
	ReasonInUse            = "in-use"
	ReasonPermissionDenied = "permission-denied"
)

// otherReason wraps an unexpected platform error into the open-ended
// reason form.
func otherReason(err error) string {
	return fmt.Sprintf("other: %v", err)
}

// categorizeDeleteError maps a deletion failure onto the reason taxonomy.
func categorizeDeleteError(err error) string {
	switch {
	case os.IsNotExist(err):
		return ReasonNotFound
	case os.IsPermission(err):
		return ReasonPermissionDenied
	case isSharingViolation(err):
		return ReasonInUse
	default:
		return otherReason(err)
	}
}
