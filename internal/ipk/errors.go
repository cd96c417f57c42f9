package ipk

import (
	"errors"
	"fmt"
)

// ErrArchiveWrite is the sentinel every error in this package wraps,
// naming the member being written when the failure hit.
var ErrArchiveWrite = errors.New("ipk archive write error")

// WriteError names the archive member whose I/O failed.
type WriteError struct {
	Member string
	Cause  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("ipk: writing member %q: %v", e.Member, e.Cause)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrArchiveWrite, e.Cause}
}
