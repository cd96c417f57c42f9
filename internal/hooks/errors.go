package hooks

import (
	"errors"
	"fmt"
)

// ErrHook is the sentinel every [HookError] wraps.
var ErrHook = errors.New("hook error")

// HookError names the event and module whose handler failed.
type HookError struct {
	Event  Event
	Module string
	Cause  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %q (event %s): %v", e.Module, e.Event, e.Cause)
}

func (e *HookError) Unwrap() []error {
	return []error{ErrHook, e.Cause}
}
