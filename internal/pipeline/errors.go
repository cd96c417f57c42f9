package pipeline

import (
	"errors"
	"fmt"
)

// ErrPipeline is the sentinel every error in this package wraps.
var ErrPipeline = errors.New("pipeline error")

// PhaseError names the architecture and phase in which a build failed.
// A phase failure aborts the pipeline for its architecture only.
type PhaseError struct {
	Arch  string
	Phase string
	Cause error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Arch, e.Phase, e.Cause)
}

func (e *PhaseError) Unwrap() []error {
	return []error{ErrPipeline, e.Cause}
}
