package shellbridge

import (
	"errors"
	"fmt"
)

// Sentinel for the shell-evaluation error category.
var ErrEvaluation = errors.New("shell evaluation error")

// EvaluationError names the recipe path and underlying parse/interpreter
// failure.
type EvaluationError struct {
	Path  string
	Cause error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("shell evaluation error: %s: %v", e.Path, e.Cause)
}

func (e *EvaluationError) Unwrap() []error {
	return []error{ErrEvaluation, e.Cause}
}

// SideEffectError is raised when the recipe attempts to run an external
// command during parse-phase evaluation, which is never allowed.
type SideEffectError struct {
	Command string
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("shell evaluation error: recipe attempted to run external command %q at parse time", e.Command)
}

func (e *SideEffectError) Unwrap() error {
	return ErrEvaluation
}
