package script

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when execution outlives its context.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrBadResult is returned when a generator returns something other
	// than a list of inputs.
	ErrBadResult = errors.New("generator result is not a list of inputs")
)

// ResultError describes the first unusable element of a generator result.
type ResultError struct {
	// Index is the 1-based Lua index of the element.
	Index int
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ResultError) Error() string {
	return fmt.Sprintf("generator result [%d]: %s", e.Index, e.Message)
}

// Is reports whether target is ErrBadResult.
func (e *ResultError) Is(target error) bool {
	return target == ErrBadResult
}
