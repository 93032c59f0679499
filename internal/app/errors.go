package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrMismatch signals that at least one case contradicted its expected
	// verdict. The command exits with status 2.
	ErrMismatch = errors.New("expectation mismatch")

	// ErrUsage indicates an invalid combination of options.
	ErrUsage = errors.New("usage error")

	// ErrNothingToWatch indicates watch mode was requested for the
	// built-in battery, which has no files on disk.
	ErrNothingToWatch = errors.New("nothing to watch")
)

// InitError represents an error during application initialization.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("failed to initialize %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// usageError wraps a message so it matches ErrUsage.
func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}
