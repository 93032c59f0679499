package automaton

import (
	"errors"
	"fmt"
)

// Errors returned while loading or simulating automata.
var (
	// ErrMissingSection indicates a required [Section] ... [End] block is absent.
	ErrMissingSection = errors.New("missing section")

	// ErrMalformedTransition indicates a transition record has the wrong shape.
	ErrMalformedTransition = errors.New("malformed transition")

	// ErrInvalidDefinition indicates a definition violates a structural invariant.
	ErrInvalidDefinition = errors.New("invalid definition")

	// ErrUnknownKind indicates the machine kind could not be determined.
	ErrUnknownKind = errors.New("unknown machine kind")

	// ErrStepLimit indicates a simulation ran past its step ceiling.
	ErrStepLimit = errors.New("step limit exceeded")

	// ErrResourceExhausted indicates a search explored too many configurations.
	ErrResourceExhausted = errors.New("configuration limit exceeded")
)

// MissingSectionError reports a section that a definition requires but lacks.
type MissingSectionError struct {
	// Section is the section name without brackets.
	Section string
	// Unterminated is set when the header exists but no [End] follows it.
	Unterminated bool
}

// Error implements the error interface.
func (e *MissingSectionError) Error() string {
	if e.Unterminated {
		return fmt.Sprintf("section [%s] has no closing [End]", e.Section)
	}
	return fmt.Sprintf("missing section [%s]", e.Section)
}

// Is implements error matching for MissingSectionError.
func (e *MissingSectionError) Is(target error) bool {
	return target == ErrMissingSection
}

// MalformedTransitionError reports a transition record that does not split
// into the field count its machine kind expects.
type MalformedTransitionError struct {
	// Kind is the machine kind being loaded.
	Kind Kind
	// Line is the 1-based index of the record within [Transitions].
	Line int
	// Text is the raw record.
	Text string
	// Message describes what was wrong.
	Message string
}

// Error implements the error interface.
func (e *MalformedTransitionError) Error() string {
	return fmt.Sprintf("%s transition %d %q: %s", e.Kind, e.Line, e.Text, e.Message)
}

// Is implements error matching for MalformedTransitionError.
func (e *MalformedTransitionError) Is(target error) bool {
	return target == ErrMalformedTransition
}

// ValidationError describes a definition that breaks an invariant.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Message)
}

// Is implements error matching for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDefinition
}

// LimitError is returned when a simulation is aborted by a resource ceiling.
// The verdict for such a run is unknown, not a rejection.
type LimitError struct {
	// Kind is the machine kind that was running.
	Kind Kind
	// Limit is the ceiling that was hit.
	Limit int
	// Configurations is set for search limits, false for step limits.
	Configurations bool
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	if e.Configurations {
		return fmt.Sprintf("%s: explored more than %d configurations", e.Kind, e.Limit)
	}
	return fmt.Sprintf("%s: ran more than %d steps", e.Kind, e.Limit)
}

// Is implements error matching for LimitError.
func (e *LimitError) Is(target error) bool {
	if e.Configurations {
		return target == ErrResourceExhausted
	}
	return target == ErrStepLimit
}
