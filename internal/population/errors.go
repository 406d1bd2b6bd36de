package population

import (
	"errors"
	"fmt"
)

// Domain errors for population operations.
var (
	// ErrInvalidInput indicates a parameter outside its valid range.
	ErrInvalidInput = errors.New("population: invalid input")

	// ErrResourceExhausted indicates a population would grow past what can
	// be represented or past the configured cell limit.
	ErrResourceExhausted = errors.New("population: resource exhausted")
)

// StepError wraps a failure inside a generation step with the well and
// stage it happened in.
type StepError struct {
	Well    int
	Stage   string
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("well %d: %s: %v", e.Well, e.Stage, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func exhausted(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrResourceExhausted, fmt.Sprintf(format, args...))
}
