package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates a NaN or Inf in particle positions or velocities.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrNotInitialized indicates a Driver that was not built with New.
	ErrNotInitialized = errors.New("sim: driver not initialized")
)

// SimError wraps an error with the frame it occurred at.
type SimError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
