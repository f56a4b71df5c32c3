package shared

import "errors"

var (
	// ErrConflict indicates a state transition the current state forbids.
	ErrConflict = errors.New("conflict")
)
