package session

import "errors"

var (
	// ErrNoActiveProblem is returned when an operation needs a started problem
	ErrNoActiveProblem = errors.New("no active problem")
	// ErrInvalidIndex is returned when jumping to an index behind the current one or past the end
	ErrInvalidIndex = errors.New("invalid problem index")
)
