package cycles

import "errors"

var (
	ErrCycleNotFound     = errors.New("feedback cycle not found")
	ErrInvalidTransition = errors.New("cycle status transition not allowed")
	ErrInvalidCycleType  = errors.New("unknown cycle type")
)
