package interactions

import "errors"

var (
	ErrSelfInteraction = errors.New("interaction peer must differ from employee")
	ErrInvalidCount    = errors.New("interaction count must be positive")
	ErrUnknownType     = errors.New("unknown interaction type")
)
