package interval

import "errors"

var (
	// ErrInvalidInterval is returned when the input is not a pair of two
	// integer values.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrInvalidRange is returned when start is bigger then end.
	ErrInvalidRange = errors.New("invalid range")
)
