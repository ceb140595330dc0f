package env

import "errors"

// Construction-time errors. Step never returns errors: an invalid action is
// absorbed into a terminal transition.
var (
	ErrInvalidConfig     = errors.New("invalid environment configuration")
	ErrMalformedInstance = errors.New("malformed instance data")
)
