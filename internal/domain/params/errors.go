package params

import "errors"

var (
	ErrUnknownKey   = errors.New("unknown parameter")
	ErrInvalidValue = errors.New("invalid parameter value")
)
