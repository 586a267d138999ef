package exchange

import "errors"

var (
	ErrRateNotFound     = errors.New("exchange rate not found in page")
	ErrInvalidRate      = errors.New("invalid exchange rate")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)
