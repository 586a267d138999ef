package costing

import "errors"

var (
	ErrInvalidPeriod    = errors.New("expense period is not a supported period")
	ErrZeroWorkingHours = errors.New("weekly working hours must be greater than zero")
	ErrZeroMileage      = errors.New("vehicle annual kilometers must be greater than zero")
	ErrZeroEfficiency   = errors.New("vehicle fuel efficiency must be greater than zero")
	ErrZeroUsefulLife   = errors.New("instrument useful life must be greater than zero")
	ErrUnknownFuel      = errors.New("unknown fuel type")
	ErrNoCompany        = errors.New("job has no owning company")
	ErrNegativeQuantity = errors.New("assignment quantity must not be negative")
)
