package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation indicates a client-supplied field failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidPeriod indicates an unknown summary period was requested.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidDate indicates a date parameter was not a YYYY-MM-DD date.
	ErrInvalidDate = errors.New("invalid date format")
	// ErrMalformedRecord indicates a device batch entry was missing a field
	// or carried an unparseable date. The whole batch is rejected.
	ErrMalformedRecord = errors.New("malformed device record")
)

func parseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a %s date", ErrInvalidDate, value, DateOnly)
	}
	return parsed, nil
}
