package errors

import "errors"

var (
	ErrPassNotFound = errors.New("pass not found")

	ErrBookingNotFound = errors.New("pass booking not found")

	ErrInvalidID = errors.New("invalid ID format")
)
