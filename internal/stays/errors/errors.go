package errors

import "errors"

var (
	ErrResourceNotFound = errors.New("resource not found")

	ErrReservationNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid ID format")
)
