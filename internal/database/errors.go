package database

import "errors"

var (
	// ErrListingNotFound is returned when a listing id does not resolve.
	ErrListingNotFound = errors.New("listing not found")

	// ErrBookingNotFound is returned when a booking id does not resolve
	// within the caller's owner scope.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrConcurrentModification is returned when a conditional update
	// matched zero rows because the version moved underneath the caller.
	// The caller should reload and retry.
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)
