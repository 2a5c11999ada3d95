package service

import "errors"

var (
	// ErrEmptyAddress rejects a listing submission whose pickup address is
	// empty or whitespace. Checked before any geocoding request is made.
	ErrEmptyAddress = errors.New("pickup address is empty")

	// ErrAlreadyResolved means an approve or decline targeted a booking
	// that already reached a terminal state. Terminal states never change.
	ErrAlreadyResolved = errors.New("booking already resolved")

	// ErrNotBookingOwner means the caller tried to resolve a booking that
	// belongs to a different owner.
	ErrNotBookingOwner = errors.New("booking belongs to another owner")

	// ErrRateLimited means the caller exceeded the submission rate limit.
	ErrRateLimited = errors.New("too many submissions, try again later")
)
