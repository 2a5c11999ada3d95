package geocode

import (
	"context"
	"errors"

	"driveshare/internal/models"
)

var (
	// ErrNoMatch means the provider answered but produced no candidates
	// for the address.
	ErrNoMatch = errors.New("no coordinates found for address")

	// ErrUnavailable means the provider could not be reached or returned
	// a malformed or non-success response.
	ErrUnavailable = errors.New("geocoding service unavailable")
)

// Resolver turns a free-form address into coordinates. When the provider
// returns several candidates the first one wins; the rest are discarded.
type Resolver interface {
	Resolve(ctx context.Context, address string) (models.Coordinates, error)
}
