package profile

import (
	"strings"

	"driveshare/internal/config"
)

// Directory maps an owner account to profile attributes that live outside
// the store, such as the avatar shown on that owner's listings.
type Directory interface {
	PhotoFor(email string) string
}

type staticDirectory struct {
	photos map[string]string
}

// NewStaticDirectory builds a Directory from the configured owner
// profiles. Lookup is case-insensitive on the email; unknown owners get
// an empty photo.
func NewStaticDirectory(owners []config.OwnerProfile) Directory {
	photos := make(map[string]string, len(owners))
	for _, o := range owners {
		photos[strings.ToLower(o.Email)] = o.Photo
	}
	return &staticDirectory{photos: photos}
}

func (d *staticDirectory) PhotoFor(email string) string {
	return d.photos[strings.ToLower(email)]
}
