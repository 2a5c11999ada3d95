package catalog

import (
	"fmt"
	"strings"

	"driveshare/internal/models"
)

// Search filters entries by a case-insensitive substring match on the
// make. An empty or whitespace-only term returns the full slice. The
// input slice is never mutated, so repeated searches over the same
// catalog are independent.
func Search(entries []models.VehicleCatalogEntry, term string) []models.VehicleCatalogEntry {
	term = strings.TrimSpace(term)
	if term == "" {
		return entries
	}

	needle := strings.ToLower(term)
	var matched []models.VehicleCatalogEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Make), needle) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Prefill copies a catalog entry's attributes into a listing draft,
// leaving the user-owned fields (plate, price, pickup address) alone.
func Prefill(draft *models.ListingDraft, entry models.VehicleCatalogEntry) {
	name := fmt.Sprintf("%s %s", entry.Make, entry.Model)
	if entry.Trim != "" {
		name = fmt.Sprintf("%s %s", name, entry.Trim)
	}
	draft.VehicleName = name
	draft.SeatingCapacity = entry.SeatsMin
	draft.ElectricRange = entry.ElectricRange
	draft.TotalRange = entry.TotalRange
	if len(entry.Images) > 0 {
		draft.VehiclePhoto = entry.Images[0].URLFull
	}
}
