package models

import "time"

// Coordinates is a geocoded WGS 84 point. A listing is never persisted
// without one; there is no zero/sentinel value once stored.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Listing is an owner's published vehicle offering. Append-only: the core
// never updates or deletes listings.
type Listing struct {
	ID              string      `json:"id"`
	VehicleName     string      `json:"vehicle_name"`
	VehiclePhoto    string      `json:"vehicle_photo,omitempty"`
	SeatingCapacity int64       `json:"seating_capacity"`
	ElectricRange   int64       `json:"electric_range"`
	TotalRange      int64       `json:"total_range"`
	LicensePlate    string      `json:"license_plate"`
	Coordinates     Coordinates `json:"coordinates"`
	RentalPrice     string      `json:"rental_price"`
	Owner           string      `json:"owner"`
	OwnerPhoto      string      `json:"owner_photo,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ListingDraft is the pre-submission form state. Kept in the draft store so
// a failed submission can be retried without re-entering data.
type ListingDraft struct {
	VehicleName     string `json:"vehicle_name"`
	VehiclePhoto    string `json:"vehicle_photo,omitempty"`
	SeatingCapacity int64  `json:"seating_capacity"`
	ElectricRange   int64  `json:"electric_range"`
	TotalRange      int64  `json:"total_range"`
	LicensePlate    string `json:"license_plate"`
	PickupAddress   string `json:"pickup_address"`
	RentalPrice     string `json:"rental_price"`
}
