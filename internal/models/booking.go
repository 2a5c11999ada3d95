package models

import "time"

// Booking is a renter's request to rent a listed vehicle on a date.
// Vehicle name, license plate and rental price are denormalized from the
// Listing at creation time and never re-synced afterwards.
type Booking struct {
	ID               string    `json:"id"`
	VehicleName      string    `json:"vehicle_name"`
	LicensePlate     string    `json:"license_plate"`
	RentalPrice      string    `json:"rental_price"`
	Renter           string    `json:"renter"`
	RenterPhoto      string    `json:"renter_photo,omitempty"`
	BookingDate      string    `json:"booking_date"`
	Owner            string    `json:"owner"`
	Status           string    `json:"status"` // Pending, Approved, Declined
	ConfirmationCode string    `json:"confirmation_code,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Version          int64     `json:"version"`
}

// IsResolved reports whether the booking reached a terminal status.
func (b *Booking) IsResolved() bool {
	return b.Status == StatusApproved || b.Status == StatusDeclined
}
