package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"driveshare/internal/models"

	"github.com/google/uuid"
)

// CreateBooking persists a renter's booking request with status Pending.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}

	query := `INSERT INTO bookings (
				id, vehicle_name, license_plate, rental_price, renter, renter_photo,
				booking_date, owner, status, confirmation_code, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		booking.ID,
		booking.VehicleName,
		booking.LicensePlate,
		booking.RentalPrice,
		booking.Renter,
		booking.RenterPhoto,
		booking.BookingDate,
		booking.Owner,
		booking.Status,
		booking.ConfirmationCode,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT id, vehicle_name, license_plate, rental_price, renter, renter_photo,
	                 booking_date, owner, status, confirmation_code, created_at,
					 updated_at, version
              FROM bookings WHERE id = ?`

	var b models.Booking
	err := db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.VehicleName, &b.LicensePlate, &b.RentalPrice, &b.Renter,
		&b.RenterPhoto, &b.BookingDate, &b.Owner, &b.Status, &b.ConfirmationCode,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// GetOwnerBookings returns the complete current set of bookings whose owner
// field equals the given identity, store-default order. Positional
// stability across calls is not guaranteed.
func (db *DB) GetOwnerBookings(ctx context.Context, owner string) ([]models.Booking, error) {
	query := `SELECT id, vehicle_name, license_plate, rental_price, renter, renter_photo,
	                 booking_date, owner, status, confirmation_code, created_at,
					 updated_at, version
              FROM bookings WHERE owner = ?`

	rows, err := db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		err := rows.Scan(
			&b.ID, &b.VehicleName, &b.LicensePlate, &b.RentalPrice, &b.Renter,
			&b.RenterPhoto, &b.BookingDate, &b.Owner, &b.Status, &b.ConfirmationCode,
			&b.CreatedAt, &b.UpdatedAt, &b.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ApproveBookingWithVersion transitions a booking to Approved and attaches
// the confirmation code in a single write. Status and code land atomically,
// so Approved-without-code is never observable. The owner guard keeps the
// update within the caller's scope; the version guard rejects stale writers.
func (db *DB) ApproveBookingWithVersion(ctx context.Context, id string, fromVersion int64, owner, code string) error {
	query := `UPDATE bookings
              SET status = ?, confirmation_code = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND owner = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, models.StatusApproved, code, time.Now(), id, owner, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to approve booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// DeclineBookingWithVersion transitions a booking to Declined. A decline
// never carries a confirmation code; any stray code is cleared in the same
// write.
func (db *DB) DeclineBookingWithVersion(ctx context.Context, id string, fromVersion int64, owner string) error {
	query := `UPDATE bookings
              SET status = ?, confirmation_code = '', version = version + 1, updated_at = ?
              WHERE id = ? AND owner = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, models.StatusDeclined, time.Now(), id, owner, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to decline booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}
