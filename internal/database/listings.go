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

// CreateListing persists a new listing under a store-generated id.
// Coordinates are required columns; the caller must never pass a listing
// that skipped geocoding.
func (db *DB) CreateListing(ctx context.Context, listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}

	query := `INSERT INTO listings (
				id, vehicle_name, vehicle_photo, seating_capacity, electric_range,
				total_range, license_plate, lat, lng, rental_price, owner,
				owner_photo, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		listing.ID,
		listing.VehicleName,
		listing.VehiclePhoto,
		listing.SeatingCapacity,
		listing.ElectricRange,
		listing.TotalRange,
		listing.LicensePlate,
		listing.Coordinates.Lat,
		listing.Coordinates.Lng,
		listing.RentalPrice,
		listing.Owner,
		listing.OwnerPhoto,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	listing.CreatedAt = now
	listing.UpdatedAt = now
	return nil
}

func (db *DB) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT id, vehicle_name, vehicle_photo, seating_capacity, electric_range,
	                 total_range, license_plate, lat, lng, rental_price, owner,
	                 owner_photo, created_at, updated_at
              FROM listings WHERE id = ?`

	var l models.Listing
	err := db.QueryRowContext(ctx, query, id).Scan(
		&l.ID, &l.VehicleName, &l.VehiclePhoto, &l.SeatingCapacity, &l.ElectricRange,
		&l.TotalRange, &l.LicensePlate, &l.Coordinates.Lat, &l.Coordinates.Lng,
		&l.RentalPrice, &l.Owner, &l.OwnerPhoto, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &l, nil
}

// GetOwnerListings returns listings scoped to a single owner, store-default
// order.
func (db *DB) GetOwnerListings(ctx context.Context, owner string) ([]models.Listing, error) {
	query := `SELECT id, vehicle_name, vehicle_photo, seating_capacity, electric_range,
	                 total_range, license_plate, lat, lng, rental_price, owner,
	                 owner_photo, created_at, updated_at
              FROM listings WHERE owner = ?`
	return db.queryListings(ctx, query, owner)
}

// GetAllListings returns every listing, used by the renter-side browse.
func (db *DB) GetAllListings(ctx context.Context) ([]models.Listing, error) {
	query := `SELECT id, vehicle_name, vehicle_photo, seating_capacity, electric_range,
	                 total_range, license_plate, lat, lng, rental_price, owner,
	                 owner_photo, created_at, updated_at
              FROM listings`
	return db.queryListings(ctx, query)
}

func (db *DB) queryListings(ctx context.Context, query string, args ...any) ([]models.Listing, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		err := rows.Scan(
			&l.ID, &l.VehicleName, &l.VehiclePhoto, &l.SeatingCapacity, &l.ElectricRange,
			&l.TotalRange, &l.LicensePlate, &l.Coordinates.Lat, &l.Coordinates.Lng,
			&l.RentalPrice, &l.Owner, &l.OwnerPhoto, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}
