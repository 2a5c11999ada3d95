package database

import (
	"context"
	"testing"

	"driveshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetListing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	listing := &models.Listing{
		VehicleName:     "Audi A4 Premium",
		VehiclePhoto:    "https://example.com/a4.jpg",
		SeatingCapacity: 5,
		ElectricRange:   40,
		TotalRange:      600,
		LicensePlate:    "BLHT281",
		Coordinates:     models.Coordinates{Lat: 37.33, Lng: -122.03},
		RentalPrice:     "250",
		Owner:           "owner1@gmail.com",
		OwnerPhoto:      "https://example.com/owner1.png",
	}

	err := db.CreateListing(ctx, listing)
	require.NoError(t, err)
	require.NotEmpty(t, listing.ID)

	got, err := db.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.VehicleName, got.VehicleName)
	assert.Equal(t, 37.33, got.Coordinates.Lat)
	assert.Equal(t, -122.03, got.Coordinates.Lng)
	assert.Equal(t, "owner1@gmail.com", got.Owner)
}

func TestGetListingNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetListing(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestGetOwnerListings(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	owners := []string{"owner1@gmail.com", "owner2@gmail.com", "owner1@gmail.com"}
	for _, owner := range owners {
		listing := &models.Listing{
			VehicleName: "BMW X5",
			Coordinates: models.Coordinates{Lat: 43.65, Lng: -79.38},
			Owner:       owner,
		}
		require.NoError(t, db.CreateListing(ctx, listing))
	}

	mine, err := db.GetOwnerListings(ctx, "owner1@gmail.com")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := db.GetAllListings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
