package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"driveshare/internal/config"
	"driveshare/internal/events"
	"driveshare/internal/geocode"
	"driveshare/internal/identity"
	"driveshare/internal/models"
	"driveshare/internal/profile"
	"driveshare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	coords models.Coordinates
	err    error
	calls  int
}

func (r *stubResolver) Resolve(ctx context.Context, address string) (models.Coordinates, error) {
	r.calls++
	if r.err != nil {
		return models.Coordinates{}, r.err
	}
	return r.coords, nil
}

func newListingFixture(t *testing.T, repo *mockRepo, resolver *stubResolver) (*ListingService, *repository.MemoryDraftRepository) {
	drafts := repository.NewMemoryDraftRepository(time.Hour)
	profiles := profile.NewStaticDirectory([]config.OwnerProfile{
		{Email: "owner1@gmail.com", Photo: "https://cdn.example.com/owner1.png"},
	})
	svc := NewListingService(repo, drafts, resolver, profiles, events.NewEventBus(), testLogger())
	return svc, drafts
}

func sampleDraft() *models.ListingDraft {
	return &models.ListingDraft{
		VehicleName:     "Audi A4 Premium",
		VehiclePhoto:    "https://cdn.example.com/a4.jpg",
		SeatingCapacity: 5,
		TotalRange:      600,
		LicensePlate:    "BLHT281",
		PickupAddress:   "1 Infinite Loop, Cupertino",
		RentalPrice:     "250",
	}
}

func TestSubmitPublishesListing(t *testing.T) {
	repo := new(mockRepo)
	resolver := &stubResolver{coords: models.Coordinates{Lat: 37.33, Lng: -122.03}}
	svc, drafts := newListingFixture(t, repo, resolver)

	repo.On("CreateListing", mock.Anything, mock.AnythingOfType("*models.Listing")).Return(nil).Once()

	ctx := identity.WithUser(context.Background(), "owner1@gmail.com")
	listing, err := svc.Submit(ctx, sampleDraft())
	require.NoError(t, err)

	assert.Equal(t, "owner1@gmail.com", listing.Owner)
	assert.Equal(t, "https://cdn.example.com/owner1.png", listing.OwnerPhoto)
	assert.Equal(t, 37.33, listing.Coordinates.Lat)
	assert.Equal(t, -122.03, listing.Coordinates.Lng)
	assert.Equal(t, "Audi A4 Premium", listing.VehicleName)

	// Draft is cleared once the listing is in the store
	draft, err := drafts.GetDraft(ctx, "owner1@gmail.com")
	require.NoError(t, err)
	assert.Nil(t, draft)
	repo.AssertExpectations(t)
}

func TestSubmitUnauthenticated(t *testing.T) {
	svc, _ := newListingFixture(t, new(mockRepo), &stubResolver{})

	_, err := svc.Submit(context.Background(), sampleDraft())
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestSubmitEmptyAddress(t *testing.T) {
	repo := new(mockRepo)
	resolver := &stubResolver{}
	svc, drafts := newListingFixture(t, repo, resolver)

	ctx := identity.WithUser(context.Background(), "owner1@gmail.com")
	draft := sampleDraft()
	draft.PickupAddress = "   "

	_, err := svc.Submit(ctx, draft)
	assert.ErrorIs(t, err, ErrEmptyAddress)
	assert.Zero(t, resolver.calls, "no geocoding request for an empty address")

	// Draft survives the failed submission
	saved, err := drafts.GetDraft(ctx, "owner1@gmail.com")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Audi A4 Premium", saved.VehicleName)
	repo.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything)
}

func TestSubmitGeocodeNoMatch(t *testing.T) {
	repo := new(mockRepo)
	resolver := &stubResolver{err: geocode.ErrNoMatch}
	svc, drafts := newListingFixture(t, repo, resolver)

	ctx := identity.WithUser(context.Background(), "owner1@gmail.com")
	_, err := svc.Submit(ctx, sampleDraft())
	assert.ErrorIs(t, err, geocode.ErrNoMatch)

	saved, _ := drafts.GetDraft(ctx, "owner1@gmail.com")
	assert.NotNil(t, saved)
	repo.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything)
}

func TestSubmitGeocodeUnavailable(t *testing.T) {
	repo := new(mockRepo)
	resolver := &stubResolver{err: geocode.ErrUnavailable}
	svc, _ := newListingFixture(t, repo, resolver)

	ctx := identity.WithUser(context.Background(), "owner1@gmail.com")
	_, err := svc.Submit(ctx, sampleDraft())
	assert.ErrorIs(t, err, geocode.ErrUnavailable)
	repo.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything)
}

func TestSubmitPersistFailurePreservesDraft(t *testing.T) {
	repo := new(mockRepo)
	resolver := &stubResolver{coords: models.Coordinates{Lat: 1, Lng: 2}}
	svc, drafts := newListingFixture(t, repo, resolver)

	repo.On("CreateListing", mock.Anything, mock.AnythingOfType("*models.Listing")).
		Return(errors.New("disk full")).Once()

	ctx := identity.WithUser(context.Background(), "owner1@gmail.com")
	_, err := svc.Submit(ctx, sampleDraft())
	assert.Error(t, err)

	saved, _ := drafts.GetDraft(ctx, "owner1@gmail.com")
	assert.NotNil(t, saved)
}

func TestSubmitUnknownOwnerGetsNoPhoto(t *testing.T) {
	repo := new(mockRepo)
	resolver := &stubResolver{coords: models.Coordinates{Lat: 1, Lng: 2}}
	svc, _ := newListingFixture(t, repo, resolver)

	repo.On("CreateListing", mock.Anything, mock.AnythingOfType("*models.Listing")).Return(nil).Once()

	ctx := identity.WithUser(context.Background(), "owner9@gmail.com")
	listing, err := svc.Submit(ctx, sampleDraft())
	require.NoError(t, err)
	assert.Empty(t, listing.OwnerPhoto)
}

func TestSaveAndLoadDraft(t *testing.T) {
	svc, _ := newListingFixture(t, new(mockRepo), &stubResolver{})

	ctx := identity.WithUser(context.Background(), "owner1@gmail.com")
	require.NoError(t, svc.SaveDraft(ctx, sampleDraft()))

	draft, err := svc.Draft(ctx)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "Audi A4 Premium", draft.VehicleName)

	_, err = svc.Draft(context.Background())
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestOwnerListings(t *testing.T) {
	repo := new(mockRepo)
	svc, _ := newListingFixture(t, repo, &stubResolver{})

	repo.On("GetOwnerListings", mock.Anything, "owner1@gmail.com").
		Return([]models.Listing{{ID: "l1", Owner: "owner1@gmail.com"}}, nil).Once()

	ctx := identity.WithUser(context.Background(), "owner1@gmail.com")
	listings, err := svc.OwnerListings(ctx)
	require.NoError(t, err)
	assert.Len(t, listings, 1)

	_, err = svc.OwnerListings(context.Background())
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}

func TestSubmitRateLimited(t *testing.T) {
	repo := new(mockRepo)
	resolver := &stubResolver{coords: models.Coordinates{Lat: 52.37, Lng: 4.89}}
	svc, _ := newListingFixture(t, repo, resolver)

	repo.On("CreateListing", mock.Anything, mock.Anything).Return(nil)

	ctx := identity.WithUser(context.Background(), "owner1@gmail.com")
	for i := 0; i < submitRateLimit; i++ {
		_, err := svc.Submit(ctx, sampleDraft())
		require.NoError(t, err)
	}

	_, err := svc.Submit(ctx, sampleDraft())
	assert.ErrorIs(t, err, ErrRateLimited)

	// Another owner is unaffected
	otherCtx := identity.WithUser(context.Background(), "owner2@gmail.com")
	_, err = svc.Submit(otherCtx, sampleDraft())
	require.NoError(t, err)
}
