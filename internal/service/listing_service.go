package service

import (
	"context"
	"strings"
	"time"

	"driveshare/internal/domain"
	"driveshare/internal/events"
	"driveshare/internal/geocode"
	"driveshare/internal/identity"
	"driveshare/internal/models"
	"driveshare/internal/profile"

	"github.com/rs/zerolog"
)

const (
	submitRateLimit  = 10
	submitRateWindow = time.Minute
)

// ListingService runs the listing submission pipeline: authenticate,
// validate, geocode, persist. The store is only written after every
// earlier step has succeeded, so a failed submission leaves no partial
// listing behind and the caller's draft survives for a retry.
type ListingService struct {
	repo     domain.Repository
	drafts   domain.DraftRepository
	resolver geocode.Resolver
	profiles profile.Directory
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewListingService(
	repo domain.Repository,
	drafts domain.DraftRepository,
	resolver geocode.Resolver,
	profiles profile.Directory,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *ListingService {
	return &ListingService{
		repo:     repo,
		drafts:   drafts,
		resolver: resolver,
		profiles: profiles,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *ListingService) Submit(ctx context.Context, draft *models.ListingDraft) (*models.Listing, error) {
	owner, ok := identity.UserFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	if err := s.checkRateLimit(ctx, owner); err != nil {
		return nil, err
	}

	// Persist the draft up front so any failure below leaves it
	// retrievable for a retry.
	s.saveDraft(ctx, owner, draft)

	address := strings.TrimSpace(draft.PickupAddress)
	if address == "" {
		return nil, ErrEmptyAddress
	}

	coords, err := s.resolver.Resolve(ctx, address)
	if err != nil {
		s.logger.Warn().Err(err).Str("owner", owner).Msg("listing submission failed at geocoding")
		return nil, err
	}

	listing := &models.Listing{
		VehicleName:     draft.VehicleName,
		VehiclePhoto:    draft.VehiclePhoto,
		SeatingCapacity: draft.SeatingCapacity,
		ElectricRange:   draft.ElectricRange,
		TotalRange:      draft.TotalRange,
		LicensePlate:    draft.LicensePlate,
		Coordinates:     coords,
		RentalPrice:     draft.RentalPrice,
		Owner:           owner,
		OwnerPhoto:      s.profiles.PhotoFor(owner),
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("listing submission failed at persistence")
		return nil, err
	}

	s.publishCreated(listing)
	s.clearDraft(ctx, owner)

	s.logger.Info().Str("listing_id", listing.ID).Str("owner", owner).Msg("listing published")
	return listing, nil
}

func (s *ListingService) OwnerListings(ctx context.Context) ([]models.Listing, error) {
	owner, ok := identity.UserFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}
	return s.repo.GetOwnerListings(ctx, owner)
}

func (s *ListingService) AllListings(ctx context.Context) ([]models.Listing, error) {
	return s.repo.GetAllListings(ctx)
}

func (s *ListingService) SaveDraft(ctx context.Context, draft *models.ListingDraft) error {
	owner, ok := identity.UserFromContext(ctx)
	if !ok {
		return identity.ErrUnauthenticated
	}
	return s.drafts.SetDraft(ctx, owner, draft)
}

func (s *ListingService) Draft(ctx context.Context) (*models.ListingDraft, error) {
	owner, ok := identity.UserFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}
	return s.drafts.GetDraft(ctx, owner)
}

// checkRateLimit caps how often a single owner may submit. A draft
// store failure does not block submission.
func (s *ListingService) checkRateLimit(ctx context.Context, owner string) error {
	if s.drafts == nil {
		return nil
	}
	allowed, err := s.drafts.CheckRateLimit(ctx, owner, submitRateLimit, submitRateWindow)
	if err != nil {
		s.logger.Warn().Err(err).Str("owner", owner).Msg("rate limit check error")
		return nil
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}

func (s *ListingService) saveDraft(ctx context.Context, owner string, draft *models.ListingDraft) {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.SetDraft(ctx, owner, draft); err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("draft save error")
	}
}

func (s *ListingService) clearDraft(ctx context.Context, owner string) {
	if s.drafts == nil {
		return
	}
	if err := s.drafts.ClearDraft(ctx, owner); err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("draft clear error")
	}
}

func (s *ListingService) publishCreated(listing *models.Listing) {
	if s.eventBus == nil {
		return
	}

	payload := events.ListingEventPayload{
		ListingID:   listing.ID,
		Owner:       listing.Owner,
		VehicleName: listing.VehicleName,
	}
	if err := s.eventBus.PublishJSON(events.EventListingCreated, payload); err != nil {
		s.logger.Error().Err(err).Str("listing_id", listing.ID).Msg("publish event error")
	}
}
