package service

import (
	"context"

	"driveshare/internal/domain"
	"driveshare/internal/events"
	"driveshare/internal/identity"
	"driveshare/internal/metrics"
	"driveshare/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the booking state machine. A booking starts
// Pending and resolves exactly once, to Approved or Declined; the
// confirmation code is written in the same store operation as the
// Approved status, so no reader can observe one without the other.
type BookingService struct {
	repo       domain.Repository
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	logger     *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:       repo,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		logger:     logger,
	}
}

// Create records a renter's booking request against a listing. The
// renter comes from the caller's identity, never from the payload.
func (s *BookingService) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	renter, ok := identity.UserFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	booking.Renter = renter
	booking.Status = models.StatusPending
	booking.ConfirmationCode = ""

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingCreated, booking)
	s.enqueueSync(ctx, "append", booking)
	metrics.IncBookingTransition(models.StatusPending)

	s.logger.Info().Str("booking_id", booking.ID).Str("renter", renter).Str("owner", booking.Owner).Msg("booking created")
	return booking, nil
}

// Approve moves a Pending booking to Approved and issues its
// confirmation code. version guards against a concurrent resolution; a
// zero version means "whatever I just read".
func (s *BookingService) Approve(ctx context.Context, bookingID string, version int64) (*models.Booking, error) {
	booking, owner, err := s.loadForResolution(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if version <= 0 {
		version = booking.Version
	}

	code, err := GenerateConfirmationCode()
	if err != nil {
		return nil, err
	}

	if err := s.repo.ApproveBookingWithVersion(ctx, bookingID, version, owner, code); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingApproved, updated)
	s.enqueueSync(ctx, "update_status", updated)
	metrics.IncBookingTransition(models.StatusApproved)

	s.logger.Info().Str("booking_id", bookingID).Str("owner", owner).Msg("booking approved")
	return updated, nil
}

// Decline moves a Pending booking to Declined. Declined bookings carry
// no confirmation code.
func (s *BookingService) Decline(ctx context.Context, bookingID string, version int64) (*models.Booking, error) {
	booking, owner, err := s.loadForResolution(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if version <= 0 {
		version = booking.Version
	}

	if err := s.repo.DeclineBookingWithVersion(ctx, bookingID, version, owner); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventBookingDeclined, updated)
	s.enqueueSync(ctx, "update_status", updated)
	metrics.IncBookingTransition(models.StatusDeclined)

	s.logger.Info().Str("booking_id", bookingID).Str("owner", owner).Msg("booking declined")
	return updated, nil
}

func (s *BookingService) OwnerBookings(ctx context.Context) ([]models.Booking, error) {
	owner, ok := identity.UserFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}
	return s.repo.GetOwnerBookings(ctx, owner)
}

func (s *BookingService) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	user, ok := identity.UserFromContext(ctx)
	if !ok {
		return nil, identity.ErrUnauthenticated
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Owner != user && booking.Renter != user {
		return nil, ErrNotBookingOwner
	}
	return booking, nil
}

// loadForResolution fetches the booking and verifies the caller may
// resolve it and that it is still Pending.
func (s *BookingService) loadForResolution(ctx context.Context, bookingID string) (*models.Booking, string, error) {
	owner, ok := identity.UserFromContext(ctx)
	if !ok {
		return nil, "", identity.ErrUnauthenticated
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if booking.Owner != owner {
		return nil, "", ErrNotBookingOwner
	}
	if booking.IsResolved() {
		return nil, "", ErrAlreadyResolved
	}
	return booking, owner, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:        booking.ID,
		Owner:            booking.Owner,
		Renter:           booking.Renter,
		VehicleName:      booking.VehicleName,
		LicensePlate:     booking.LicensePlate,
		Status:           booking.Status,
		BookingDate:      booking.BookingDate,
		ConfirmationCode: booking.ConfirmationCode,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, taskType string, booking *models.Booking) {
	if s.syncWorker == nil {
		return
	}

	if err := s.syncWorker.EnqueueTask(ctx, taskType, booking); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Str("task", taskType).Msg("ledger enqueue error")
	}
}
