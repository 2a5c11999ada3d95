package domain

import (
	"context"
	"time"

	"driveshare/internal/models"
)

type Repository interface {
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	GetOwnerListings(ctx context.Context, owner string) ([]models.Listing, error)
	GetAllListings(ctx context.Context) ([]models.Listing, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetOwnerBookings(ctx context.Context, owner string) ([]models.Booking, error)
	ApproveBookingWithVersion(ctx context.Context, id string, version int64, owner, confirmationCode string) error
	DeclineBookingWithVersion(ctx context.Context, id string, version int64, owner string) error
}

type DraftRepository interface {
	GetDraft(ctx context.Context, owner string) (*models.ListingDraft, error)
	SetDraft(ctx context.Context, owner string, draft *models.ListingDraft) error
	ClearDraft(ctx context.Context, owner string) error
	CheckRateLimit(ctx context.Context, owner string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type LedgerWriter interface {
	AppendBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID, status, confirmationCode string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, booking *models.Booking) error
}

type ListingService interface {
	Submit(ctx context.Context, draft *models.ListingDraft) (*models.Listing, error)
	OwnerListings(ctx context.Context) ([]models.Listing, error)
	AllListings(ctx context.Context) ([]models.Listing, error)
	SaveDraft(ctx context.Context, draft *models.ListingDraft) error
	Draft(ctx context.Context) (*models.ListingDraft, error)
}

type BookingService interface {
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	Approve(ctx context.Context, bookingID string, version int64) (*models.Booking, error)
	Decline(ctx context.Context, bookingID string, version int64) (*models.Booking, error)
	OwnerBookings(ctx context.Context) ([]models.Booking, error)
	Get(ctx context.Context, bookingID string) (*models.Booking, error)
}
