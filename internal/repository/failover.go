package repository

import (
	"context"
	"sync/atomic"
	"time"

	"driveshare/internal/domain"
	"driveshare/internal/models"

	"github.com/rs/zerolog"
)

type FailoverDraftRepository struct {
	primary   domain.DraftRepository
	fallback  domain.DraftRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverDraftRepository(primary, fallback domain.DraftRepository, logger *zerolog.Logger) *FailoverDraftRepository {
	return &FailoverDraftRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverDraftRepository) GetDraft(ctx context.Context, owner string) (*models.ListingDraft, error) {
	if !r.isDown.Load() {
		draft, err := r.primary.GetDraft(ctx, owner)
		if err == nil {
			return draft, nil
		}
		r.logger.Error().Err(err).Msg("Primary draft repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		draft, err := r.primary.GetDraft(ctx, owner)
		if err == nil {
			r.isDown.Store(false)
			return draft, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.GetDraft(ctx, owner)
}

func (r *FailoverDraftRepository) SetDraft(ctx context.Context, owner string, draft *models.ListingDraft) error {
	if !r.isDown.Load() {
		err := r.primary.SetDraft(ctx, owner, draft)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary draft repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.SetDraft(ctx, owner, draft)
}

func (r *FailoverDraftRepository) ClearDraft(ctx context.Context, owner string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearDraft(ctx, owner)
		if err == nil {
			return nil
		}
		r.logger.Error().Err(err).Msg("Primary draft repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.ClearDraft(ctx, owner)
}

func (r *FailoverDraftRepository) CheckRateLimit(ctx context.Context, owner string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, owner, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("Primary draft repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	return r.fallback.CheckRateLimit(ctx, owner, limit, window)
}
