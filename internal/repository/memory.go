package repository

import (
	"context"
	"sync"
	"time"

	"driveshare/internal/models"
)

type MemoryDraftRepository struct {
	drafts     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemoryDraftRepository(ttl time.Duration) *MemoryDraftRepository {
	return &MemoryDraftRepository{
		ttl: ttl,
	}
}

func (r *MemoryDraftRepository) GetDraft(ctx context.Context, owner string) (*models.ListingDraft, error) {
	val, ok := r.drafts.Load(owner)
	if !ok {
		return nil, nil
	}
	return val.(*models.ListingDraft), nil
}

func (r *MemoryDraftRepository) SetDraft(ctx context.Context, owner string, draft *models.ListingDraft) error {
	r.drafts.Store(owner, draft)
	return nil
}

func (r *MemoryDraftRepository) ClearDraft(ctx context.Context, owner string) error {
	r.drafts.Delete(owner)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryDraftRepository) CheckRateLimit(ctx context.Context, owner string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(owner)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(owner, entry)
	return entry.count <= limit, nil
}
