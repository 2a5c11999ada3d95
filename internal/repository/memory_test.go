package repository

import (
	"context"
	"testing"
	"time"

	"driveshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDraftRepository(t *testing.T) {
	repo := NewMemoryDraftRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetDraft", func(t *testing.T) {
		draft := &models.ListingDraft{VehicleName: "Audi A4 Premium", PickupAddress: "1 Infinite Loop"}
		require.NoError(t, repo.SetDraft(ctx, "owner1@gmail.com", draft))

		got, err := repo.GetDraft(ctx, "owner1@gmail.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Audi A4 Premium", got.VehicleName)
	})

	t.Run("GetNonExistentDraft", func(t *testing.T) {
		got, err := repo.GetDraft(ctx, "nobody@gmail.com")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearDraft", func(t *testing.T) {
		require.NoError(t, repo.SetDraft(ctx, "owner2@gmail.com", &models.ListingDraft{}))
		require.NoError(t, repo.ClearDraft(ctx, "owner2@gmail.com"))

		got, _ := repo.GetDraft(ctx, "owner2@gmail.com")
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		owner := "owner3@gmail.com"

		allowed, err := repo.CheckRateLimit(ctx, owner, 2, 50*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, owner, 2, 50*time.Millisecond)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, owner, 2, 50*time.Millisecond)
		assert.False(t, allowed)

		time.Sleep(60 * time.Millisecond)

		allowed, _ = repo.CheckRateLimit(ctx, owner, 2, 50*time.Millisecond)
		assert.True(t, allowed)
	})
}
