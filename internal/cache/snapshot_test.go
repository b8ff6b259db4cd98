package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestlist/internal/models"
)

func setupCache(t *testing.T) *SnapshotCache {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewSnapshotCache(client)
}

func TestSnapshotRoundTrip(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	guests := []models.Guest{
		{ID: "g1", VenueID: "venue1", Name: "Kim Minsu", TargetDate: "2026-08-29", Status: models.GuestStatusPending},
		{ID: "g2", VenueID: "venue1", Name: "Lee Jiyeon", TargetDate: "2026-08-29", Status: models.GuestStatusChecked},
	}
	cache.Put(ctx, "venue1", "2026-08-29", guests)

	snap, found := cache.Get(ctx, "venue1", "2026-08-29")
	require.True(t, found)
	assert.Equal(t, 2, len(snap.Guests))
	assert.Equal(t, "g1", snap.Guests[0].ID)
	assert.WithinDuration(t, time.Now(), snap.FetchedAt, time.Minute)

	// Different venue and date are separate keys
	_, found = cache.Get(ctx, "venue2", "2026-08-29")
	assert.False(t, found)
	_, found = cache.Get(ctx, "venue1", "2026-08-30")
	assert.False(t, found)
}

func TestSnapshotInvalidate(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	cache.Put(ctx, "venue1", "2026-08-29", []models.Guest{{ID: "g1"}})
	cache.Invalidate(ctx, "venue1", "2026-08-29")

	_, found := cache.Get(ctx, "venue1", "2026-08-29")
	assert.False(t, found)
}

func TestSnapshotNilSafe(t *testing.T) {
	// A nil cache (Redis not configured) must be a silent no-op.
	var cache *SnapshotCache
	ctx := context.Background()

	cache.Put(ctx, "venue1", "2026-08-29", nil)
	cache.Invalidate(ctx, "venue1", "2026-08-29")
	_, found := cache.Get(ctx, "venue1", "2026-08-29")
	assert.False(t, found)
}
