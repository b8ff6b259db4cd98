package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"guestlist/internal/models"
)

const (
	snapshotKeyPrefix = "guests_snapshot:"
	snapshotTTL       = 10 * time.Minute
)

// Snapshot is the last known good guest listing for one venue and date,
// kept so a failed store read during a background poll can serve stale
// data instead of an error.
type Snapshot struct {
	Guests    []models.Guest `json:"guests"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// Age reports how stale the snapshot is.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// SnapshotCache stores listing snapshots in Redis. All operations are
// best-effort: a Redis failure never blocks a store read or mutation.
type SnapshotCache struct {
	Client *redis.Client
}

func NewSnapshotCache(client *redis.Client) *SnapshotCache {
	return &SnapshotCache{Client: client}
}

func snapshotKey(venueID, date string) string {
	return fmt.Sprintf("%s%s:%s", snapshotKeyPrefix, venueID, date)
}

func (c *SnapshotCache) Get(ctx context.Context, venueID, date string) (*Snapshot, bool) {
	if c == nil || c.Client == nil {
		return nil, false
	}
	raw, err := c.Client.Get(ctx, snapshotKey(venueID, date)).Result()
	if err != nil {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

func (c *SnapshotCache) Put(ctx context.Context, venueID, date string, guests []models.Guest) {
	if c == nil || c.Client == nil {
		return
	}
	raw, err := json.Marshal(Snapshot{Guests: guests, FetchedAt: time.Now()})
	if err != nil {
		return
	}
	c.Client.Set(ctx, snapshotKey(venueID, date), raw, snapshotTTL)
}

// Invalidate drops the snapshot after a mutation or a consumed
// registration event, so the next poll refetches from the store.
func (c *SnapshotCache) Invalidate(ctx context.Context, venueID, date string) {
	if c == nil || c.Client == nil {
		return
	}
	c.Client.Del(ctx, snapshotKey(venueID, date))
}
