package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestlist/internal/models"
)

type fakeUserStore struct {
	users   map[string]*models.User
	lookups int
}

func (f *fakeUserStore) GetUserByID(id string) (*models.User, error) {
	f.lookups++
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func setupResolver(t *testing.T) (*Resolver, *fakeUserStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := &fakeUserStore{users: map[string]*models.User{
		"u1": {ID: "u1", VenueID: "venue1", Role: models.RoleDoor, GuestQuota: 0, Active: true},
	}}
	return NewResolver(store, client), store, mr
}

func TestResolve(t *testing.T) {
	resolver, _, _ := setupResolver(t)

	identity, err := resolver.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserID)
	assert.Equal(t, "venue1", identity.VenueID)
	assert.Equal(t, models.RoleDoor, identity.Role)
	assert.True(t, identity.Active)
}

func TestResolveUnknownSubject(t *testing.T) {
	resolver, _, _ := setupResolver(t)

	_, err := resolver.Resolve(context.Background(), "nobody")
	assert.True(t, errors.Is(err, ErrUnknownUser))

	_, err = resolver.Resolve(context.Background(), "")
	assert.True(t, errors.Is(err, ErrUnknownUser))
}

func TestResolveUsesCache(t *testing.T) {
	resolver, store, _ := setupResolver(t)

	_, err := resolver.Resolve(context.Background(), "u1")
	require.NoError(t, err)
	_, err = resolver.Resolve(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, store.lookups, "second resolve should hit the cache")
}

func TestInvalidateForcesRefresh(t *testing.T) {
	resolver, store, _ := setupResolver(t)
	ctx := context.Background()

	identity, err := resolver.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, identity.GuestQuota)

	// Quota changes in the store; the cached identity is stale until
	// invalidated.
	store.users["u1"].GuestQuota = 7
	resolver.Invalidate(ctx, "u1")

	identity, err = resolver.Resolve(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, identity.GuestQuota)
	assert.Equal(t, 2, store.lookups)
}
