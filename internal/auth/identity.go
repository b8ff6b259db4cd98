package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"guestlist/internal/models"
)

const (
	identityKeyPrefix = "identity:"
	identityCacheTTL  = 60 * time.Second
)

var ErrUnknownUser = errors.New("no staff account for session subject")

// UserStore is the lookup the resolver needs from the users db layer.
type UserStore interface {
	GetUserByID(id string) (*models.User, error)
}

// Resolver turns a verified session subject into a full caller identity
// (role, venue scope, quota). Lookups are cached in Redis briefly so a
// 15-second polling UI does not hammer the users table.
type Resolver struct {
	Users UserStore
	Redis *redis.Client
}

func NewResolver(users UserStore, redisClient *redis.Client) *Resolver {
	return &Resolver{Users: users, Redis: redisClient}
}

func (r *Resolver) Resolve(ctx context.Context, userID string) (models.Identity, error) {
	if userID == "" {
		return models.Identity{}, ErrUnknownUser
	}

	if cached, ok := r.fromCache(ctx, userID); ok {
		return cached, nil
	}

	user, err := r.Users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, ErrUnknownUser
		}
		return models.Identity{}, fmt.Errorf("identity lookup failed: %w", err)
	}

	identity := models.Identity{
		UserID:     user.ID,
		VenueID:    user.VenueID,
		Role:       user.Role,
		GuestQuota: user.GuestQuota,
		Active:     user.Active,
	}

	r.toCache(ctx, identity)
	return identity, nil
}

// Invalidate drops a cached identity, e.g. after a role or quota change.
func (r *Resolver) Invalidate(ctx context.Context, userID string) {
	if r.Redis == nil {
		return
	}
	r.Redis.Del(ctx, identityKeyPrefix+userID)
}

func (r *Resolver) fromCache(ctx context.Context, userID string) (models.Identity, bool) {
	if r.Redis == nil {
		return models.Identity{}, false
	}
	raw, err := r.Redis.Get(ctx, identityKeyPrefix+userID).Result()
	if err != nil {
		return models.Identity{}, false
	}
	var identity models.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return models.Identity{}, false
	}
	return identity, true
}

func (r *Resolver) toCache(ctx context.Context, identity models.Identity) {
	if r.Redis == nil {
		return
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return
	}
	// Cache failures are ignored: the store lookup is the authority.
	r.Redis.Set(ctx, identityKeyPrefix+identity.UserID, raw, identityCacheTTL)
}
