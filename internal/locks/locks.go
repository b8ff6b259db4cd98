package locks

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Locker suppresses duplicate in-flight mutations. Locks are keyed by
// record id plus action name, so unrelated actions on other records are
// unaffected.
type Locker struct {
	Client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{Client: client}
}

// getActionLockTTL returns the lock TTL from the environment or the
// default. A lock only needs to outlive one slow request.
func (l *Locker) getActionLockTTL() time.Duration {
	defaultTTL := 10 * time.Second

	ttlStr := os.Getenv("ACTION_LOCK_TTL_SECONDS")
	if ttlStr == "" {
		return defaultTTL
	}

	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil {
		return defaultTTL
	}
	return time.Duration(ttlSec) * time.Second
}

func lockKey(recordID, action string) string {
	return fmt.Sprintf("action_lock:%s:%s", recordID, action)
}

// Acquire takes the lock for one record+action pair. Returns false when
// the same action on the same record is already in flight.
func (l *Locker) Acquire(recordID, action, owner string) (bool, error) {
	return l.Client.SetNX(context.Background(), lockKey(recordID, action), owner, l.getActionLockTTL()).Result()
}

// Release frees the lock if the caller still owns it. A lock that
// expired and was re-acquired by someone else is left alone.
func (l *Locker) Release(recordID, action, owner string) error {
	ctx := context.Background()
	key := lockKey(recordID, action)

	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}
	if val == owner {
		_, err := l.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
