package locks

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestRedis creates a Redis client backed by miniredis so the unit
// tests run without a real Redis server.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}

	return client, mr
}

func cleanupTestRedis(client *redis.Client, mr *miniredis.Miniredis) {
	if client != nil {
		client.Close()
	}
	if mr != nil {
		mr.Close()
	}
}

func TestAcquireAndRelease(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	locker := NewLocker(client)

	// Test 1: First acquire wins
	acquired, err := locker.Acquire("guest-1", "checkin", "door1")
	require.NoError(t, err)
	assert.True(t, acquired)

	// Test 2: Second acquire of the same record+action fails
	acquired, err = locker.Acquire("guest-1", "checkin", "door2")
	require.NoError(t, err)
	assert.False(t, acquired)

	// Test 3: Different action on the same record is unaffected
	acquired, err = locker.Acquire("guest-1", "delete", "door2")
	require.NoError(t, err)
	assert.True(t, acquired)

	// Test 4: Different record is unaffected
	acquired, err = locker.Acquire("guest-2", "checkin", "door2")
	require.NoError(t, err)
	assert.True(t, acquired)

	// Test 5: Release then re-acquire succeeds
	err = locker.Release("guest-1", "checkin", "door1")
	require.NoError(t, err)

	acquired, err = locker.Acquire("guest-1", "checkin", "door2")
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestReleaseOnlyByOwner(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	locker := NewLocker(client)

	acquired, err := locker.Acquire("guest-1", "checkin", "door1")
	require.NoError(t, err)
	assert.True(t, acquired)

	// A different owner cannot release someone else's lock
	err = locker.Release("guest-1", "checkin", "door2")
	require.NoError(t, err)

	acquired, err = locker.Acquire("guest-1", "checkin", "door2")
	require.NoError(t, err)
	assert.False(t, acquired, "lock should still be held by door1")

	// Releasing a lock that already expired is not an error
	err = locker.Release("guest-404", "checkin", "door1")
	assert.NoError(t, err)
}

func TestAcquireConcurrent(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	locker := NewLocker(client)

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			acquired, err := locker.Acquire("guest-race", "checkin", fmt.Sprintf("staff-%d", n))
			if err == nil && acquired {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one concurrent acquire should win")
}

// TestLockerIntegration exercises the locker against a real Redis
// container.
func TestLockerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})
	defer client.Close()

	locker := NewLocker(client)

	acquired, err := locker.Acquire("guest-1", "checkin", "door1")
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = locker.Acquire("guest-1", "checkin", "door2")
	require.NoError(t, err)
	assert.False(t, acquired)

	err = locker.Release("guest-1", "checkin", "door1")
	require.NoError(t, err)

	acquired, err = locker.Acquire("guest-1", "checkin", "door2")
	require.NoError(t, err)
	assert.True(t, acquired)
}
