package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk/pkg/adapters/redis"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "cleanup", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:cleanup"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:cleanup"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := newClient(t)
	first := redis.NewLocker(client, "test:")
	second := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := first.Lock(ctx, "cleanup", 5*time.Second)
	require.NoError(t, err)

	_, ok, err := second.TryLock(ctx, "cleanup", time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second locker must not acquire a held lock")

	waitCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = second.Lock(waitCtx, "cleanup", time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	unlock2, ok, err := second.TryLock(ctx, "cleanup", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, unlock2(ctx))
}

func TestRedisLocker_UnlockOnlyOwnToken(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "job", time.Second)
	require.NoError(t, err)

	// Lock expires and someone else takes it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock:job", "someone-else"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("test:lock:job")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
