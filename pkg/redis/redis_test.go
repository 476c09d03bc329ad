package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/cohesion/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.Nil(t, client.Redis())
	assert.NoError(t, client.Close())
}

func TestLock_NilClientIsNoop(t *testing.T) {
	var client *Client
	assert.False(t, client.Enabled())
	assert.Nil(t, client.Redis())
	assert.NoError(t, client.Close())

	lock := NewLock(client, "pipeline", time.Minute)
	ctx := context.Background()
	require.NoError(t, lock.Acquire(ctx))
	assert.NoError(t, lock.Release(ctx))
}

func TestLock_DisabledAlwaysSucceeds(t *testing.T) {
	client, err := New(&config.Config{})
	require.NoError(t, err)

	lock := NewLock(client, "pipeline", time.Minute)
	ctx := context.Background()

	require.NoError(t, lock.Acquire(ctx))
	// a second holder is not excluded without Redis
	require.NoError(t, NewLock(client, "pipeline", time.Minute).Acquire(ctx))
	assert.NoError(t, lock.Release(ctx))
}

func TestLockKey(t *testing.T) {
	assert.Equal(t, "cohesion:lock:pipeline", LockKey("pipeline"))
	assert.Equal(t, "cohesion:lock:pipeline", NewLock(nil, "pipeline", time.Minute).Key())
}

func TestLock_Exclusive(t *testing.T) {
	if os.Getenv("REDIS_TEST_HOST") == "" {
		t.Skip("REDIS_TEST_HOST not set")
	}

	client, err := New(&config.Config{
		Redis: config.RedisConfig{
			Host:    os.Getenv("REDIS_TEST_HOST"),
			Port:    "6379",
			Enabled: true,
		},
	})
	require.NoError(t, err)
	defer client.Close()
	require.NotNil(t, client.Redis())

	ctx := context.Background()
	first := NewLock(client, "test-exclusive", 5*time.Second)
	second := NewLock(client, "test-exclusive", 5*time.Second)

	require.NoError(t, first.Acquire(ctx))
	assert.ErrorIs(t, second.Acquire(ctx), ErrLockHeld)

	// releasing a lock that was never acquired is a no-op
	require.NoError(t, second.Release(ctx))

	require.NoError(t, first.Release(ctx))
	require.NoError(t, second.Acquire(ctx))
	require.NoError(t, second.Release(ctx))
}
