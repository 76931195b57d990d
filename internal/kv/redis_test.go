package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, "storefront:", ttl), mr
}

func TestRedisSetAndGet(t *testing.T) {
	store, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart_u1", []byte(`[]`)))

	stored, err := mr.Get("storefront:cart_u1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, stored)

	got, err := store.Get(ctx, "cart_u1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)
}

func TestRedisGetMissing(t *testing.T) {
	store, _ := setupTestRedis(t, 0)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisTTL(t *testing.T) {
	store, mr := setupTestRedis(t, 30*time.Minute)

	require.NoError(t, store.Set(context.Background(), "cart_u1", []byte(`[]`)))
	assert.Equal(t, 30*time.Minute, mr.TTL("storefront:cart_u1"))
}

func TestRedisRemove(t *testing.T) {
	store, mr := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart_u1", []byte(`[]`)))
	require.NoError(t, store.Remove(ctx, "cart_u1"))
	assert.False(t, mr.Exists("storefront:cart_u1"))
	assert.NoError(t, store.Remove(ctx, "cart_u1"))
}

func TestRedisUnavailable(t *testing.T) {
	store, mr := setupTestRedis(t, 0)
	mr.Close()

	_, err := store.Get(context.Background(), "cart_u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "redis get failed")
}
