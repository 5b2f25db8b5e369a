package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewWithClient(client, "test:"), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	value, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))
}

func TestRedisCache_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_SetRejectsNonPositiveTTL(t *testing.T) {
	c, _ := newTestCache(t)

	err := c.Set(context.Background(), "k", []byte("v"), 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestRedisCache_CompareAndSet(t *testing.T) {
	ctx := context.Background()

	t.Run("create if absent", func(t *testing.T) {
		c, _ := newTestCache(t)

		ok, err := c.CompareAndSet(ctx, "k", nil, []byte("v1"), time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = c.CompareAndSet(ctx, "k", nil, []byte("v2"), time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		value, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), value)
	})

	t.Run("swap on match", func(t *testing.T) {
		c, mr := newTestCache(t)
		require.NoError(t, c.Set(ctx, "k", []byte("v1"), time.Minute))

		ok, err := c.CompareAndSet(ctx, "k", []byte("v1"), []byte("v2"), time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		value, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), value)
		assert.Equal(t, time.Hour, mr.TTL("test:k"))
	})

	t.Run("no swap on mismatch", func(t *testing.T) {
		c, _ := newTestCache(t)
		require.NoError(t, c.Set(ctx, "k", []byte("v1"), time.Minute))

		ok, err := c.CompareAndSet(ctx, "k", []byte("stale"), []byte("v2"), time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		value, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), value)
	})

	t.Run("no swap on missing key", func(t *testing.T) {
		c, _ := newTestCache(t)

		ok, err := c.CompareAndSet(ctx, "k", []byte("v1"), []byte("v2"), time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = c.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}

func TestRedisCache_GetDel(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	value, err := c.GetDel(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)

	_, err = c.GetDel(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, c.Delete(ctx, "a", "b", "missing"))
	assert.False(t, mr.Exists("test:a"))
	assert.False(t, mr.Exists("test:b"))
	assert.NoError(t, c.Delete(ctx))
}

func TestRedisCache_Sets(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SAdd(ctx, "idx", time.Minute, "s1", "s2"))
	require.NoError(t, c.SAdd(ctx, "idx", time.Second, "s3"))
	assert.Equal(t, time.Minute, mr.TTL("test:idx"))

	members, err := c.SMembers(ctx, "idx")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2", "s3"}, members)

	require.NoError(t, c.SRem(ctx, "idx", "s2"))
	members, err = c.SMembers(ctx, "idx")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s3"}, members)

	members, err = c.SMembers(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestRedisCache_Unavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	err = c.Set(context.Background(), "k", []byte("v"), time.Minute)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	assert.ErrorIs(t, c.Ping(context.Background()), apperrors.ErrUnavailable)
}

func TestNew_ConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	c, err := New(context.Background(), Config{Addr: addr, DialTimeout: 100 * time.Millisecond})
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestNew_Success(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := New(context.Background(), Config{Addr: mr.Addr(), KeyPrefix: "p:"})
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("p:k"))
}
