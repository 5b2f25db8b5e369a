// Package cache provides the shared key/value store used for live session state
// and captcha challenges. Every authenticator instance talks to the same Redis
// primary (optionally behind Sentinel), which gives linearizable reads after
// writes for a single key.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// ErrCacheMiss is returned when a key does not exist or has expired.
var ErrCacheMiss = apperrors.Wrap(apperrors.ErrNotFound, "cache miss")

// Cache is the key/value contract used by session and captcha repositories.
type Cache interface {
	// Set stores value under key with the given ttl, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns the value stored under key or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// CompareAndSet replaces the value under key with newValue only when the
	// current value equals expected. A nil expected means "create if absent".
	// It reports whether the write happened.
	CompareAndSet(ctx context.Context, key string, expected, newValue []byte, ttl time.Duration) (bool, error)
	// GetDel atomically returns and removes the value under key, or ErrCacheMiss.
	GetDel(ctx context.Context, key string) ([]byte, error)
	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// SAdd adds members to the set under key and extends its ttl to at least ttl.
	SAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error
	// SMembers returns the members of the set under key.
	SMembers(ctx context.Context, key string) ([]string, error)
	// SRem removes members from the set under key.
	SRem(ctx context.Context, key string, members ...string) error
}

// Config holds Redis connection configuration.
type Config struct {
	Addr           string
	Username       string
	Password       string
	DB             int
	SentinelMaster string
	SentinelAddrs  []string
	KeyPrefix      string

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisCache implements Cache on top of a Redis client.
type RedisCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// New connects to Redis. When a sentinel master is configured a failover client
// is used so a promoted replica keeps serving writes.
func New(ctx context.Context, cfg Config) (*RedisCache, error) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	var client redis.UniversalClient
	if cfg.SentinelMaster != "" {
		if len(cfg.SentinelAddrs) == 0 {
			return nil, errors.New("at least one sentinel address is required")
		}
		client = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    cfg.SentinelMaster,
			SentinelAddrs: cfg.SentinelAddrs,
			DB:            cfg.DB,
			Username:      cfg.Username,
			Password:      cfg.Password,
			DialTimeout:   cfg.DialTimeout,
			ReadTimeout:   cfg.ReadTimeout,
			WriteTimeout:  cfg.WriteTimeout,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			DB:           cfg.DB,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, cfg.KeyPrefix), nil
}

// NewWithClient creates a RedisCache with a pre-configured client.
// This is useful for testing with miniredis.
func NewWithClient(client redis.UniversalClient, keyPrefix string) *RedisCache {
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Close closes the Redis client connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping checks Redis connectivity (health check).
func (c *RedisCache) Ping(ctx context.Context) error {
	return wrapErr(c.client.Ping(ctx).Err(), "failed to ping redis")
}

func (c *RedisCache) key(key string) string {
	return c.keyPrefix + key
}

// Set stores value under key with the given ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "ttl must be positive")
	}
	return wrapErr(c.client.Set(ctx, c.key(key), value, ttl).Err(), "failed to set key")
}

// Get returns the value stored under key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, wrapErr(err, "failed to get key")
	}
	return value, nil
}

// compareAndSetScript swaps the value only when the current one matches ARGV[1].
// A missing key never matches, so creation goes through SET NX instead.
var compareAndSetScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == false or current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// CompareAndSet atomically replaces the value under key when it still equals expected.
func (c *RedisCache) CompareAndSet(
	ctx context.Context,
	key string,
	expected, newValue []byte,
	ttl time.Duration,
) (bool, error) {
	if ttl <= 0 {
		return false, apperrors.Wrap(apperrors.ErrInvalidInput, "ttl must be positive")
	}

	if expected == nil {
		ok, err := c.client.SetNX(ctx, c.key(key), newValue, ttl).Result()
		if err != nil {
			return false, wrapErr(err, "failed to create key")
		}
		return ok, nil
	}

	result, err := compareAndSetScript.Run(
		ctx,
		c.client,
		[]string{c.key(key)},
		expected,
		newValue,
		ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, wrapErr(err, "failed to compare and set key")
	}
	return result == 1, nil
}

// GetDel atomically returns and removes the value under key.
func (c *RedisCache) GetDel(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.GetDel(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, wrapErr(err, "failed to consume key")
	}
	return value, nil
}

// Delete removes the given keys.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.key(key)
	}
	return wrapErr(c.client.Del(ctx, prefixed...).Err(), "failed to delete keys")
}

// extendTTLScript raises the ttl of a key but never shortens it.
var extendTTLScript = redis.NewScript(`
local current = redis.call('PTTL', KEYS[1])
if current < tonumber(ARGV[1]) then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return 1
`)

// SAdd adds members to the set under key.
func (c *RedisCache) SAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	values := make([]any, len(members))
	for i, m := range members {
		values[i] = m
	}
	fullKey := c.key(key)
	if err := c.client.SAdd(ctx, fullKey, values...).Err(); err != nil {
		return wrapErr(err, "failed to add set members")
	}
	if ttl > 0 {
		if err := extendTTLScript.Run(ctx, c.client, []string{fullKey}, ttl.Milliseconds()).Err(); err != nil {
			return wrapErr(err, "failed to extend set ttl")
		}
	}
	return nil
}

// SMembers returns the members of the set under key.
func (c *RedisCache) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := c.client.SMembers(ctx, c.key(key)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, wrapErr(err, "failed to list set members")
	}
	return members, nil
}

// SRem removes members from the set under key.
func (c *RedisCache) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	values := make([]any, len(members))
	for i, m := range members {
		values[i] = m
	}
	return wrapErr(c.client.SRem(ctx, c.key(key), values...).Err(), "failed to remove set members")
}

// wrapErr maps timeouts and connection failures to ErrUnavailable. Every other
// Redis error is also reported as unavailable since the cache cannot answer.
func wrapErr(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, message)
	}
	if apperrors.IsTransient(err) {
		return apperrors.Unavailable(err, message)
	}
	return fmt.Errorf("%s: %w: %w", message, apperrors.ErrUnavailable, err)
}
