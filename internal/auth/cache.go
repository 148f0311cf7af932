package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshKeyPrefix   = "auth:refresh:"
	blacklistKeyPrefix = "auth:blacklist:"
)

// TokenCache stores the single live refresh token per member and the set of
// revoked access tokens. Entries expire on their own: refresh entries live
// as long as the refresh token, blacklist entries as long as the revoked
// access token would have remained valid.
type TokenCache interface {
	SaveRefresh(ctx context.Context, email, token string, ttl time.Duration) error
	GetRefresh(ctx context.Context, email string) (string, bool, error)
	DeleteRefresh(ctx context.Context, email string) error
	// RotateRefresh replaces the member's refresh token. Implementations
	// must overwrite in a single write so no window exists where two
	// tokens are live or none is.
	RotateRefresh(ctx context.Context, email, newToken string, ttl time.Duration) error
	Blacklist(ctx context.Context, accessToken string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, accessToken string) (bool, error)
}

// RedisTokenCache is the production TokenCache backed by Redis.
type RedisTokenCache struct {
	client *redis.Client
}

// NewRedisTokenCache wraps an established Redis client.
func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

func (c *RedisTokenCache) SaveRefresh(ctx context.Context, email, token string, ttl time.Duration) error {
	return c.client.Set(ctx, refreshKeyPrefix+email, token, ttl).Err()
}

func (c *RedisTokenCache) GetRefresh(ctx context.Context, email string) (string, bool, error) {
	val, err := c.client.Get(ctx, refreshKeyPrefix+email).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisTokenCache) DeleteRefresh(ctx context.Context, email string) error {
	return c.client.Del(ctx, refreshKeyPrefix+email).Err()
}

// RotateRefresh is a plain SET with TTL: the overwrite is atomic in Redis,
// so a concurrent rotation for the same member leaves exactly one winner.
func (c *RedisTokenCache) RotateRefresh(ctx context.Context, email, newToken string, ttl time.Duration) error {
	return c.client.Set(ctx, refreshKeyPrefix+email, newToken, ttl).Err()
}

func (c *RedisTokenCache) Blacklist(ctx context.Context, accessToken string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired; nothing to revoke.
		return nil
	}
	return c.client.Set(ctx, blacklistKeyPrefix+accessToken, "logout", ttl).Err()
}

func (c *RedisTokenCache) IsBlacklisted(ctx context.Context, accessToken string) (bool, error) {
	n, err := c.client.Exists(ctx, blacklistKeyPrefix+accessToken).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryTokenCache is an in-process TokenCache with per-entry expiry. It
// backs tests and the degraded mode used when Redis is unreachable at
// startup. Expired entries are dropped lazily on read.
type MemoryTokenCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryTokenCache returns an empty in-memory cache.
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryTokenCache) set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
}

func (c *MemoryTokenCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

func (c *MemoryTokenCache) SaveRefresh(_ context.Context, email, token string, ttl time.Duration) error {
	c.set(refreshKeyPrefix+email, token, ttl)
	return nil
}

func (c *MemoryTokenCache) GetRefresh(_ context.Context, email string) (string, bool, error) {
	val, ok := c.get(refreshKeyPrefix + email)
	return val, ok, nil
}

func (c *MemoryTokenCache) DeleteRefresh(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, refreshKeyPrefix+email)
	return nil
}

func (c *MemoryTokenCache) RotateRefresh(_ context.Context, email, newToken string, ttl time.Duration) error {
	c.set(refreshKeyPrefix+email, newToken, ttl)
	return nil
}

func (c *MemoryTokenCache) Blacklist(_ context.Context, accessToken string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.set(blacklistKeyPrefix+accessToken, "logout", ttl)
	return nil
}

func (c *MemoryTokenCache) IsBlacklisted(_ context.Context, accessToken string) (bool, error) {
	_, ok := c.get(blacklistKeyPrefix + accessToken)
	return ok, nil
}
