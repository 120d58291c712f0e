package coupon

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores validation answers keyed by quote fingerprint and code.
type Cache interface {
	Get(ctx context.Context, key string) (Response, bool, error)
	Set(ctx context.Context, key string, resp Response, ttl time.Duration) error
}

// CacheKey scopes an answer to the quote it was computed for. Email is part
// of the key because per-user limits can change the answer.
func CacheKey(req Request) string {
	return strings.Join([]string{
		req.Fingerprint,
		strings.ToUpper(strings.TrimSpace(req.Code)),
		strings.ToLower(strings.TrimSpace(req.Email)),
	}, ":")
}

// RedisCache keeps answers in redis as JSON strings.
type RedisCache struct {
	Client *redis.Client
	Prefix string
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Prefix: "tripquote:coupon:",
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Response, bool, error) {
	raw, err := c.Client.Get(ctx, c.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Response{}, false, nil
	}
	if err != nil {
		return Response{}, false, err
	}
	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{}, false, err
	}
	return out, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, resp Response, ttl time.Duration) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.Prefix+key, raw, ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

const (
	// DefaultMemoryEntries caps MemoryCache when MaxEntries is zero.
	DefaultMemoryEntries = 10000
	memorySweepEvery     = time.Minute
)

// MemoryCache is the in-process fallback used when no redis is configured.
// Expired entries are swept on Set; at MaxEntries an arbitrary entry is
// evicted to make room.
type MemoryCache struct {
	MaxEntries int

	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	nextSweep time.Time
}

type memoryEntry struct {
	resp      Response
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Response, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Response{}, false, nil
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return Response{}, false, nil
	}
	return e.resp, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, resp Response, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	limit := c.MaxEntries
	if limit <= 0 {
		limit = DefaultMemoryEntries
	}
	if _, exists := c.entries[key]; !exists {
		if !now.Before(c.nextSweep) || len(c.entries) >= limit {
			c.sweep(now)
		}
		for k := range c.entries {
			if len(c.entries) < limit {
				break
			}
			delete(c.entries, k)
		}
	}

	e := memoryEntry{resp: resp}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) sweep(now time.Time) {
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
	c.nextSweep = now.Add(memorySweepEvery)
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
