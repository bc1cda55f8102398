package link

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sundayezeilo/tinylink/internal/errx"
)

// cacheKeyPrefix namespaces link entries in Redis. The same key format is
// used by the create, read, delete, and sweep paths.
const cacheKeyPrefix = "url:"

// redisCache implements Cache on top of a Redis client. Records are
// stored as JSON values under "url:<id>".
type redisCache struct {
	client *redis.Client
}

// NewRedisCache returns a Cache backed by the given Redis client.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func cacheKey(id string) string {
	return cacheKeyPrefix + id
}

// cacheEntry is the wire form of a Link in the cache.
type cacheEntry struct {
	ID        string     `json:"id"`
	TargetURL string     `json:"target_url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *redisCache) Get(ctx context.Context, id string) (Link, bool, error) {
	const op = "link.cache.Get"

	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Link{}, false, nil
	}
	if err != nil {
		return Link{}, false, errx.E(op, errx.Unavailable, err)
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Unreadable entries are treated as a miss; they will be
		// overwritten on the next population.
		return Link{}, false, nil
	}

	return Link{
		ID:        entry.ID,
		TargetURL: entry.TargetURL,
		ExpiresAt: entry.ExpiresAt,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}, true, nil
}

func (c *redisCache) Set(ctx context.Context, link Link, ttl time.Duration) error {
	const op = "link.cache.Set"

	data, err := json.Marshal(cacheEntry{
		ID:        link.ID,
		TargetURL: link.TargetURL,
		ExpiresAt: link.ExpiresAt,
		CreatedAt: link.CreatedAt,
		UpdatedAt: link.UpdatedAt,
	})
	if err != nil {
		return errx.E(op, errx.Internal, err)
	}

	if err := c.client.Set(ctx, cacheKey(link.ID), data, ttl).Err(); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, id string) error {
	const op = "link.cache.Delete"

	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}
