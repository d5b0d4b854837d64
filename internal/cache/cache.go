// Package cache is a thin read-through cache over Redis for the two hot read
// paths: the weekly leaderboard and a user's top recommendations. A nil
// *Cache is valid and means caching is disabled.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 10 * time.Minute

const WeeklyTopKey = "weeklyTop"

func RecommendationsKey(userId string) string {
	return "recs:" + userId
}

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis at addr. An empty addr disables caching; a failed
// ping is returned as an error so the caller can decide to run uncached.
func New(ctx context.Context, addr string) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Cache{rdb: rdb, ttl: DefaultTTL}, nil
}

// GetJSON reads key into v. The second return is false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	if c == nil {
		return false, nil
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if c == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
