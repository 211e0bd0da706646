// Package cache holds the read-through cache for dashboard aggregates.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storeadmin:stats:"

// Cached aggregates.
const (
	KeyOrderStats = "orders"
	KeyOverview   = "overview"
	KeyAdminData  = "admin-data"
)

// StatsCache stores JSON-encoded aggregates in Redis with a TTL.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a Redis-backed stats cache.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{
		client: client,
		ttl:    ttl,
	}
}

// Get decodes the cached value for key into dst. It reports false on a miss.
func (c *StatsCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Set stores v under key for the configured TTL.
func (c *StatsCache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached aggregate.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, keyPrefix+KeyOrderStats, keyPrefix+KeyOverview, keyPrefix+KeyAdminData).Err(); err != nil {
		return fmt.Errorf("redis del stats: %w", err)
	}
	return nil
}

// Nop is a cache that never hits. It is used when Redis is not configured.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, any) error         { return nil }
func (Nop) Invalidate(context.Context) error               { return nil }
