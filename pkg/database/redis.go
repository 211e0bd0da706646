package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the client behind the dashboard stats cache. Zero
// durations and sizes fall back to the cache defaults below.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// Cache timeouts stay well below a dashboard query.
const (
	defaultRedisDialTimeout = 2 * time.Second
	defaultRedisIOTimeout   = 500 * time.Millisecond
	defaultRedisPoolSize    = 10
)

func (c RedisConfig) options() *redis.Options {
	opts := &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		PoolSize:     c.PoolSize,
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultRedisDialTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultRedisIOTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultRedisIOTimeout
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultRedisPoolSize
	}
	return opts
}

// NewRedisClient creates a Redis client and pings it once. The client is
// returned even when the ping fails; the stats cache treats Redis errors as
// misses.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(cfg.options())

	if err := client.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}
