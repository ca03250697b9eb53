// Package redis implements the dedupe cache on go-redis/v9, for deployments
// that run more than one scanner process against a shared cooldown state.
package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orbitarb/orbitarb/internal/domain"
)

// Config holds connection parameters for the Redis dedupe backend.
type Config struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	TLSEnabled bool
}

// DedupeCache implements domain.DedupeCache on Redis. Each alerted key is a
// string key "dedupe:{match}|{market}|{selection}" with the window as TTL, so
// expiry is handled by Redis itself and the cooldown survives process
// restarts.
type DedupeCache struct {
	rdb    *redis.Client
	window time.Duration
}

// NewDedupeCache connects to Redis, verifies the connection with a ping, and
// returns a cache with the given cooldown window.
func NewDedupeCache(ctx context.Context, cfg Config, window time.Duration) (*DedupeCache, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &DedupeCache{rdb: rdb, window: window}, nil
}

// Close releases the underlying connection pool.
func (c *DedupeCache) Close() error {
	return c.rdb.Close()
}

func dedupeKey(matchID string, market domain.Market, selection string) string {
	return "dedupe:" + matchID + "|" + string(market) + "|" + selection
}

// SeenRecently reports whether the key exists and has not expired.
func (c *DedupeCache) SeenRecently(ctx context.Context, matchID string, market domain.Market, selection string) (bool, error) {
	err := c.rdb.Get(ctx, dedupeKey(matchID, market, selection)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis: dedupe lookup: %w", err)
	}
	return true, nil
}

// Mark records or refreshes the key with the window as TTL.
func (c *DedupeCache) Mark(ctx context.Context, matchID string, market domain.Market, selection string) error {
	key := dedupeKey(matchID, market, selection)
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	if err := c.rdb.Set(ctx, key, ts, c.window).Err(); err != nil {
		return fmt.Errorf("redis: dedupe mark: %w", err)
	}
	return nil
}

var _ domain.DedupeCache = (*DedupeCache)(nil)
