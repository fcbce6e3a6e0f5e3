// Package historycache holds reconstructed product history payloads in
// Redis. The write paths (order submission, product edits) invalidate the
// affected keys, so readers never serve a stale trail and the presentation
// layer does not need to poll.
package historycache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "leasedesk:history:"

// Config holds Redis connection details.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Cache is a Redis-backed store of serialized product histories.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis and verifies the connection with a ping.
func New(cfg Config) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Cache{
		rdb: rdb,
		// Entries are invalidated on write; the TTL only bounds keys for
		// products that never change again.
		ttl: 24 * time.Hour,
	}, nil
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Get returns the cached payload for a product, with ok reporting a hit.
func (c *Cache) Get(ctx context.Context, adsID string) ([]byte, bool, error) {
	payload, err := c.rdb.Get(ctx, keyPrefix+adsID).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read history cache for %s: %w", adsID, err)
	}
	return payload, true, nil
}

// Set stores the payload for a product.
func (c *Cache) Set(ctx context.Context, adsID string, payload []byte) error {
	if err := c.rdb.Set(ctx, keyPrefix+adsID, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write history cache for %s: %w", adsID, err)
	}
	return nil
}

// Invalidate drops the cached histories for the given products.
func (c *Cache) Invalidate(ctx context.Context, adsIDs ...string) error {
	if len(adsIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(adsIDs))
	for _, adsID := range adsIDs {
		keys = append(keys, keyPrefix+adsID)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate history cache: %w", err)
	}
	return nil
}
