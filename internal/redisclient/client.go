package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/util"

	"github.com/go-redis/redis/v8"
)

// Cache keys for the listing caches. Product listings share one prefix so
// a single invalidation covers every per-category variant.
const (
	KeyCategories    = "catalog:categories"
	KeyProducts      = "catalog:products"
	productKeyPrefix = "catalog:products:*"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CategoryKey returns the listing-cache key for one category's products.
func CategoryKey(categoryID int64) string {
	return fmt.Sprintf("catalog:products:category:%d", categoryID)
}

// GetJSON loads a cached value into dest. The first return is false on a
// cache miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		util.CacheMissesTotal.WithLabelValues(key).Inc()
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached value for %s: %w", key, err)
	}
	util.CacheHitsTotal.WithLabelValues(key).Inc()
	return true, nil
}

// SetJSON stores a value under key with the given TTL
func (c *Client) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// Invalidate drops the named keys plus every per-category product listing.
func (c *Client) Invalidate(ctx context.Context, keys ...string) error {
	iter := c.rdb.Scan(ctx, 0, productKeyPrefix, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
