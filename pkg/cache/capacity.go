// Package cache holds the Redis-backed display counters for pass capacity.
// These counters exist for fast admin/list rendering only; admission
// decisions always recount live bookings and never read this cache.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"stayworks/pkg/logger"
)

type CapacityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCapacityCache wraps the Redis client. A nil client disables the cache;
// Get then always misses and Set is a no-op.
func NewCapacityCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *CapacityCache {
	return &CapacityCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func capacityKey(passID string) string {
	return fmt.Sprintf("pass_capacity:%s", passID)
}

// Set stores the reconciled demand for display.
func (c *CapacityCache) Set(ctx context.Context, passID string, demand int) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, capacityKey(passID), demand, c.ttl).Err(); err != nil {
		c.log.Warn("Failed to refresh capacity display cache", "pass_id", passID, "error", err)
	}
}

// Get returns the cached demand and whether the key was present.
func (c *CapacityCache) Get(ctx context.Context, passID string) (int, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}

	val, err := c.client.Get(ctx, capacityKey(passID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Failed to read capacity display cache", "pass_id", passID, "error", err)
		}
		return 0, false
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Invalidate drops the display counter, forcing the next reconcile to
// repopulate it.
func (c *CapacityCache) Invalidate(ctx context.Context, passID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, capacityKey(passID)).Err(); err != nil {
		c.log.Warn("Failed to invalidate capacity display cache", "pass_id", passID, "error", err)
	}
}
