package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mise/pkg/logger"
	"mise/pkg/model"
)

// SlotCache is an advisory Redis cache for generated slot listings. Every
// failure is logged and treated as a miss: availability answers must never
// depend on the cache being up.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewSlotCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *SlotCache {
	if client == nil {
		return nil
	}
	return &SlotCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func slotKey(resourceID, date string, durationMinutes int) string {
	return fmt.Sprintf("slots:%s:%s:%d", resourceID, date, durationMinutes)
}

func (c *SlotCache) Get(ctx context.Context, resourceID, date string, durationMinutes int) ([]model.Slot, bool) {
	raw, err := c.client.Get(ctx, slotKey(resourceID, date, durationMinutes)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Slot cache read failed", "resource_id", resourceID, "date", date, "error", err)
		}
		return nil, false
	}

	var slots []model.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.log.Warn("Slot cache entry corrupted", "resource_id", resourceID, "date", date, "error", err)
		return nil, false
	}
	return slots, true
}

func (c *SlotCache) Set(ctx context.Context, resourceID, date string, durationMinutes int, slots []model.Slot) {
	raw, err := json.Marshal(slots)
	if err != nil {
		c.log.Warn("Failed to marshal slots for cache", "resource_id", resourceID, "date", date, "error", err)
		return
	}

	if err := c.client.Set(ctx, slotKey(resourceID, date, durationMinutes), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Slot cache write failed", "resource_id", resourceID, "date", date, "error", err)
	}
}

// InvalidateResource drops every cached slot listing for a resource after a
// schedule or reservation change.
func (c *SlotCache) InvalidateResource(ctx context.Context, resourceID string) {
	pattern := fmt.Sprintf("slots:%s:*", resourceID)

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("Slot cache scan failed", "resource_id", resourceID, "error", err)
		return
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.log.Warn("Slot cache invalidation failed", "resource_id", resourceID, "error", err)
		}
	}
}
