// Package cache keeps recently placed or looked up orders in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/models"
	"github.com/redis/go-redis/v9"
)

const orderKeyPrefix = "order:"

// RedisOrderCache stores orders as JSON under order:{id}
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOrderCache wraps client. Entries expire after ttl so that status
// changes made outside this service become visible.
func NewRedisOrderCache(client *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and verifies the server answers
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func orderKey(id uint) string {
	return orderKeyPrefix + strconv.FormatUint(uint64(id), 10)
}

// GetOrder returns nil, nil on a miss
func (c *RedisOrderCache) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	raw, err := c.client.Get(ctx, orderKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	order, err := decodeOrder(raw)
	if err != nil {
		// Unreadable entries would fail every lookup until they expire
		if delErr := c.Invalidate(ctx, id); delErr != nil {
			return nil, errors.Join(err, delErr)
		}
		return nil, fmt.Errorf("cached order %d: %w", id, err)
	}
	return order, nil
}

func decodeOrder(raw []byte) (*models.Order, error) {
	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if !order.Status.IsValid() {
		return nil, fmt.Errorf("unknown status %q", order.Status)
	}
	return &order, nil
}

func (c *RedisOrderCache) SetOrder(ctx context.Context, order models.Order) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %d: %w", order.ID, err)
	}
	return c.client.Set(ctx, orderKey(order.ID), raw, c.ttl).Err()
}

// Invalidate drops a cached order
func (c *RedisOrderCache) Invalidate(ctx context.Context, id uint) error {
	return c.client.Del(ctx, orderKey(id)).Err()
}
