// Package cache is a thin redis wrapper used for caching user profile
// payloads. A cache failure is never fatal; callers fall back to the store.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/userbase/backend/internal/logger"
)

type Cache struct {
	client *redis.Client
	log    *logger.Logger
}

func New(addr string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Cache{
		client: client,
		log:    logger.Default().WithComponent("cache"),
	}, nil
}

// NewWithClient wraps an existing redis client; used by tests.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		log:    logger.Default().WithComponent("cache"),
	}
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the underlying redis client for health checks.
func (c *Cache) Client() *redis.Client {
	return c.client
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.log.Warn(ctx, "cache get failed", map[string]interface{}{"key": key, "error": err.Error()})
		return "", false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	err := c.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		c.log.Warn(ctx, "cache set failed", map[string]interface{}{"key": key, "error": err.Error()})
		return err
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := c.client.Del(ctx, keys...).Err()
	if err != nil {
		c.log.Warn(ctx, "cache delete failed", map[string]interface{}{"keys": keys, "error": err.Error()})
	}
	return err
}
