// Package cache holds the shared product listing cache that product
// creation invalidates.
package cache

import (
	"context"
	"fmt"

	"product-catalog/internal/config"

	"github.com/redis/go-redis/v9"
)

// Invalidator removes cached entries by key
type Invalidator interface {
	Remove(ctx context.Context, key string) error
}

// NewRedisClient connects to redis and verifies the connection with a ping
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return client, nil
}

// RedisInvalidator evicts keys from a redis instance
type RedisInvalidator struct {
	client *redis.Client
}

func NewRedisInvalidator(client *redis.Client) *RedisInvalidator {
	return &RedisInvalidator{client: client}
}

// Remove deletes key. A missing key is not an error.
func (c *RedisInvalidator) Remove(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: remove %q: %w", key, err)
	}
	return nil
}
