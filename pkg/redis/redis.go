package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// SetClient installs the Redis client (called from internal/initial).
func SetClient(c *redis.Client) {
	client = c
}

// Close closes the Redis connection.
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// IsConnected reports whether a client has been installed.
func IsConnected() bool {
	return client != nil
}

// GetClient exposes the raw client for advanced use.
func GetClient() *redis.Client {
	return client
}

func checkClient() error {
	if client == nil {
		return fmt.Errorf("redis not connected")
	}
	return nil
}

// Get returns a string value.
func Get(ctx context.Context, key string) (string, error) {
	if err := checkClient(); err != nil {
		return "", err
	}
	return client.Get(ctx, key).Result()
}

// Set stores a string value.
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := checkClient(); err != nil {
		return err
	}
	return client.Set(ctx, key, value, expiration).Err()
}

// SetNX stores the value only when the key does not exist yet. Used as the
// distributed lock primitive for monitor jobs and per-item mutations.
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if err := checkClient(); err != nil {
		return false, err
	}
	return client.SetNX(ctx, key, value, expiration).Result()
}

// Del removes keys.
func Del(ctx context.Context, keys ...string) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.Del(ctx, keys...).Result()
}

// Exists reports how many of the given keys exist.
func Exists(ctx context.Context, keys ...string) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.Exists(ctx, keys...).Result()
}

// Expire sets a TTL on a key.
func Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	if err := checkClient(); err != nil {
		return false, err
	}
	return client.Expire(ctx, key, expiration).Result()
}

// Incr atomically increments a counter key.
func Incr(ctx context.Context, key string) (int64, error) {
	if err := checkClient(); err != nil {
		return 0, err
	}
	return client.Incr(ctx, key).Result()
}
