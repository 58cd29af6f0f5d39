// Package blocklist is the revocation registry: a set of token identifiers
// that have been explicitly invalidated, each entry expiring on its own TTL.
package blocklist

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Registry interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}

type RedisRegistry struct {
	client *redis.Client
}

func NewRedis(addr, password string) *RedisRegistry {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &RedisRegistry{client: client}
}

func (r *RedisRegistry) Add(ctx context.Context, jti string, ttl time.Duration) error {
	return r.client.Set(ctx, jti, "", ttl).Err()
}

func (r *RedisRegistry) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisRegistry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
