package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "idempotency"

// RedisBackend shares idempotency state across API replicas.
type RedisBackend struct {
	client redis.Cmdable
}

func NewRedisBackend(client redis.Cmdable) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Name() string { return "redis" }

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

func (b *RedisBackend) Reserve(ctx context.Context, key string, payload []byte, ttl time.Duration) (bool, error) {
	return b.client.SetNX(ctx, redisKey(key), payload, ttl).Result()
}

func (b *RedisBackend) Replace(ctx context.Context, key string, payload []byte, ttl time.Duration) (bool, error) {
	return b.client.SetXX(ctx, redisKey(key), payload, ttl).Result()
}

func (b *RedisBackend) Release(ctx context.Context, key string) error {
	return b.client.Del(ctx, redisKey(key)).Err()
}

func redisKey(key string) string {
	return fmt.Sprintf("%s:%s", redisKeyPrefix, key)
}
