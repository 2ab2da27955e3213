package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps each session namespace in one Redis hash whose TTL is
// refreshed on every write.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisBackend(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = "portal:storage:"
	}
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

func (b *RedisBackend) key(sid string) string { return b.prefix + sid }

func (b *RedisBackend) Get(ctx context.Context, sid, key string) (string, error) {
	v, err := b.client.HGet(ctx, b.key(sid), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (b *RedisBackend) Set(ctx context.Context, sid, key, value string) error {
	_, err := b.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, b.key(sid), key, value)
		if b.ttl > 0 {
			p.Expire(ctx, b.key(sid), b.ttl)
		}
		return nil
	})
	return err
}

func (b *RedisBackend) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := b.client.HDel(ctx, b.key(sid), keys...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
