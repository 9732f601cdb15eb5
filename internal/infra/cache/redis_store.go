package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// RedisAttemptStore keeps TTL counters in Redis.
type RedisAttemptStore struct {
	c *redis.Client
}

func NewRedisAttemptStore(c *redis.Client) *RedisAttemptStore {
	return &RedisAttemptStore{c: c}
}

// Incr bumps the counter and arms the TTL only on the first increment, so the
// window is measured from the first failure.
func (s *RedisAttemptStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := s.c.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.c.Expire(ctx, key, ttl).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *RedisAttemptStore) Get(ctx context.Context, key string) (int64, bool, error) {
	n, err := s.c.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	return n, true, nil
}

func (s *RedisAttemptStore) Delete(ctx context.Context, key string) error {
	return s.c.Del(ctx, key).Err()
}

func (s *RedisAttemptStore) Ping(ctx context.Context) error {
	return s.c.Ping(ctx).Err()
}
