package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter counts failed sign-ins per key with INCR and a fixed window TTL.
type AttemptLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

func NewAttemptLimiter(client *redis.Client, max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{client: client, max: int64(max), window: window}
}

func (l *AttemptLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(key)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return n < l.max, nil
}

func (l *AttemptLimiter) Failure(ctx context.Context, key string) error {
	k := l.key(key)
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return err
	}
	// first failure opens the window
	if n == 1 {
		return l.client.Expire(ctx, k, l.window).Err()
	}
	return nil
}

func (l *AttemptLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}

func (l *AttemptLimiter) key(key string) string {
	return "auth:failures:" + key
}
