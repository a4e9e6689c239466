package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Day keys outlive their day so a late reader in another zone still sees them.
const redisKeyTTL = 48 * time.Hour

// RedisCounter keeps the daily send count in Redis so several instances share
// one quota.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

func NewRedisCounter(addr, password string, db int) *RedisCounter {
	return &RedisCounter{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		prefix: "quota:email",
	}
}

func (r *RedisCounter) key(day string) string {
	return fmt.Sprintf("%s:%s", r.prefix, day)
}

func (r *RedisCounter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCounter) Get(ctx context.Context, day string) (int, error) {
	n, err := r.client.Get(ctx, r.key(day)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read quota %s: %w", day, err)
	}
	return n, nil
}

func (r *RedisCounter) Increment(ctx context.Context, day string) (int, error) {
	key := r.key(day)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, redisKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment quota %s: %w", day, err)
	}
	return int(incr.Val()), nil
}

func (r *RedisCounter) Close() error {
	return r.client.Close()
}
