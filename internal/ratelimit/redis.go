package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a fixed-window limiter backed by Redis, for deployments that
// run more than one instance behind a balancer. Keys are stamped with the
// window index so a bucket expires with its window; INCR keeps concurrent
// increments atomic.
type RedisStore struct {
	rdb    *redis.Client
	policy Policy
	prefix string

	now func() time.Time
}

// NewRedisStore constructs a Redis-backed limiter for one policy.
func NewRedisStore(rdb *redis.Client, policy Policy) *RedisStore {
	return &RedisStore{
		rdb:    rdb,
		policy: policy,
		prefix: "ratelimit",
		now:    time.Now,
	}
}

// Consume admits or rejects one request from key.
func (s *RedisStore) Consume(ctx context.Context, key string) (Result, error) {
	now := s.now()
	windowSecs := int64(s.policy.Window / time.Second)
	if windowSecs < 1 {
		windowSecs = 1
	}
	windowIndex := now.Unix() / windowSecs
	resetAt := time.Unix((windowIndex+1)*windowSecs, 0)

	bucketKey := fmt.Sprintf("%s:%s:%s:%d", s.prefix, s.policy.Name, key, windowIndex)

	pipe := s.rdb.Pipeline()
	incr := pipe.Incr(ctx, bucketKey)
	pipe.Expire(ctx, bucketKey, s.policy.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("ratelimit: consume %s: %w", bucketKey, err)
	}

	count := int(incr.Val())
	if count > s.policy.Limit {
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: resetAt.Sub(now),
			ResetAt:    resetAt,
		}, nil
	}
	return Result{
		Allowed:   true,
		Remaining: s.policy.Limit - count,
		ResetAt:   resetAt,
	}, nil
}

var _ Limiter = (*RedisStore)(nil)
