package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limit struct {
	Requests int64
	Window   time.Duration
}

func (l Limit) String() string {
	return fmt.Sprintf("%d per %s", l.Requests, l.Window)
}

// Store counts hits in fixed windows.
type Store interface {
	// Incr increments key and returns the new count. The key must expire
	// no earlier than ttl after its first increment.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	const op = "lib.ratelimit.RedisStore.Incr"

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return incr.Val(), nil
}

type Decision struct {
	Allowed    bool
	Limit      Limit
	RetryAfter time.Duration
}

type Limiter struct {
	store  Store
	limits []Limit
	prefix string
	now    func() time.Time
}

func New(store Store, limits ...Limit) *Limiter {
	return &Limiter{
		store:  store,
		limits: limits,
		prefix: "ratelimit",
		now:    time.Now,
	}
}

// Allow records one hit for client against every limit. The first limit
// that is exceeded decides the outcome.
func (l *Limiter) Allow(ctx context.Context, client string) (Decision, error) {
	now := l.now()

	for _, limit := range l.limits {
		if limit.Requests <= 0 || limit.Window <= 0 {
			continue
		}

		windowStart := now.Truncate(limit.Window)
		key := fmt.Sprintf("%s:%s:%d:%d", l.prefix, client, int64(limit.Window/time.Second), windowStart.Unix())

		count, err := l.store.Incr(ctx, key, limit.Window)
		if err != nil {
			return Decision{Allowed: true}, err
		}

		if count > limit.Requests {
			return Decision{
				Allowed:    false,
				Limit:      limit,
				RetryAfter: windowStart.Add(limit.Window).Sub(now),
			}, nil
		}
	}

	return Decision{Allowed: true}, nil
}
