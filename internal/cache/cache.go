package cache

import (
	"context"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Remember returns the cached value for key, computing and storing it on a miss.
// A nil cache or non-positive ttl always computes. Cache failures never fail the
// read; the computed value is returned instead.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (*T, error)) (*T, error) {
	if c == nil || ttl <= 0 {
		return load(ctx)
	}

	var cached T
	if hit, err := c.GetJSON(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	_ = c.SetJSON(ctx, key, v, ttl)
	return v, nil
}
