package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funnel struct {
	Total int `json:"total"`
}

func newCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisCache(rdb, "test:"), mr
}

func TestRememberComputesOnceWithinTTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (*funnel, error) {
		calls++
		return &funnel{Total: calls}, nil
	}

	first, err := Remember(ctx, c, "funnel", time.Minute, load)
	require.NoError(t, err)
	second, err := Remember(ctx, c, "funnel", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Total, second.Total)
	assert.True(t, mr.Exists("test:funnel"))

	mr.FastForward(2 * time.Minute)
	third, err := Remember(ctx, c, "funnel", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Total)
}

func TestRememberWithoutCacheAlwaysLoads(t *testing.T) {
	calls := 0
	load := func(context.Context) (*funnel, error) {
		calls++
		return &funnel{}, nil
	}
	for i := 0; i < 3; i++ {
		_, err := Remember[funnel](context.Background(), nil, "k", time.Minute, load)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestRememberPropagatesLoadError(t *testing.T) {
	c, mr := newCache(t)
	_, err := Remember(context.Background(), c, "broken", time.Minute, func(context.Context) (*funnel, error) {
		return nil, errors.New("scan failed")
	})
	assert.EqualError(t, err, "scan failed")
	assert.False(t, mr.Exists("test:broken"))
}

func TestCorruptEntryIsTreatedAsMiss(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("test:bad", "{not json"))

	var dst funnel
	hit, err := c.GetJSON(context.Background(), "bad", &dst)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists("test:bad"))
}
