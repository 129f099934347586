package caching

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	values map[string]any
}

func newMapCache() *mapCache {
	return &mapCache{values: map[string]any{}}
}

func (c *mapCache) Get(ctx context.Context, key string, target any) error {
	v, ok := c.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	reflect.ValueOf(target).Elem().Set(reflect.ValueOf(v))
	return nil
}

func (c *mapCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func TestUseCache(t *testing.T) {
	ctx := context.Background()
	cash := newMapCache()
	calls := 0

	callback := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := UseCache(ctx, cash, "answer", time.Minute, callback)
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 1, calls)

	// second read comes from the cache, the callback stays cold
	v, err = UseCache(ctx, cash, "answer", time.Minute, callback)
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Equal(t, 1, calls)

	// callback errors pass through without poisoning the cache
	boom := errors.New("boom")
	_, err = UseCache(ctx, cash, "broken", time.Minute, func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	_, ok := cash.values["broken"]
	require.False(t, ok)
}

func TestUseCacheWithRO(t *testing.T) {
	ctx := context.Background()
	ro := newMapCache()
	rw := newMapCache()
	calls := 0

	callback := func() (string, error) {
		calls++
		return "fresh", nil
	}

	// miss on the replica populates the writable cache
	v, err := UseCacheWithRO(ctx, ro, rw, "k", time.Minute, callback)
	require.NoError(t, err)
	require.Equal(t, "fresh", v)
	require.Equal(t, 1, calls)
	require.Equal(t, "fresh", rw.values["k"])

	// a replica hit short-circuits the callback entirely
	ro.values["k"] = "replicated"
	v, err = UseCacheWithRO(ctx, ro, rw, "k", time.Minute, callback)
	require.NoError(t, err)
	require.Equal(t, "replicated", v)
	require.Equal(t, 1, calls)
}
