package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	val1, err := cache.GetOrRender(context.Background(), "key", render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender(context.Background(), "key", render)
	require.NoError(t, err)

	assert.Equal(t, "html", val1)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Len())
}

func TestChartCacheExpires(t *testing.T) {
	cache := NewChartCache(time.Minute)
	now := time.Date(2025, 5, 24, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := cache.GetOrRender(context.Background(), "key", render)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 0, cache.Len())
	_, err = cache.GetOrRender(context.Background(), "key", render)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestChartCacheDoesNotStoreErrors(t *testing.T) {
	cache := NewChartCache(time.Minute)
	_, err := cache.GetOrRender(context.Background(), "key", func() (string, error) {
		return "", errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestChartCacheDisabledWithZeroTTL(t *testing.T) {
	cache := NewChartCache(0)
	calls := 0
	for range 2 {
		_, err := cache.GetOrRender(context.Background(), "key", func() (string, error) {
			calls++
			return "html", nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestHashKeyIsDeterministic(t *testing.T) {
	a := hashKey(map[string]any{"seller_id": "S1", "top_n": 3})
	b := hashKey(map[string]any{"top_n": 3, "seller_id": "S1"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, hashKey(map[string]any{"seller_id": "S2"}))
}
