package catalog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Annan-Ogero/nexusmarket-pro/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func testProducts() []*domain.Product {
	return []*domain.Product{
		{ID: 1, SKU: "070847811169", Name: "Milk 1L", Price: 2.50, Stock: 12},
		{ID: 2, SKU: "041220576463", Name: "Eggs 12pk", Price: 1.00, Stock: 30},
	}
}

func TestCacheGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	data, err := json.Marshal(testProducts())
	require.NoError(t, err)
	mr.Set(catalogKey, string(data))

	products, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Milk 1L", products[0].Name)
}

func TestCacheGet_Miss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	products, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, products)
}

func TestCacheGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(catalogKey, "{not json"))

	_, err := cache.Get(context.Background())
	require.ErrorContains(t, err, "unmarshal catalog failed")
}

func TestCacheSet_WithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, cache.Set(context.Background(), testProducts()))

	stored, err := mr.Get(catalogKey)
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	ttl := mr.TTL(catalogKey)
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestCacheInvalidate(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, cache.Set(context.Background(), testProducts()))
	assert.True(t, mr.Exists(catalogKey))

	require.NoError(t, cache.Invalidate(context.Background()))
	assert.False(t, mr.Exists(catalogKey))
}

func TestCacheInvalidate_MissingKey(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	assert.NoError(t, cache.Invalidate(context.Background()))
}
