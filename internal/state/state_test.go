package state

import (
	"context"
	"os"
	"testing"
	"time"

	"jewelry/catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore returns a store on a throwaway key prefix. Skips if Redis is unavailable.
func testStore(t *testing.T) *redisSnapshotStore {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Redis not reachable: %v", err)
	}

	prefix := "catalog:test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return &redisSnapshotStore{redisClient: client, keyPrefix: prefix, ttl: time.Minute}
}

func TestCategorySnapshot_RoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.LoadCategories(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	categories := []domain.CategoryRecord{
		{ID: "rings", Name: "Rings", Slug: "rings"},
		{ID: "mens", Name: "Men's Rings", ParentID: "rings"},
	}
	require.NoError(t, store.SaveCategories(ctx, categories))

	snapshot, err := store.LoadCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, categories, snapshot.Categories)
	assert.WithinDuration(t, time.Now(), snapshot.SavedAt, 5*time.Second)

	ttl, err := store.redisClient.TTL(ctx, store.keyPrefix+"categories").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestPriceSnapshot_RoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.LoadPrices(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	prices := []domain.MetalPrice{{Metal: "gold", Purity: "22k", PricePerGram: 6100, Currency: "INR", UpdatedAt: at}}
	require.NoError(t, store.SavePrices(ctx, prices))

	loaded, err := store.LoadPrices(ctx)
	require.NoError(t, err)
	assert.Equal(t, prices, loaded)
}
