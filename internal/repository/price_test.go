package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"jewelry/catalog/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to TEST_DATABASE_URL and migrates it. Skips when unset or unreachable.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skipping integration test: Postgres not reachable: %v", err)
	}
	require.NoError(t, Migrate(pool))

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, "DELETE FROM metal_price_ticks WHERE metal = 'testium'")
		pool.Close()
	})
	return pool
}

func TestPriceRepository_SaveAndHistory(t *testing.T) {
	repo := NewPriceRepository(testPool(t))
	ctx := context.Background()

	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	ticks := []domain.MetalPrice{
		{Metal: "Testium", Purity: "22K", PricePerGram: 100.5, Currency: "INR", UpdatedAt: at},
		{Metal: "testium", Purity: "22k", PricePerGram: 101.25, Currency: "INR", UpdatedAt: at.Add(time.Minute)},
	}
	require.NoError(t, repo.SaveTicks(ctx, ticks))
	// replaying the same quotes adds nothing
	require.NoError(t, repo.SaveTicks(ctx, ticks))

	history, err := repo.History(ctx, "testium", "22k", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.InDelta(t, 101.25, history[0].PricePerGram, 0.0001)
	assert.True(t, history[0].UpdatedAt.Equal(at.Add(time.Minute)))
	assert.Equal(t, "testium", history[1].Metal)
}

func TestPriceRepository_SaveNothing(t *testing.T) {
	repo := NewPriceRepository(nil)
	assert.NoError(t, repo.SaveTicks(context.Background(), nil))
}
