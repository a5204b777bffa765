package prices

import (
	"testing"
	"time"

	"jewelry/catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func TestBoard_AppliesNewerIgnoresOlder(t *testing.T) {
	b := NewBoard()

	changed := b.Apply(domain.MetalPriceUpdate{
		Timestamp: base,
		Prices:    []domain.MetalPrice{{Metal: "Gold", Purity: "22K", PricePerGram: 6100}},
	})
	require.Len(t, changed, 1)
	assert.Equal(t, base, changed[0].UpdatedAt)

	changed = b.Apply(domain.MetalPriceUpdate{
		Timestamp: base.Add(-time.Minute),
		Prices:    []domain.MetalPrice{{Metal: "gold", Purity: "22k", PricePerGram: 5000}},
	})
	assert.Empty(t, changed)

	p, ok := b.Get("GOLD", "22K")
	require.True(t, ok)
	assert.InDelta(t, 6100, p.PricePerGram, 0.001)

	b.Apply(domain.MetalPriceUpdate{
		Prices: []domain.MetalPrice{{Metal: "gold", Purity: "22k", PricePerGram: 6150, UpdatedAt: base.Add(time.Minute)}},
	})
	p, _ = b.Get("gold", "22k")
	assert.InDelta(t, 6150, p.PricePerGram, 0.001)
}

func TestBoard_AllSorted(t *testing.T) {
	b := NewBoard()
	b.Seed([]domain.MetalPrice{
		{Metal: "silver", Purity: "999", PricePerGram: 92},
		{Metal: "gold", Purity: "24k", PricePerGram: 6600},
		{Metal: "gold", Purity: "22k", PricePerGram: 6100},
	}, base)

	keys := make([]string, 0)
	for _, p := range b.All() {
		keys = append(keys, p.Key())
	}
	assert.Equal(t, []string{"gold:22k", "gold:24k", "silver:999"}, keys)

	_, ok := b.Get("platinum", "")
	assert.False(t, ok)
}
