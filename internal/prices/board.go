// Package prices keeps the latest quoted metal prices.
package prices

import (
	"sort"
	"sync"
	"time"

	"jewelry/catalog/internal/domain"
)

// Board holds the newest price per metal and purity. It is safe for
// concurrent use.
type Board struct {
	mu     sync.RWMutex
	latest map[string]domain.MetalPrice
}

func NewBoard() *Board {
	return &Board{latest: make(map[string]domain.MetalPrice)}
}

// Apply merges an update into the board and returns the prices that changed.
// A price without its own timestamp takes the update's; a price older than
// the one on the board is ignored.
func (b *Board) Apply(update domain.MetalPriceUpdate) []domain.MetalPrice {
	b.mu.Lock()
	defer b.mu.Unlock()

	changed := make([]domain.MetalPrice, 0, len(update.Prices))
	for _, p := range update.Prices {
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = update.Timestamp
		}

		key := p.Key()
		if current, ok := b.latest[key]; ok && p.UpdatedAt.Before(current.UpdatedAt) {
			continue
		}
		b.latest[key] = p
		changed = append(changed, p)
	}
	return changed
}

// Seed loads a full price list, as returned by the prices endpoint
func (b *Board) Seed(prices []domain.MetalPrice, at time.Time) []domain.MetalPrice {
	return b.Apply(domain.MetalPriceUpdate{Prices: prices, Timestamp: at})
}

func (b *Board) Get(metal, purity string) (domain.MetalPrice, bool) {
	key := domain.MetalPrice{Metal: metal, Purity: purity}.Key()

	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.latest[key]
	return p, ok
}

// Len is the number of metal and purity pairs on the board
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.latest)
}

// All returns every price ordered by key
func (b *Board) All() []domain.MetalPrice {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.MetalPrice, 0, len(b.latest))
	for _, p := range b.latest {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}
