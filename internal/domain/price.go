package domain

import (
	"strings"
	"time"
)

// MetalPrice is one quoted metal price
type MetalPrice struct {
	Metal        string    `json:"metal" validate:"required"`
	Purity       string    `json:"purity,omitempty"` // 24K, 22K, 925...
	PricePerGram float64   `json:"pricePerGram" validate:"gte=0"`
	Currency     string    `json:"currency,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Key identifies the price slot a quote belongs to, e.g. "gold:22k"
func (p MetalPrice) Key() string {
	key := strings.ToLower(strings.TrimSpace(p.Metal))
	if p.Purity != "" {
		key += ":" + strings.ToLower(strings.TrimSpace(p.Purity))
	}
	return key
}

// MetalPriceUpdate is one message of the live price feed
type MetalPriceUpdate struct {
	Prices    []MetalPrice `json:"prices" validate:"dive"`
	Timestamp time.Time    `json:"timestamp"`
}
