package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"jewelry/catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceService_SeedsThenStreams(t *testing.T) {
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	admin := &fakeAdmin{prices: []domain.MetalPrice{
		{Metal: "gold", Purity: "22k", PricePerGram: 6100, UpdatedAt: at},
	}}
	stream := &fakeStream{updates: []domain.MetalPriceUpdate{
		{Timestamp: at.Add(time.Minute), Prices: []domain.MetalPrice{{Metal: "gold", Purity: "22k", PricePerGram: 6120}}},
		{Timestamp: at.Add(-time.Minute), Prices: []domain.MetalPrice{{Metal: "gold", Purity: "22k", PricePerGram: 1}}},
	}}
	snapshots := &fakeSnapshots{}
	history := &fakeHistory{}
	svc := NewPriceService(admin, stream, snapshots, history)

	var updates [][]domain.MetalPrice
	require.NoError(t, svc.Run(context.Background(), func(changed []domain.MetalPrice) {
		updates = append(updates, changed)
	}))

	require.Len(t, updates, 1)
	p, ok := svc.Board().Get("gold", "22k")
	require.True(t, ok)
	assert.InDelta(t, 6120, p.PricePerGram, 0.001)

	assert.Len(t, history.ticks, 2)
	assert.Equal(t, 2, snapshots.priceSaves)
	assert.InDelta(t, 6120, snapshots.prices[0].PricePerGram, 0.001)
}

func TestPriceService_SeedFallsBackToSnapshot(t *testing.T) {
	admin := &fakeAdmin{pricesErr: errors.New("timeout")}
	snapshots := &fakeSnapshots{prices: []domain.MetalPrice{{Metal: "silver", Purity: "999", PricePerGram: 92}}}
	svc := NewPriceService(admin, &fakeStream{}, snapshots, nil)

	require.NoError(t, svc.Seed(context.Background()))
	_, ok := svc.Board().Get("silver", "999")
	assert.True(t, ok)
}

func TestPriceService_SeedWithoutFallback(t *testing.T) {
	admin := &fakeAdmin{pricesErr: errors.New("timeout")}
	svc := NewPriceService(admin, &fakeStream{}, nil, nil)

	assert.EqualError(t, svc.Seed(context.Background()), "timeout")
	assert.Empty(t, svc.Board().All())
}

func TestPriceService_RunKeepsSeededBoard(t *testing.T) {
	admin := &fakeAdmin{prices: []domain.MetalPrice{{Metal: "gold", Purity: "24k", PricePerGram: 6650}}}
	svc := NewPriceService(admin, &fakeStream{}, nil, nil)

	require.NoError(t, svc.Seed(context.Background()))
	require.NoError(t, svc.Run(context.Background(), nil))

	assert.Equal(t, 1, admin.priceCalls)
	assert.Equal(t, 1, svc.Board().Len())
}

func TestPriceService_History(t *testing.T) {
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	history := &fakeHistory{ticks: []domain.MetalPrice{
		{Metal: "gold", Purity: "22k", PricePerGram: 6100, UpdatedAt: at},
		{Metal: "silver", Purity: "999", PricePerGram: 92, UpdatedAt: at},
		{Metal: "gold", Purity: "22k", PricePerGram: 6120, UpdatedAt: at.Add(time.Minute)},
		{Metal: "gold", Purity: "22k", PricePerGram: 6135, UpdatedAt: at.Add(2 * time.Minute)},
	}}
	svc := NewPriceService(&fakeAdmin{}, &fakeStream{}, nil, history)

	got, err := svc.History(context.Background(), "gold", "22k", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 6135, got[0].PricePerGram, 0.001)
	assert.InDelta(t, 6120, got[1].PricePerGram, 0.001)

	_, err = svc.History(context.Background(), "gold", "22k", 0)
	assert.Error(t, err)
}

func TestPriceService_HistoryNeedsRepository(t *testing.T) {
	svc := NewPriceService(&fakeAdmin{}, &fakeStream{}, nil, nil)

	_, err := svc.History(context.Background(), "gold", "22k", 10)
	assert.ErrorIs(t, err, ErrNoHistory)
}
