package repository

import (
	"context"
	"fmt"
	"strings"

	"jewelry/catalog/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PriceRepository interface {
	SaveTicks(ctx context.Context, prices []domain.MetalPrice) error
	History(ctx context.Context, metal, purity string, limit int) ([]domain.MetalPrice, error)
}

type priceRepository struct {
	db *pgxpool.Pool
}

func NewPriceRepository(db *pgxpool.Pool) PriceRepository {
	return &priceRepository{
		db: db,
	}
}

// SaveTicks records each quote once; replays of the same quote are ignored
func (r *priceRepository) SaveTicks(ctx context.Context, prices []domain.MetalPrice) error {
	if len(prices) == 0 {
		return nil
	}

	query := `
	INSERT INTO metal_price_ticks (metal, purity, price_per_gram, currency, quoted_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (metal, purity, quoted_at) DO NOTHING`

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(query, normalize(p.Metal), normalize(p.Purity), p.PricePerGram, p.Currency, p.UpdatedAt)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save metal price ticks: %w", err)
	}
	return nil
}

// History returns the newest quotes for one metal and purity, newest first
func (r *priceRepository) History(ctx context.Context, metal, purity string, limit int) ([]domain.MetalPrice, error) {
	query := `
	SELECT metal, purity, price_per_gram::float8, currency, quoted_at
	FROM metal_price_ticks
	WHERE metal = $1 AND purity = $2
	ORDER BY quoted_at DESC
	LIMIT $3`

	rows, err := r.db.Query(ctx, query, normalize(metal), normalize(purity), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query metal price history: %w", err)
	}

	history, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MetalPrice, error) {
		var p domain.MetalPrice
		err := row.Scan(&p.Metal, &p.Purity, &p.PricePerGram, &p.Currency, &p.UpdatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read metal price history: %w", err)
	}
	return history, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
