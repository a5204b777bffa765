// Package state keeps the last good snapshots of fetched data in Redis so a
// failed refresh can fall back to them.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jewelry/catalog/internal/domain"

	"github.com/redis/go-redis/v9"
)

// ErrNoSnapshot is returned when nothing has been stored yet
var ErrNoSnapshot = errors.New("no snapshot stored")

type SnapshotStore interface {
	SaveCategories(ctx context.Context, categories []domain.CategoryRecord) error
	LoadCategories(ctx context.Context) (*CategorySnapshot, error)
	SavePrices(ctx context.Context, prices []domain.MetalPrice) error
	LoadPrices(ctx context.Context) ([]domain.MetalPrice, error)
}

// CategorySnapshot is a stored category list and when it was fetched
type CategorySnapshot struct {
	Categories []domain.CategoryRecord `json:"categories"`
	SavedAt    time.Time               `json:"saved_at"`
}

type redisSnapshotStore struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

// NewRedisSnapshotStore stores snapshots for ttl; zero keeps them forever
func NewRedisSnapshotStore(redisClient *redis.Client, ttl time.Duration) SnapshotStore {
	return &redisSnapshotStore{
		redisClient: redisClient,
		keyPrefix:   "catalog:snapshot:",
		ttl:         ttl,
	}
}

func (s *redisSnapshotStore) SaveCategories(ctx context.Context, categories []domain.CategoryRecord) error {
	snapshot := CategorySnapshot{Categories: categories, SavedAt: time.Now().UTC()}
	if err := s.set(ctx, "categories", snapshot); err != nil {
		return fmt.Errorf("failed to save category snapshot: %w", err)
	}
	return nil
}

func (s *redisSnapshotStore) LoadCategories(ctx context.Context) (*CategorySnapshot, error) {
	var snapshot CategorySnapshot
	if err := s.get(ctx, "categories", &snapshot); err != nil {
		return nil, fmt.Errorf("failed to load category snapshot: %w", err)
	}
	return &snapshot, nil
}

func (s *redisSnapshotStore) SavePrices(ctx context.Context, prices []domain.MetalPrice) error {
	if err := s.set(ctx, "metal_prices", prices); err != nil {
		return fmt.Errorf("failed to save metal price snapshot: %w", err)
	}
	return nil
}

func (s *redisSnapshotStore) LoadPrices(ctx context.Context) ([]domain.MetalPrice, error) {
	var prices []domain.MetalPrice
	if err := s.get(ctx, "metal_prices", &prices); err != nil {
		return nil, fmt.Errorf("failed to load metal price snapshot: %w", err)
	}
	return prices, nil
}

func (s *redisSnapshotStore) set(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, s.keyPrefix+name, data, s.ttl).Err()
}

func (s *redisSnapshotStore) get(ctx context.Context, name string, into any) error {
	data, err := s.redisClient.Get(ctx, s.keyPrefix+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNoSnapshot
		}
		return err
	}
	return json.Unmarshal(data, into)
}
