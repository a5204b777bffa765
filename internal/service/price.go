package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jewelry/catalog/internal/client"
	"jewelry/catalog/internal/domain"
	"jewelry/catalog/internal/prices"
	"jewelry/catalog/internal/repository"
	"jewelry/catalog/internal/state"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrNoHistory is returned by History when price history is not configured
var ErrNoHistory = errors.New("price history needs the database enabled")

// PriceService follows the live metal price feed. snapshots and history are optional.
type PriceService struct {
	client    client.AdminClient
	stream    client.PriceStream
	board     *prices.Board
	snapshots state.SnapshotStore
	history   repository.PriceRepository
}

func NewPriceService(
	adminClient client.AdminClient,
	stream client.PriceStream,
	snapshots state.SnapshotStore,
	history repository.PriceRepository,
) *PriceService {
	return &PriceService{
		client:    adminClient,
		stream:    stream,
		board:     prices.NewBoard(),
		snapshots: snapshots,
		history:   history,
	}
}

func (s *PriceService) Board() *prices.Board {
	return s.board
}

// Seed fills the board from the current price list, falling back to the
// stored snapshot when the API is unavailable.
func (s *PriceService) Seed(ctx context.Context) error {
	current, err := s.client.CurrentPrices(ctx)
	if err == nil {
		changed := s.board.Seed(current, time.Now().UTC())
		s.persist(ctx, changed)
		log.Infof("💰 Loaded %d metal prices", len(current))
		return nil
	}

	if s.snapshots == nil {
		return err
	}
	stored, snapErr := s.snapshots.LoadPrices(ctx)
	if snapErr != nil {
		if !errors.Is(snapErr, state.ErrNoSnapshot) {
			log.Warnf("⚠️ %v", snapErr)
		}
		return err
	}

	s.board.Seed(stored, time.Time{})
	log.Warnf("⚠️ Metal prices unavailable, showing %d stored prices: %v", len(stored), err)
	return nil
}

// Run seeds an empty board, then applies streamed updates until ctx is done.
// onUpdate receives the prices each update changed.
func (s *PriceService) Run(ctx context.Context, onUpdate func(changed []domain.MetalPrice)) error {
	if s.board.Len() == 0 {
		if err := s.Seed(ctx); err != nil {
			log.Warnf("⚠️ Starting without seeded prices: %v", err)
		}
	}

	return s.stream.Subscribe(ctx, func(update domain.MetalPriceUpdate) {
		changed := s.board.Apply(update)
		if len(changed) == 0 {
			return
		}
		s.persist(ctx, changed)
		if onUpdate != nil {
			onUpdate(changed)
		}
	})
}

// History returns the stored quotes for one metal and purity, newest first
func (s *PriceService) History(ctx context.Context, metal, purity string, limit int) ([]domain.MetalPrice, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return s.history.History(ctx, metal, purity, limit)
}

// persist writes the board snapshot and the new ticks side by side
func (s *PriceService) persist(ctx context.Context, changed []domain.MetalPrice) {
	if len(changed) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.snapshots != nil {
		g.Go(func() error {
			return s.snapshots.SavePrices(gctx, s.board.All())
		})
	}
	if s.history != nil {
		g.Go(func() error {
			return s.history.SaveTicks(gctx, changed)
		})
	}

	if err := g.Wait(); err != nil {
		log.Warnf("⚠️ Failed to persist metal prices: %v", err)
	}
}
