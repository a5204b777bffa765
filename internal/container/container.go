package container

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"jewelry/catalog/internal/client"
	"jewelry/catalog/internal/config"
	"jewelry/catalog/internal/domain"
	"jewelry/catalog/internal/domain/event"
	"jewelry/catalog/internal/queue"
	"jewelry/catalog/internal/repository"
	"jewelry/catalog/internal/service"
	"jewelry/catalog/internal/state"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Unacked change events older than this are taken over on watch start
const minIdleTime = time.Minute

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Session *client.Session
	Client  client.AdminClient

	Categories *service.CategoryService
	Prices     *service.PriceService

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container. Redis and Postgres are only connected when
// enabled in the configuration.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	session := client.NewSession(cfg.API.Token)
	session.OnLogout(func() {
		log.Warn("🔒 Admin session ended, set a fresh api.token to continue")
	})
	container.Session = session

	adminClient := client.NewAdminClient(cfg.API, session, client.LogoutOnUnauthorized(session))
	container.Client = adminClient

	var (
		snapshots state.SnapshotStore
		events    queue.Queue
		history   repository.PriceRepository
	)

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")
		container.redis = rdb

		snapshots = state.NewRedisSnapshotStore(rdb, time.Duration(cfg.Redis.SnapshotTTL)*time.Second)

		redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Redis)
		if err != nil {
			container.Close()
			return nil, err
		}
		events = redisQueue
	}

	if cfg.Database.Enabled {
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to create database pool: %w", err)
		}
		container.db = db

		if err := db.Ping(ctx); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		if err := repository.Migrate(db); err != nil {
			container.Close()
			return nil, err
		}
		log.Info("✅ Connected to Postgres successfully")

		history = repository.NewPriceRepository(db)
	}

	container.Categories = service.NewCategoryService(adminClient, snapshots, events)
	container.Prices = service.NewPriceService(adminClient, client.NewPriceStream(cfg.API, session), snapshots, history)

	return container, nil
}

// Watch follows category change events and the metal price feed together
// until ctx is done or one of them fails.
func (c *Container) Watch(
	ctx context.Context,
	onCategory func(*event.CategoryChanged),
	onPrices func([]domain.MetalPrice),
) error {
	g, ctx := errgroup.WithContext(ctx)

	if c.redis != nil {
		g.Go(func() error {
			return c.Categories.Watch(ctx, consumerName(), minIdleTime, onCategory)
		})
	} else {
		log.Info("Redis disabled, category changes from other sessions will not show up")
	}

	g.Go(func() error {
		return c.Prices.Run(ctx, onPrices)
	})

	return g.Wait()
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "admin"
	}
	return fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Debug("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	log.Debug("Container shut down successfully")
	return nil
}
