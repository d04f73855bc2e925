package main

import (
	"context"
	"fmt"

	"github.com/maxviazov/marketplace-items-service/internal/config"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
	"github.com/maxviazov/marketplace-items-service/internal/repository/memory"
	"github.com/maxviazov/marketplace-items-service/internal/repository/postgres"
	"github.com/maxviazov/marketplace-items-service/internal/repository/redisstore"
	"github.com/rs/zerolog"
)

// store bundles the selected backend with its readiness probe and teardown.
type store struct {
	items  repository.ItemRepository
	pinger repository.Pinger
	close  func()
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*store, error) {
	l := logger.With().Str("module", "repository").Str("backend", cfg.Store.Backend).Logger()

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres, l)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, l); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &store{items: postgres.NewItemRepository(pool), pinger: postgres.NewPinger(pool), close: pool.Close}, nil

	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.Redis, l)
		if err != nil {
			return nil, err
		}
		s := redisstore.NewItemStore(client)
		return &store{items: s, pinger: s, close: func() { _ = client.Close() }}, nil

	case config.BackendMemory:
		l.Warn().Msg("in-memory store: items are lost on restart")
		s := memory.NewItemStore()
		return &store{items: s, pinger: s, close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
