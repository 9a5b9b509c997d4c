// Package driver opens the store.Store selected by configuration.
package driver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/csr-bridge/backend/config"
	"github.com/csr-bridge/backend/internal/store"
	"github.com/csr-bridge/backend/internal/store/memory"
	"github.com/csr-bridge/backend/internal/store/mongo"
	"github.com/csr-bridge/backend/internal/store/postgres"
	"github.com/csr-bridge/backend/pkg/database"
)

// Open connects to the configured backend and prepares its schema: indexes
// for mongo, migrations for postgres.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := database.NewMongoClient(ctx, cfg.MongoURL, logger)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		s := mongo.New(client, cfg.DBName, logger)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return s, nil

	case config.DriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.PostgresURL, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := database.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return postgres.New(pool), nil

	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
