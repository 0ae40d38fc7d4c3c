// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage selects and opens the persistence backend for both domains.

One driver serves users and todos together, chosen by STORE_DRIVER:

  - postgres: pgxpool, migrations applied on startup when AUTO_MIGRATE is set.
  - mongo: one database, indexes ensured on startup.
  - memory: process-local maps, for local runs and tests.

Callers receive a [Store] holding the two repositories, a readiness probe and
a Close function that releases the underlying connection.
*/
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/todoapi/internal/platform/config"
	"github.com/taibuivan/todoapi/internal/platform/migration"
	mongostore "github.com/taibuivan/todoapi/internal/platform/mongo"
	pgstore "github.com/taibuivan/todoapi/internal/platform/postgres"
	"github.com/taibuivan/todoapi/internal/platform/sec"
	"github.com/taibuivan/todoapi/internal/todos"
	"github.com/taibuivan/todoapi/internal/users"
)

// Store is the opened backend.
type Store struct {
	// Driver is the STORE_DRIVER value the store was opened with.
	Driver string

	Users users.Repository
	Todos todos.Repository

	ping  func(context.Context) error
	close func()
}

// Ping reports whether the backend is reachable. The memory driver is always ready.
func (store *Store) Ping(context context.Context) error {
	if store.ping == nil {
		return nil
	}
	return store.ping(context)
}

// Close releases the backend connection. Safe to call more than once.
func (store *Store) Close() {
	if store.close == nil {
		return
	}
	store.close()
	store.close = nil
}

// Open connects to the backend selected by cfg.StoreDriver and builds both repositories.
//
// The hasher is handed to the user repository, which hashes changed passwords
// as part of its write path.
func Open(context context.Context, cfg *config.Config, logger *slog.Logger, hasher *sec.Hasher) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return openPostgres(context, cfg, logger, hasher)
	case config.DriverMongo:
		return openMongo(context, cfg, logger, hasher)
	case config.DriverMemory:
		return OpenMemory(hasher), nil
	default:
		return nil, fmt.Errorf("storage_open: unknown driver %q", cfg.StoreDriver)
	}
}

// OpenMemory builds a [Store] on the in-memory repositories.
func OpenMemory(hasher *sec.Hasher) *Store {
	return &Store{
		Driver: config.DriverMemory,
		Users:  users.NewMemoryRepository(hasher),
		Todos:  todos.NewMemoryRepository(),
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger, hasher *sec.Hasher) (*Store, error) {
	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("storage_open_postgres: %w", err)
	}

	if cfg.AutoMigrate {
		if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("storage_migrate: %w", err)
		}
	}

	return &Store{
		Driver: config.DriverPostgres,
		Users:  users.NewPostgresRepository(pool, hasher),
		Todos:  todos.NewPostgresRepository(pool),
		ping: func(pingCtx context.Context) error {
			return pgstore.Ping(pingCtx, pool)
		},
		close: func() {
			logger.Info("closing postgres pool")
			pool.Close()
		},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger, hasher *sec.Hasher) (*Store, error) {
	client, err := mongostore.Connect(ctx, cfg.MongoURI, logger)
	if err != nil {
		return nil, fmt.Errorf("storage_open_mongo: %w", err)
	}

	database := client.Database(cfg.MongoDatabase)
	if err := mongostore.EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("storage_mongo_indexes: %w", err)
	}

	return &Store{
		Driver: config.DriverMongo,
		Users:  users.NewMongoRepository(database, hasher),
		Todos:  todos.NewMongoRepository(database),
		ping: func(pingCtx context.Context) error {
			return mongostore.Ping(pingCtx, client)
		},
		close: func() {
			logger.Info("closing mongo client")
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("mongo disconnect error", slog.Any("error", err))
			}
		},
	}, nil
}
