package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"portfolio/internal/config"
	"portfolio/internal/db"
	"portfolio/internal/store"
	"portfolio/internal/store/dynamo"
	"portfolio/internal/store/memory"
	"portfolio/internal/store/redisstore"
	"portfolio/internal/store/sqlite"
)

// openStore connects the backend named by STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		connString := cfg.PostgresURL()
		database, err := db.New(ctx, connString)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(connString); err != nil {
			database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations completed successfully")
		return database, nil

	case config.BackendSQLite:
		return sqlite.Open(cfg.SQLitePath())

	case config.BackendRedis:
		return redisstore.New(cfg.StoreEndpoint, cfg.StoreCredential, cfg.StoreDatabase, logger)

	case config.BackendDynamoDB:
		id, secret, _ := cfg.AWSKeyPair()
		return dynamo.New(ctx, dynamo.Options{
			Endpoint:        cfg.StoreEndpoint,
			Region:          cfg.StoreRegion,
			AccessKeyID:     id,
			SecretAccessKey: secret,
			Table:           cfg.StoreDatabase,
		})

	case config.BackendMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}
