package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rc-analytics/internal/config"
	"rc-analytics/internal/webhooks"
	"rc-analytics/pkg/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// openStore builds the webhook repository for the configured driver.
// The returned func releases the underlying connection.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (webhooks.Repository, func(), error) {
	switch cfg.Store.Driver {
	case "mongo":
		client, db, err := utils.OpenMongo(ctx, utils.MongoConfig{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.MongoDatabase,
		})
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		repo := webhooks.NewMongoRepo(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return repo, disconnect, nil

	case "postgres":
		db, err := utils.OpenPostgres(ctx, "pgx", cfg.Store.PostgresURL, utils.PostgresPoolConfig{})
		if err != nil {
			return nil, nil, err
		}
		repo := webhooks.NewPostgresRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		return repo, func() { _ = db.Close() }, nil

	case "memory":
		log.Warn("webhook store is in-memory; records are lost on restart")
		return webhooks.NewMemoryRepo(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
