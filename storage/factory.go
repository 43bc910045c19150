package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/pastebin-lite/pastebin-lite/config"
)

// NewStore creates a storage backend based on the configuration.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (PasteStore, error) {
	switch cfg.Backend {
	case "memory":
		logger.Warn("Using in-memory storage; pastes will not survive a restart")
		return NewMemoryStore(), nil

	case "postgres":
		logger.Info("Using PostgreSQL storage")
		return NewPostgresStore(ctx, cfg.PostgresDSN)

	case "mongodb":
		logger.Info("Using MongoDB storage",
			"uri", cfg.MongoURI,
			"database", cfg.MongoDatabase)
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)

	case "dynamodb":
		logger.Info("Using DynamoDB storage",
			"table", cfg.DynamoTable,
			"region", cfg.AWSRegion)
		return NewDynamoStore(ctx, cfg.DynamoTable, cfg.AWSRegion)

	case "redis":
		logger.Info("Using Redis storage", "addr", cfg.RedisAddr)
		return NewRedisStore(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Backend)
	}
}
