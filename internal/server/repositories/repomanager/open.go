package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/server/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seams for tests.
var (
	sqlOpen      = sql.Open
	mongoConnect = func(ctx context.Context, uri string) (*mongo.Client, error) {
		return mongo.Connect(ctx, options.Client().ApplyURI(uri))
	}
)

// Open connects to the backend named by cfg.StorageBackend. Migrations are
// not run; call RunMigrations on the result.
func Open(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := sqlOpen("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return NewPostgresRepositoryManager(db), nil

	case config.StorageMongo:
		client, err := mongoConnect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		return NewMongoRepositoryManager(client, cfg.MongoDatabase), nil

	case config.StorageMemory:
		return NewMemoryRepositoryManager(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
