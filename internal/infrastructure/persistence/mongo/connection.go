// Package mongo provides the MongoDB-backed recipe and grocery repositories
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
)

const (
	recipesCollection = "recipes"
	groceryCollection = "grocery_items"
)

// Database holds the process-wide client and the selected database.
type Database struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(timeout).
		SetAppName("cookbook")
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger = logger.Named("mongo")
	logger.Info("Connected to MongoDB", zap.String("database", cfg.Name))

	return &Database{
		client: client,
		db:     client.Database(cfg.Name),
		logger: logger,
	}, nil
}

// Collection returns a handle to the named collection.
func (d *Database) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

// Ping reports whether the primary is reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Disconnect closes every pooled connection.
func (d *Database) Disconnect(ctx context.Context) error {
	d.logger.Info("Disconnecting from MongoDB")
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on. It is
// idempotent.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		recipesCollection: {
			{Keys: bson.D{{Key: "tags", Value: 1}}, Options: options.Index().SetName("tags")},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at_desc")},
		},
		groceryCollection: {
			{
				Keys: bson.D{
					{Key: "nameKey", Value: 1},
					{Key: "unitKey", Value: 1},
					{Key: "purchased", Value: 1},
				},
				Options: options.Index().SetName("merge_key"),
			},
			{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category")},
		},
	}

	for collection, models := range specs {
		names, err := d.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
		d.logger.Debug("Indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	}
	return nil
}
