package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/marcosaureliofarias/convite-aniversario/config"
)

// Client holds the connected driver client and the guest collection
type Client struct {
	client     *mongo.Client
	collection *mongo.Collection
	counters   *mongo.Collection
}

// NewClient connects to MongoDB and pings the primary
func NewClient(ctx context.Context, cfg *config.MongoConfig, logger *zap.Logger) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("mongo connected",
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection),
	)

	db := client.Database(cfg.Database)
	return &Client{
		client:     client,
		collection: db.Collection(cfg.Collection),
		counters:   db.Collection("counters"),
	}, nil
}

// Collection the guest collection
func (c *Client) Collection() *mongo.Collection {
	return c.collection
}

// Counters sequence documents ({_id: name, seq: n})
func (c *Client) Counters() *mongo.Collection {
	return c.counters
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
