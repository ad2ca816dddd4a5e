// Package mongostore reads events and catalog services from the planning
// MongoDB database. Billing never writes to these collections.
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/eventhub/backend/internal/infrastructure/config"
)

// Store holds the client and the planning database handle
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    config.CatalogConfig
}

// Connect opens a client against cfg.MongoURI and pings the primary
func Connect(ctx context.Context, cfg config.CatalogConfig) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetTimeout(cfg.MongoTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(cfg.MongoDatabase),
		cfg:    cfg,
	}, nil
}

// EventReader returns a planning.EventReader over the events collection
func (s *Store) EventReader() *EventReader {
	return NewEventReader(s.db.Collection(s.cfg.EventsCollection))
}

// CatalogReader returns a planning.CatalogReader over the services collection
func (s *Store) CatalogReader() *CatalogReader {
	return NewCatalogReader(s.db.Collection(s.cfg.ServicesCollection))
}

// Ping checks that the primary is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
