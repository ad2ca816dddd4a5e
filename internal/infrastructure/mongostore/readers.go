package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventhub/backend/internal/domain/planning"
)

// finder is the subset of *mongo.Collection the readers use
type finder interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// EventReader implements planning.EventReader over the events collection
type EventReader struct {
	events finder
}

// NewEventReader creates an EventReader
func NewEventReader(events finder) *EventReader {
	return &EventReader{events: events}
}

// FindByID loads an event by its ObjectID hex. Ids that are not valid ObjectIDs cannot exist.
func (r *EventReader) FindByID(ctx context.Context, id string) (*planning.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, planning.ErrEventNotFound
	}

	var doc eventDocument
	if err := r.events.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, planning.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %s: %w", id, err)
	}
	return doc.toDomain(), nil
}

// CatalogReader implements planning.CatalogReader over the services collection
type CatalogReader struct {
	services finder
}

// NewCatalogReader creates a CatalogReader
func NewCatalogReader(services finder) *CatalogReader {
	return &CatalogReader{services: services}
}

// FindByIDs returns the services that exist keyed by hex id. Malformed ids are reported as missing.
func (r *CatalogReader) FindByIDs(ctx context.Context, ids []string) (map[string]*planning.CatalogService, error) {
	found := make(map[string]*planning.CatalogService, len(ids))
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return found, nil
	}

	cursor, err := r.services.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc serviceDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode service: %w", err)
		}
		service, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		found[service.ID] = service
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate services: %w", err)
	}
	return found, nil
}

var (
	_ planning.EventReader   = (*EventReader)(nil)
	_ planning.CatalogReader = (*CatalogReader)(nil)
)
