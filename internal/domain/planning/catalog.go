package planning

import (
	"context"

	"github.com/shopspring/decimal"
)

// CatalogService is a priced offering that can be attached to events.
// Price is the current catalog price and may change at any time.
type CatalogService struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
}

// CatalogReader resolves catalog services by id
type CatalogReader interface {
	// FindByIDs returns the services that exist among ids, keyed by id.
	// Missing ids are simply absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]*CatalogService, error)
}
