package billing

import (
	"context"
	"fmt"

	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/domain/shared"
)

// SnapshotBuilder prices an event's service lines against the current catalog
type SnapshotBuilder struct {
	catalog planning.CatalogReader
}

// NewSnapshotBuilder creates a snapshot builder over the catalog
func NewSnapshotBuilder(catalog planning.CatalogReader) *SnapshotBuilder {
	return &SnapshotBuilder{catalog: catalog}
}

// Build resolves every service line of the event and captures its current price by value.
// A single unresolved service aborts the whole snapshot.
func (b *SnapshotBuilder) Build(ctx context.Context, event *planning.Event) ([]InvoiceLine, error) {
	if event == nil {
		return nil, planning.ErrEventNotFound
	}
	if !event.HasServices() {
		return []InvoiceLine{}, nil
	}

	ids := make([]string, 0, len(event.Services))
	seen := make(map[string]struct{}, len(event.Services))
	for _, sl := range event.Services {
		if sl.Quantity < 0 {
			return nil, shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("negative quantity for service %s", sl.ServiceID))
		}
		if _, ok := seen[sl.ServiceID]; ok {
			continue
		}
		seen[sl.ServiceID] = struct{}{}
		ids = append(ids, sl.ServiceID)
	}

	services, err := b.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog services: %w", err)
	}

	lines := make([]InvoiceLine, 0, len(event.Services))
	for _, sl := range event.Services {
		svc, ok := services[sl.ServiceID]
		if !ok || svc == nil {
			return nil, NewReferenceNotFoundError("service", sl.ServiceID)
		}
		lines = append(lines, InvoiceLine{
			ServiceID:   svc.ID,
			ServiceName: svc.Name,
			Quantity:    sl.Quantity,
			UnitPrice:   svc.Price.Copy(),
		})
	}
	return lines, nil
}
