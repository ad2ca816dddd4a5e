package billing

import (
	"context"
	"errors"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/planning"
)

// invoiceAccess checks requester access to invoices through the event they bill
type invoiceAccess struct {
	events planning.EventReader
	policy planning.AccessPolicy
}

// loadEventForView returns the event after checking the requester may view it
func (a invoiceAccess) loadEventForView(ctx context.Context, eventID string, requester planning.Requester) (*planning.Event, error) {
	event, err := a.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := a.policy.RequireView(event, requester); err != nil {
		return nil, err
	}
	return event, nil
}

// requireInvoiceView allows the requester to see an invoice when they can view its event.
// Invoices whose event no longer exists are visible to admins only.
func (a invoiceAccess) requireInvoiceView(ctx context.Context, invoice *billing.Invoice, requester planning.Requester) error {
	_, err := a.loadEventForView(ctx, invoice.EventID, requester)
	if errors.Is(err, planning.ErrEventNotFound) {
		return a.policy.RequireAdmin(requester)
	}
	return err
}
