package billing

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/planning"
)

// memoryStore is an in-memory invoice and payment store enforcing the same
// uniqueness rules as the SQL schema. It counts writes so tests can assert replays do none.
type memoryStore struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]billing.Invoice
	payments map[uuid.UUID]billing.Payment
	writes   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		invoices: make(map[uuid.UUID]billing.Invoice),
		payments: make(map[uuid.UUID]billing.Payment),
	}
}

func (s *memoryStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *memoryStore) invoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invoices)
}

// invoice store

type memoryInvoices struct{ *memoryStore }

func (r memoryInvoices) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, billing.ErrInvoiceNotFound
	}
	return &inv, nil
}

func (r memoryInvoices) FindByEventID(_ context.Context, eventID string) (*billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.EventID == eventID {
			found := inv
			return &found, nil
		}
	}
	return nil, billing.ErrInvoiceNotFound
}

func (r memoryInvoices) List(_ context.Context, _ billing.InvoiceFilter) ([]*billing.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*billing.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		copied := inv
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r memoryInvoices) Create(_ context.Context, invoice *billing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.EventID == invoice.EventID {
			return billing.ErrInvoiceAlreadyExists
		}
	}
	r.invoices[invoice.ID] = *invoice
	r.writes++
	return nil
}

func (r memoryInvoices) Save(_ context.Context, invoice *billing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[invoice.ID]; !ok {
		return billing.ErrInvoiceNotFound
	}
	r.invoices[invoice.ID] = *invoice
	r.writes++
	return nil
}

func (r memoryInvoices) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[id]; !ok {
		return billing.ErrInvoiceNotFound
	}
	delete(r.invoices, id)
	r.writes++
	return nil
}

// payment store

type memoryPayments struct{ *memoryStore }

func (r memoryPayments) FindByID(_ context.Context, id uuid.UUID) (*billing.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, billing.ErrPaymentNotFound
	}
	return &p, nil
}

func (r memoryPayments) FindByTransactionID(_ context.Context, transactionID string) (*billing.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.TransactionID == transactionID {
			found := p
			return &found, nil
		}
	}
	return nil, billing.ErrPaymentNotFound
}

func (r memoryPayments) Create(_ context.Context, payment *billing.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = *payment
	r.writes++
	return nil
}

func (r memoryPayments) CountByInvoiceID(_ context.Context, invoiceID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			n++
		}
	}
	return n, nil
}

func (r memoryPayments) SaveOutcome(_ context.Context, payment *billing.Payment, invoice *billing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = *payment
	r.invoices[invoice.ID] = *invoice
	r.writes += 2
	return nil
}

// memoryCatalog serves mutable catalog prices
type memoryCatalog struct {
	mu       sync.Mutex
	services map[string]*planning.CatalogService
}

func (c *memoryCatalog) FindByIDs(_ context.Context, ids []string) (map[string]*planning.CatalogService, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]*planning.CatalogService, len(ids))
	for _, id := range ids {
		if svc, ok := c.services[id]; ok {
			copied := *svc
			out[id] = &copied
		}
	}
	return out, nil
}

func (c *memoryCatalog) setPrice(id string, price int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[id].Price = decimal.NewFromInt(price)
}

// memoryEvents serves fixed events
type memoryEvents map[string]*planning.Event

func (e memoryEvents) FindByID(_ context.Context, id string) (*planning.Event, error) {
	ev, ok := e[id]
	if !ok {
		return nil, planning.ErrEventNotFound
	}
	return ev, nil
}
