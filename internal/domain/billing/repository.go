package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/domain/shared"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	Status  InvoiceStatus
	EventID string
}

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	// FindByID returns ErrInvoiceNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByEventID returns ErrInvoiceNotFound when the event has no invoice
	FindByEventID(ctx context.Context, eventID string) (*Invoice, error)

	// List returns a page of invoices and the total count
	List(ctx context.Context, filter InvoiceFilter) ([]*Invoice, int64, error)

	// Create inserts a new invoice.
	// Returns ErrInvoiceAlreadyExists when the event already has one.
	Create(ctx context.Context, invoice *Invoice) error

	// Save persists status changes of an existing invoice
	Save(ctx context.Context, invoice *Invoice) error

	// Delete removes an invoice, returning ErrInvoiceNotFound when absent
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentRepository persists payment attempts
type PaymentRepository interface {
	// FindByID returns ErrPaymentNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByTransactionID returns ErrPaymentNotFound when absent
	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)

	// Create inserts a new pending payment; transaction ids are unique
	Create(ctx context.Context, payment *Payment) error

	// CountByInvoiceID counts payment attempts recorded for an invoice
	CountByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (int64, error)

	// SaveOutcome writes the payment and then its invoice.
	// Stores with transactions apply both or neither.
	SaveOutcome(ctx context.Context, payment *Payment, invoice *Invoice) error
}

// CallbackLog records one inbound gateway callback for audit and replay
type CallbackLog struct {
	ID            uuid.UUID
	Gateway       GatewayType
	TransactionID string
	Payload       []byte
	Outcome       CallbackOutcome
	Error         string
	ReceivedAt    time.Time
}

// CallbackLogRepository stores callback audit records
type CallbackLogRepository interface {
	Record(ctx context.Context, log *CallbackLog) error
}
