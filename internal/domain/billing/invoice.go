package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eventhub/backend/internal/domain/shared"
)

// CurrencyVND is the only settlement currency supported by the configured gateways
const CurrencyVND = "VND"

// minorUnitPlaces is the number of decimal places the gateways accept for VND
const minorUnitPlaces int32 = 0

// InvoiceStatus is the closed set of invoice states
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "Pending"
	InvoiceStatusPaid     InvoiceStatus = "Paid"
	InvoiceStatusUnpaid   InvoiceStatus = "Unpaid"
	InvoiceStatusCanceled InvoiceStatus = "Canceled"
)

// AllInvoiceStatuses lists every recognized invoice status
func AllInvoiceStatuses() []InvoiceStatus {
	return []InvoiceStatus{InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusUnpaid, InvoiceStatusCanceled}
}

// IsValid returns true if the status is a recognized value
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusUnpaid, InvoiceStatusCanceled:
		return true
	default:
		return false
	}
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// ParseInvoiceStatus maps user input onto the enum, ignoring case
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	for _, s := range AllInvoiceStatuses() {
		if strings.EqualFold(string(s), strings.TrimSpace(value)) {
			return s, nil
		}
	}
	return "", shared.Wrap(ErrInvalidStatus, fmt.Sprintf("invalid invoice status %q", value))
}

// InvoiceLine is one priced service in an invoice.
// UnitPrice is the catalog price captured when the invoice was created.
type InvoiceLine struct {
	ServiceID   string
	ServiceName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Extension returns quantity times unit price
func (l InvoiceLine) Extension() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ComputeTotal sums the extensions of all lines
func ComputeTotal(lines []InvoiceLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Extension())
	}
	return total
}

// RoundToMinorUnit rounds an amount to what the gateways can charge
func RoundToMinorUnit(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(minorUnitPlaces)
}

// Invoice is the billing record for one event.
// Lines and TotalAmount are fixed at creation; only Status changes afterwards.
type Invoice struct {
	shared.BaseAggregateRoot
	EventID     string
	Lines       []InvoiceLine
	TotalAmount decimal.Decimal
	Currency    string
	Status      InvoiceStatus
}

// NewInvoice creates a pending invoice for eventID from a pricing snapshot
func NewInvoice(eventID string, lines []InvoiceLine) (*Invoice, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, shared.Wrap(shared.ErrInvalidInput, "event id is required")
	}
	for _, line := range lines {
		if line.Quantity < 0 {
			return nil, shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("negative quantity for service %s", line.ServiceID))
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("negative price for service %s", line.ServiceID))
		}
	}

	frozen := make([]InvoiceLine, len(lines))
	copy(frozen, lines)

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EventID:           eventID,
		Lines:             frozen,
		TotalAmount:       ComputeTotal(frozen),
		Currency:          CurrencyVND,
		Status:            InvoiceStatusPending,
	}, nil
}

// IsPaid returns true if the invoice has been settled
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// PayableAmount is the total rounded to the gateway minor unit
func (i *Invoice) PayableAmount() decimal.Decimal {
	return RoundToMinorUnit(i.TotalAmount)
}

// EnsurePayable checks that a new payment attempt may be started
func (i *Invoice) EnsurePayable() error {
	if i.Status == InvoiceStatusPaid {
		return ErrAlreadyPaid
	}
	if i.Status == InvoiceStatusCanceled {
		return shared.Wrap(ErrInvalidStatus, "invoice is canceled")
	}
	if !i.PayableAmount().IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// SetStatus moves the invoice to any recognized status
func (i *Invoice) SetStatus(status InvoiceStatus) error {
	if !status.IsValid() {
		return shared.Wrap(ErrInvalidStatus, fmt.Sprintf("invalid invoice status %q", status))
	}
	if i.Status == status {
		return nil
	}
	i.Status = status
	i.Touch()
	i.IncrementVersion()
	return nil
}

// ApplyPaymentOutcome marks the invoice Paid on success and Unpaid otherwise.
// A failed attempt never downgrades an invoice another attempt already paid.
func (i *Invoice) ApplyPaymentOutcome(success bool) {
	if success {
		_ = i.SetStatus(InvoiceStatusPaid)
		return
	}
	if i.Status == InvoiceStatusPaid {
		return
	}
	_ = i.SetStatus(InvoiceStatusUnpaid)
}
