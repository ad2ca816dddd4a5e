package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eventhub/backend/internal/domain/shared"
)

// GatewayType identifies an external payment gateway
type GatewayType string

const (
	// GatewayMoMo is the MoMo e-wallet gateway
	GatewayMoMo GatewayType = "MOMO"
	// GatewayVNPay is the VNPay bank gateway
	GatewayVNPay GatewayType = "VNPAY"
)

// IsValid returns true if the gateway type is known
func (g GatewayType) IsValid() bool {
	switch g {
	case GatewayMoMo, GatewayVNPay:
		return true
	default:
		return false
	}
}

// String returns the string representation of GatewayType
func (g GatewayType) String() string {
	return string(g)
}

// ParseGatewayType maps user input onto a gateway type, ignoring case
func ParseGatewayType(value string) (GatewayType, error) {
	g := GatewayType(strings.ToUpper(strings.TrimSpace(value)))
	if !g.IsValid() {
		return "", shared.Wrap(ErrGatewayNotRegistered, fmt.Sprintf("unknown payment gateway %q", value))
	}
	return g, nil
}

// PaymentStatus is the state of one payment attempt
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

// IsTerminal returns true once the gateway outcome has been applied
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// Payment is one attempt to settle an invoice through a gateway.
// TransactionID is the order id sent to the gateway and the key callbacks are matched on.
type Payment struct {
	shared.BaseAggregateRoot
	InvoiceID            uuid.UUID
	Method               GatewayType
	Amount               decimal.Decimal
	TransactionID        string
	GatewayTransactionID string
	ResultCode           string
	Status               PaymentStatus
	CompletedAt          *time.Time
}

// NewPayment creates a pending payment for the invoice's payable amount
func NewPayment(invoice *Invoice, method GatewayType, transactionID string) (*Payment, error) {
	if invoice == nil {
		return nil, ErrInvoiceNotFound
	}
	if err := invoice.EnsurePayable(); err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, shared.Wrap(ErrGatewayNotRegistered, fmt.Sprintf("unknown payment gateway %q", method))
	}
	if strings.TrimSpace(transactionID) == "" {
		return nil, shared.Wrap(shared.ErrInvalidInput, "transaction id is required")
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceID:         invoice.ID,
		Method:            method,
		Amount:            invoice.PayableAmount(),
		TransactionID:     transactionID,
		Status:            PaymentStatusPending,
	}, nil
}

// MatchesAmount reports whether a gateway-reported amount equals the recorded amount exactly
func (p *Payment) MatchesAmount(amount decimal.Decimal) bool {
	return p.Amount.Equal(amount)
}

// Complete records a successful gateway outcome
func (p *Payment) Complete(gatewayTransactionID, resultCode string) error {
	if p.Status.IsTerminal() {
		return ErrPaymentFinalized
	}
	now := time.Now()
	p.Status = PaymentStatusCompleted
	p.GatewayTransactionID = gatewayTransactionID
	p.ResultCode = resultCode
	p.CompletedAt = &now
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Fail records an unsuccessful gateway outcome
func (p *Payment) Fail(gatewayTransactionID, resultCode string) error {
	if p.Status.IsTerminal() {
		return ErrPaymentFinalized
	}
	now := time.Now()
	p.Status = PaymentStatusFailed
	p.GatewayTransactionID = gatewayTransactionID
	p.ResultCode = resultCode
	p.CompletedAt = &now
	p.Touch()
	p.IncrementVersion()
	return nil
}
