package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eventhub/backend/internal/domain/shared"
)

// Billing errors
var (
	ErrReferenceNotFound    = shared.NewDomainError("REFERENCE_NOT_FOUND", "Referenced resource does not exist")
	ErrInvoiceNotFound      = shared.NewDomainError("NOT_FOUND", "Invoice not found")
	ErrInvoiceAlreadyExists = shared.NewDomainError("ALREADY_EXISTS", "Invoice already exists for this event")
	ErrPaymentNotFound      = shared.NewDomainError("NOT_FOUND", "Payment not found")
	ErrInvalidStatus        = shared.NewDomainError("INVALID_STATUS", "Invalid invoice status")
	ErrAlreadyPaid          = shared.NewDomainError("ALREADY_PAID", "Invoice has already been paid")
	ErrInvalidAmount        = shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be greater than zero")
	ErrGatewayUnavailable   = shared.NewDomainError("GATEWAY_UNAVAILABLE", "Payment gateway is unavailable")
	ErrGatewayRejected      = shared.NewDomainError("GATEWAY_REJECTED", "Payment gateway rejected the request")
	ErrGatewayNotRegistered = shared.NewDomainError("GATEWAY_NOT_SUPPORTED", "Payment gateway is not configured")
	ErrInvalidSignature     = shared.NewDomainError("INVALID_SIGNATURE", "Callback signature verification failed")
	ErrInvalidCallback      = shared.NewDomainError("INVALID_CALLBACK", "Callback payload is malformed")
	ErrAmountMismatch       = shared.NewDomainError("AMOUNT_MISMATCH", "Callback amount does not match the payment amount")
	ErrInvoiceHasPayments   = shared.NewDomainError("INVOICE_HAS_PAYMENTS", "Invoice has payment records and cannot be deleted")
	ErrPaymentFinalized     = shared.NewDomainError("INVALID_STATE", "Payment has already reached a terminal status")
)

// NewReferenceNotFoundError reports a dangling reference by kind and id
func NewReferenceNotFoundError(kind, id string) *shared.DomainError {
	return shared.Wrap(ErrReferenceNotFound, fmt.Sprintf("%s %q does not exist", kind, id))
}

// NewAmountMismatchError reports both the recorded and the reported amount
func NewAmountMismatchError(transactionID string, expected, received decimal.Decimal) *shared.DomainError {
	return shared.Wrap(ErrAmountMismatch, fmt.Sprintf(
		"amount mismatch for transaction %s: expected %s, received %s",
		transactionID, expected.String(), received.String(),
	))
}
