package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eventhub/backend/internal/domain/shared"
)

// CreatePaymentRequest is what a gateway needs to start a payment attempt
type CreatePaymentRequest struct {
	// TransactionID is our globally unique order id for this attempt
	TransactionID string
	// Amount in VND, already rounded to the gateway minor unit
	Amount decimal.Decimal
	// OrderInfo is the description shown to the payer
	OrderInfo string
	// ReturnURL overrides the configured browser redirect target. Callers pass only allow-listed hosts.
	ReturnURL string
	// ClientIP is the payer's IP address (required by VNPay)
	ClientIP string
	// ExtraData is opaque merchant data echoed back in the callback
	ExtraData string
}

// Validate validates the create payment request
func (r *CreatePaymentRequest) Validate() error {
	if strings.TrimSpace(r.TransactionID) == "" {
		return shared.Wrap(shared.ErrInvalidInput, "transaction id is required")
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !r.Amount.Equal(RoundToMinorUnit(r.Amount)) {
		return shared.Wrap(ErrInvalidAmount, fmt.Sprintf("amount %s has more precision than the gateway accepts", r.Amount))
	}
	if strings.TrimSpace(r.OrderInfo) == "" {
		return shared.Wrap(shared.ErrInvalidInput, "order info is required")
	}
	return nil
}

// CreatePaymentResponse is the gateway's acceptance of a payment attempt
type CreatePaymentResponse struct {
	Gateway GatewayType
	// RedirectURL is where the payer completes the payment
	RedirectURL string
	// RequestID is the gateway request id, when the gateway issues one
	RequestID string
	// RawResponse is the gateway response body, if any
	RawResponse string
}

// GatewayCallback holds the fields of a callback whose signature has been verified
type GatewayCallback struct {
	Gateway              GatewayType
	TransactionID        string
	GatewayTransactionID string
	RequestID            string
	ResultCode           string
	Success              bool
	Amount               decimal.Decimal
	Message              string
}

// CallbackOutcome classifies how a callback was handled so the gateway can be answered in its own format
type CallbackOutcome string

const (
	CallbackOutcomeProcessed        CallbackOutcome = "processed"
	CallbackOutcomeAlreadyProcessed CallbackOutcome = "already_processed"
	CallbackOutcomeNotFound         CallbackOutcome = "not_found"
	CallbackOutcomeAmountMismatch   CallbackOutcome = "amount_mismatch"
	CallbackOutcomeInvalidSignature CallbackOutcome = "invalid_signature"
	CallbackOutcomeInvalidPayload   CallbackOutcome = "invalid_payload"
	CallbackOutcomeError            CallbackOutcome = "error"
)

// PaymentGateway is the port implemented by each gateway adapter
type PaymentGateway interface {
	// GatewayType returns the gateway identifier
	GatewayType() GatewayType

	// CreatePayment signs and submits a payment initiation.
	// Transport failures are reported as ErrGatewayUnavailable.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error)

	// VerifyCallback checks the signature of a raw callback payload and returns its trusted fields.
	// A signature mismatch is reported as ErrInvalidSignature.
	VerifyCallback(ctx context.Context, payload []byte) (*GatewayCallback, error)

	// GenerateCallbackResponse renders the acknowledgement body the gateway expects.
	// callback is nil when the payload could not be verified.
	GenerateCallbackResponse(callback *GatewayCallback, outcome CallbackOutcome, message string) []byte

	// CallbackContentType is the content type of GenerateCallbackResponse bodies
	CallbackContentType() string
}

// TransactionIDGenerator issues globally unique gateway order ids
type TransactionIDGenerator interface {
	NextTransactionID() string
}
