package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eventhub/backend/internal/domain/billing"
)

// InvoiceLineResponse represents one frozen invoice line in API responses
type InvoiceLineResponse struct {
	ServiceID   string          `json:"service_id"`
	ServiceName string          `json:"service_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID          uuid.UUID             `json:"id"`
	EventID     string                `json:"event_id"`
	Lines       []InvoiceLineResponse `json:"lines"`
	TotalAmount decimal.Decimal       `json:"total_amount"`
	Currency    string                `json:"currency"`
	Status      string                `json:"status"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Version     int                   `json:"version"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, line := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			ServiceID:   line.ServiceID,
			ServiceName: line.ServiceName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Extension(),
		}
	}
	return InvoiceResponse{
		ID:          inv.ID,
		EventID:     inv.EventID,
		Lines:       lines,
		TotalAmount: inv.TotalAmount,
		Currency:    inv.Currency,
		Status:      string(inv.Status),
		CreatedAt:   inv.CreatedAt,
		UpdatedAt:   inv.UpdatedAt,
		Version:     inv.Version,
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []*billing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = ToInvoiceResponse(inv)
	}
	return out
}

// PaymentResponse represents a payment attempt in API responses
type PaymentResponse struct {
	ID                   uuid.UUID       `json:"id"`
	InvoiceID            uuid.UUID       `json:"invoice_id"`
	Method               string          `json:"method"`
	Amount               decimal.Decimal `json:"amount"`
	TransactionID        string          `json:"transaction_id"`
	GatewayTransactionID string          `json:"gateway_transaction_id,omitempty"`
	ResultCode           string          `json:"result_code,omitempty"`
	Status               string          `json:"status"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID,
		InvoiceID:            p.InvoiceID,
		Method:               string(p.Method),
		Amount:               p.Amount,
		TransactionID:        p.TransactionID,
		GatewayTransactionID: p.GatewayTransactionID,
		ResultCode:           p.ResultCode,
		Status:               string(p.Status),
		CompletedAt:          p.CompletedAt,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// ListInvoicesRequest represents the admin invoice listing query
type ListInvoicesRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=Pending Paid Unpaid Canceled"`
	EventID  string `form:"event_id" binding:"omitempty,max=64"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at updated_at total_amount status"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UpdateInvoiceStatusRequest represents an admin status change
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// InitiatePaymentRequest represents a request to pay an invoice
type InitiatePaymentRequest struct {
	Gateway   string `json:"gateway" binding:"omitempty,oneof=MOMO VNPAY momo vnpay"`
	ReturnURL string `json:"return_url" binding:"omitempty,url,max=500"`
	// ClientIP is filled from the request, never from the body
	ClientIP string `json:"-"`
}

// InitiatePaymentResponse is returned once the gateway accepted the attempt
type InitiatePaymentResponse struct {
	RedirectURL   string          `json:"redirect_url"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	TransactionID string          `json:"transaction_id"`
	Gateway       string          `json:"gateway"`
	Amount        decimal.Decimal `json:"amount"`
}

// CallbackResult reports how a gateway callback was handled.
// GatewayResponse is the body to return to the gateway in its own format.
type CallbackResult struct {
	Outcome          billing.CallbackOutcome
	AlreadyProcessed bool
	Payment          *PaymentResponse
	Invoice          *InvoiceResponse
	GatewayResponse  []byte
	ContentType      string
}
