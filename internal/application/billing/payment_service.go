package billing

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/domain/shared"
	"github.com/eventhub/backend/internal/infrastructure/telemetry"
)

// PaymentService starts payment attempts and reports their status
type PaymentService struct {
	invoices billing.InvoiceRepository
	payments billing.PaymentRepository
	gateways *GatewayRegistry
	txIDs    billing.TransactionIDGenerator
	access   invoiceAccess
	// returnHosts lists hosts a caller may name as the browser return target
	returnHosts map[string]struct{}
	metrics     *telemetry.BillingMetrics
	logger      *zap.Logger
}

// PaymentServiceConfig holds the collaborators of PaymentService
type PaymentServiceConfig struct {
	Invoices       billing.InvoiceRepository
	Payments       billing.PaymentRepository
	Events         planning.EventReader
	Gateways       *GatewayRegistry
	TransactionIDs billing.TransactionIDGenerator
	ReturnURLHosts []string
	Metrics        *telemetry.BillingMetrics
	Logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	returnHosts := make(map[string]struct{}, len(cfg.ReturnURLHosts))
	for _, host := range cfg.ReturnURLHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			returnHosts[host] = struct{}{}
		}
	}
	return &PaymentService{
		invoices:    cfg.Invoices,
		payments:    cfg.Payments,
		gateways:    cfg.Gateways,
		txIDs:       cfg.TransactionIDs,
		access:      invoiceAccess{events: cfg.Events, policy: planning.NewAccessPolicy()},
		returnHosts: returnHosts,
		metrics:     cfg.Metrics,
		logger:      logger,
	}
}

// checkReturnURL accepts an empty override or an https/http URL on an allow-listed host.
// With no hosts configured every override is refused and the gateway default applies.
func (s *PaymentService) checkReturnURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Hostname() == "" {
		return shared.Wrap(shared.ErrInvalidInput, "return_url must be an absolute http(s) URL")
	}
	if _, ok := s.returnHosts[strings.ToLower(u.Hostname())]; !ok {
		return shared.Wrap(shared.ErrInvalidInput, fmt.Sprintf("return_url host %q is not allowed", u.Hostname()))
	}
	return nil
}

// Initiate starts a gateway payment for an invoice.
// The pending Payment is persisted only after the gateway accepted the request.
func (s *PaymentService) Initiate(ctx context.Context, invoiceID uuid.UUID, req InitiatePaymentRequest, requester planning.Requester) (*InitiatePaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "initiate",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID.String()))
	defer span.End()

	if err := s.checkReturnURL(req.ReturnURL); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.access.requireInvoiceView(ctx, invoice, requester); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := invoice.EnsurePayable(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	gateway, err := s.gateways.Resolve(req.Gateway)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	payment, err := billing.NewPayment(invoice, gateway.GatewayType(), s.txIDs.NextTransactionID())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentGateway, payment.Method.String(),
		telemetry.SpanAttrTransactionID, payment.TransactionID,
		telemetry.SpanAttrAmount, payment.Amount.String(),
	)

	started := time.Now()
	resp, err := gateway.CreatePayment(ctx, &billing.CreatePaymentRequest{
		TransactionID: payment.TransactionID,
		Amount:        payment.Amount,
		OrderInfo:     fmt.Sprintf("Thanh toan hoa don %s", invoice.ID),
		ReturnURL:     req.ReturnURL,
		ClientIP:      req.ClientIP,
		ExtraData:     invoice.ID.String(),
	})
	s.metrics.RecordPaymentInitiated(ctx, payment.Method.String(), time.Since(started), err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Payment gateway did not accept the payment",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("transaction_id", payment.TransactionID),
			zap.String("gateway", payment.Method.String()),
			zap.Error(err))
		return nil, err
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to persist payment accepted by gateway",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Payment initiated",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("transaction_id", payment.TransactionID),
		zap.String("gateway", payment.Method.String()),
		zap.String("amount", payment.Amount.String()))

	return &InitiatePaymentResponse{
		RedirectURL:   resp.RedirectURL,
		PaymentID:     payment.ID,
		TransactionID: payment.TransactionID,
		Gateway:       payment.Method.String(),
		Amount:        payment.Amount,
	}, nil
}

// GetStatus returns the payment with the given transaction id
func (s *PaymentService) GetStatus(ctx context.Context, transactionID string, requester planning.Requester) (*PaymentResponse, error) {
	payment, err := s.payments.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	invoice, err := s.invoices.FindByID(ctx, payment.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireInvoiceView(ctx, invoice, requester); err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}
