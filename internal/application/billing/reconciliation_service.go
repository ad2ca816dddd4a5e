package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/shared"
	"github.com/eventhub/backend/internal/infrastructure/telemetry"
)

// ReconciliationService applies verified gateway callbacks to payments and invoices
type ReconciliationService struct {
	gateways *GatewayRegistry
	invoices billing.InvoiceRepository
	payments billing.PaymentRepository
	logs     billing.CallbackLogRepository
	locker   shared.KeyedLocker
	lockCfg  shared.LockConfig
	metrics  *telemetry.BillingMetrics
	logger   *zap.Logger
}

// ReconciliationServiceConfig holds the collaborators of ReconciliationService.
// CallbackLogs, Locker and Metrics are optional.
type ReconciliationServiceConfig struct {
	Gateways     *GatewayRegistry
	Invoices     billing.InvoiceRepository
	Payments     billing.PaymentRepository
	CallbackLogs billing.CallbackLogRepository
	Locker       shared.KeyedLocker
	LockCfg      shared.LockConfig
	Metrics      *telemetry.BillingMetrics
	Logger       *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(cfg ReconciliationServiceConfig) *ReconciliationService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lockCfg := cfg.LockCfg
	if lockCfg.TTL <= 0 || lockCfg.Wait <= 0 {
		lockCfg = shared.DefaultLockConfig()
	}
	return &ReconciliationService{
		gateways: cfg.Gateways,
		invoices: cfg.Invoices,
		payments: cfg.Payments,
		logs:     cfg.CallbackLogs,
		locker:   cfg.Locker,
		lockCfg:  lockCfg,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// Reconciliation is the payment and invoice after a callback was applied
type Reconciliation struct {
	Payment          *billing.Payment
	Invoice          *billing.Invoice
	AlreadyProcessed bool
}

// ProcessCallback verifies a raw callback from gatewayType and applies it.
// The result always carries the acknowledgement body for the gateway; the error
// tells the transport how the callback failed.
func (s *ReconciliationService) ProcessCallback(ctx context.Context, gatewayType billing.GatewayType, payload []byte) (*CallbackResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_callback", "process",
		telemetry.WithAttribute(telemetry.SpanAttrPaymentGateway, gatewayType.String()))
	defer span.End()

	gateway, err := s.gateways.Get(gatewayType)
	if err != nil {
		s.logger.Error("Gateway not registered",
			zap.String("gateway", gatewayType.String()),
			zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	callback, err := gateway.VerifyCallback(ctx, payload)
	if err != nil {
		outcome := billing.CallbackOutcomeInvalidPayload
		if errors.Is(err, billing.ErrInvalidSignature) {
			outcome = billing.CallbackOutcomeInvalidSignature
		}
		s.logger.Warn("Callback verification failed",
			zap.String("gateway", gatewayType.String()),
			zap.String("outcome", string(outcome)),
			zap.Error(err))
		telemetry.RecordError(span, err)
		s.finish(ctx, gatewayType, "", payload, outcome, err)
		return s.result(gateway, nil, nil, outcome, ""), err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrTransactionID, callback.TransactionID)
	s.logger.Info("Payment callback received",
		zap.String("gateway", gatewayType.String()),
		zap.String("transaction_id", callback.TransactionID),
		zap.String("gateway_transaction_id", callback.GatewayTransactionID),
		zap.String("result_code", callback.ResultCode),
		zap.Bool("success", callback.Success),
		zap.String("amount", callback.Amount.String()))

	rec, err := s.ApplyCallback(ctx, callback)
	outcome := classifyCallbackError(err)
	if err == nil && rec.AlreadyProcessed {
		outcome = billing.CallbackOutcomeAlreadyProcessed
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrCallbackOutcome, string(outcome))
	if err != nil {
		telemetry.RecordError(span, err)
	}
	s.finish(ctx, gatewayType, callback.TransactionID, payload, outcome, err)

	message := ""
	if outcome == billing.CallbackOutcomeError {
		message = "internal error"
	}
	result := s.result(gateway, callback, rec, outcome, message)
	return result, err
}

// ApplyCallback applies a verified callback to its payment and invoice.
// A payment already in a terminal status is returned unchanged without writes.
func (s *ReconciliationService) ApplyCallback(ctx context.Context, callback *billing.GatewayCallback) (*Reconciliation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_callback", "apply",
		telemetry.WithAttribute(telemetry.SpanAttrTransactionID, callback.TransactionID))
	defer span.End()

	if callback.TransactionID == "" {
		return nil, shared.Wrap(billing.ErrInvalidCallback, "callback has no transaction id")
	}

	release, err := s.lockTransaction(ctx, callback.TransactionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	payment, err := s.payments.FindByTransactionID(ctx, callback.TransactionID)
	if err != nil {
		if errors.Is(err, billing.ErrPaymentNotFound) {
			s.logger.Warn("Callback for unknown transaction",
				zap.String("transaction_id", callback.TransactionID),
				zap.String("gateway", callback.Gateway.String()))
		}
		return nil, err
	}

	if !payment.MatchesAmount(callback.Amount) {
		s.logger.Warn("Callback amount does not match payment",
			zap.String("transaction_id", callback.TransactionID),
			zap.String("expected", payment.Amount.String()),
			zap.String("received", callback.Amount.String()))
		return nil, billing.NewAmountMismatchError(callback.TransactionID, payment.Amount, callback.Amount)
	}

	invoice, err := s.invoices.FindByID(ctx, payment.InvoiceID)
	if err != nil {
		return nil, err
	}

	if payment.Status.IsTerminal() {
		s.logger.Info("Callback already applied",
			zap.String("transaction_id", callback.TransactionID),
			zap.String("payment_status", string(payment.Status)))
		return &Reconciliation{Payment: payment, Invoice: invoice, AlreadyProcessed: true}, nil
	}

	if callback.Success {
		err = payment.Complete(callback.GatewayTransactionID, callback.ResultCode)
	} else {
		err = payment.Fail(callback.GatewayTransactionID, callback.ResultCode)
	}
	if err != nil {
		return nil, err
	}
	invoice.ApplyPaymentOutcome(callback.Success)

	if err := s.payments.SaveOutcome(ctx, payment, invoice); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to persist callback outcome",
			zap.String("transaction_id", callback.TransactionID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Payment reconciled",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("transaction_id", payment.TransactionID),
		zap.String("payment_status", string(payment.Status)),
		zap.String("invoice_status", string(invoice.Status)))

	return &Reconciliation{Payment: payment, Invoice: invoice}, nil
}

// classifyCallbackError maps an ApplyCallback error onto a callback outcome
func classifyCallbackError(err error) billing.CallbackOutcome {
	switch {
	case err == nil:
		return billing.CallbackOutcomeProcessed
	case errors.Is(err, billing.ErrPaymentNotFound):
		return billing.CallbackOutcomeNotFound
	case errors.Is(err, billing.ErrAmountMismatch):
		return billing.CallbackOutcomeAmountMismatch
	case errors.Is(err, billing.ErrInvalidCallback):
		return billing.CallbackOutcomeInvalidPayload
	default:
		return billing.CallbackOutcomeError
	}
}

func (s *ReconciliationService) result(
	gateway billing.PaymentGateway,
	callback *billing.GatewayCallback,
	rec *Reconciliation,
	outcome billing.CallbackOutcome,
	message string,
) *CallbackResult {
	result := &CallbackResult{
		Outcome:         outcome,
		GatewayResponse: gateway.GenerateCallbackResponse(callback, outcome, message),
		ContentType:     gateway.CallbackContentType(),
	}
	if rec != nil {
		payment := ToPaymentResponse(rec.Payment)
		invoice := ToInvoiceResponse(rec.Invoice)
		result.Payment = &payment
		result.Invoice = &invoice
		result.AlreadyProcessed = rec.AlreadyProcessed
	}
	return result
}

// finish records metrics and the audit log entry. Audit failures are logged, never returned.
func (s *ReconciliationService) finish(
	ctx context.Context,
	gatewayType billing.GatewayType,
	transactionID string,
	payload []byte,
	outcome billing.CallbackOutcome,
	cause error,
) {
	s.metrics.RecordCallback(ctx, gatewayType.String(), string(outcome))

	if s.logs == nil {
		return
	}
	entry := &billing.CallbackLog{
		ID:            uuid.New(),
		Gateway:       gatewayType,
		TransactionID: transactionID,
		Payload:       payload,
		Outcome:       outcome,
		ReceivedAt:    time.Now(),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if err := s.logs.Record(ctx, entry); err != nil {
		s.logger.Warn("Failed to record callback log",
			zap.String("transaction_id", transactionID),
			zap.Error(err))
	}
}

// lockTransaction serializes concurrent deliveries of the same callback
func (s *ReconciliationService) lockTransaction(ctx context.Context, transactionID string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	key := "payment:tx:" + transactionID
	start := time.Now()
	release, err := s.locker.Acquire(ctx, key, s.lockCfg.TTL, s.lockCfg.Wait)
	telemetry.RecordLock(ctx, key, time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}
	return release, nil
}
