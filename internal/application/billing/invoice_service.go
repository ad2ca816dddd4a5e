package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/domain/shared"
	"github.com/eventhub/backend/internal/infrastructure/telemetry"
)

// InvoiceService owns invoice creation and the admin status operations
type InvoiceService struct {
	invoices billing.InvoiceRepository
	payments billing.PaymentRepository
	snapshot *billing.SnapshotBuilder
	access   invoiceAccess
	locker   shared.KeyedLocker
	lockCfg  shared.LockConfig
	metrics  *telemetry.BillingMetrics
	logger   *zap.Logger
}

// InvoiceServiceConfig holds the collaborators of InvoiceService.
// Locker and Metrics are optional.
type InvoiceServiceConfig struct {
	Invoices billing.InvoiceRepository
	Payments billing.PaymentRepository
	Events   planning.EventReader
	Catalog  planning.CatalogReader
	Locker   shared.KeyedLocker
	LockCfg  shared.LockConfig
	Metrics  *telemetry.BillingMetrics
	Logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(cfg InvoiceServiceConfig) *InvoiceService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lockCfg := cfg.LockCfg
	if lockCfg.TTL <= 0 || lockCfg.Wait <= 0 {
		lockCfg = shared.DefaultLockConfig()
	}

	return &InvoiceService{
		invoices: cfg.Invoices,
		payments: cfg.Payments,
		snapshot: billing.NewSnapshotBuilder(cfg.Catalog),
		access:   invoiceAccess{events: cfg.Events, policy: planning.NewAccessPolicy()},
		locker:   cfg.Locker,
		lockCfg:  lockCfg,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// GetOrCreate returns the invoice of an event, creating it from current catalog prices
// on first request. An existing invoice is returned as stored, never re-priced.
func (s *InvoiceService) GetOrCreate(ctx context.Context, eventID string, requester planning.Requester) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "get_or_create",
		telemetry.WithAttribute(telemetry.SpanAttrEventID, eventID))
	defer span.End()

	event, err := s.access.loadEventForView(ctx, eventID, requester)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoice, err := s.findByEvent(ctx, eventID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if invoice != nil {
		resp := ToInvoiceResponse(invoice)
		return &resp, nil
	}

	release := s.lockEvent(ctx, eventID)
	defer release()

	// another request may have created it while we waited for the lock
	invoice, err = s.findByEvent(ctx, eventID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if invoice != nil {
		resp := ToInvoiceResponse(invoice)
		return &resp, nil
	}

	lines, err := s.snapshot.Build(ctx, event)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoice, err = billing.NewInvoice(event.ID, lines)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		if !errors.Is(err, billing.ErrInvoiceAlreadyExists) {
			telemetry.RecordError(span, err)
			return nil, err
		}
		// lost the race on the unique index, the winner's invoice is the answer
		existing, findErr := s.invoices.FindByEventID(ctx, eventID)
		if findErr != nil {
			telemetry.RecordError(span, findErr)
			return nil, findErr
		}
		s.logger.Info("Invoice created concurrently, returning existing",
			zap.String("event_id", eventID),
			zap.String("invoice_id", existing.ID.String()))
		resp := ToInvoiceResponse(existing)
		return &resp, nil
	}

	s.metrics.RecordInvoiceCreated(ctx, invoice.TotalAmount)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, invoice.ID.String(),
		telemetry.SpanAttrAmount, invoice.TotalAmount.String(),
	)
	s.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("event_id", eventID),
		zap.Int("lines", len(invoice.Lines)),
		zap.String("total_amount", invoice.TotalAmount.String()),
		zap.String("requester_id", requester.ID))

	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// Get returns an invoice the requester may view
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID, requester planning.Requester) (*InvoiceResponse, error) {
	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireInvoiceView(ctx, invoice, requester); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// List returns a page of invoices (admin only)
func (s *InvoiceService) List(ctx context.Context, req ListInvoicesRequest, requester planning.Requester) (*shared.Paginated[InvoiceResponse], error) {
	if err := s.access.policy.RequireAdmin(requester); err != nil {
		return nil, err
	}

	filter := billing.InvoiceFilter{Filter: shared.DefaultFilter(), EventID: req.EventID}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	if req.Status != "" {
		status, err := billing.ParseInvoiceStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}

	invoices, total, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToInvoiceResponses(invoices), total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateStatus sets an invoice to any recognized status (admin only).
// Payments are not touched.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, requester planning.Requester) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update_status",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, id.String()))
	defer span.End()

	if err := s.access.policy.RequireAdmin(requester); err != nil {
		return nil, err
	}
	newStatus, err := billing.ParseInvoiceStatus(status)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := invoice.Status
	if err := invoice.SetStatus(newStatus); err != nil {
		return nil, err
	}
	if previous != newStatus {
		if err := s.invoices.Save(ctx, invoice); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.logger.Info("Invoice status changed by admin",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(newStatus)),
			zap.String("admin_id", requester.ID))
	}

	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// Delete removes an invoice (admin only). Invoices with recorded payments are kept.
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID, requester planning.Requester) error {
	if err := s.access.policy.RequireAdmin(requester); err != nil {
		return err
	}

	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.payments.CountByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.Wrap(billing.ErrInvoiceHasPayments,
			fmt.Sprintf("invoice %s has %d payment record(s)", invoice.ID, count))
	}

	if err := s.invoices.Delete(ctx, invoice.ID); err != nil {
		return err
	}
	s.logger.Info("Invoice deleted",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("event_id", invoice.EventID),
		zap.String("admin_id", requester.ID))
	return nil
}

// findByEvent returns nil without error when the event has no invoice yet
func (s *InvoiceService) findByEvent(ctx context.Context, eventID string) (*billing.Invoice, error) {
	invoice, err := s.invoices.FindByEventID(ctx, eventID)
	if errors.Is(err, billing.ErrInvoiceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// lockEvent serializes invoice creation per event. When the lock cannot be taken the
// unique index on event_id still rejects the duplicate, so creation proceeds unlocked.
func (s *InvoiceService) lockEvent(ctx context.Context, eventID string) func() {
	if s.locker == nil {
		return func() {}
	}
	key := "invoice:event:" + eventID
	start := time.Now()
	release, err := s.locker.Acquire(ctx, key, s.lockCfg.TTL, s.lockCfg.Wait)
	telemetry.RecordLock(ctx, key, time.Since(start), err == nil)
	if err != nil {
		s.logger.Warn("Invoice creation lock not acquired, relying on unique index",
			zap.String("event_id", eventID),
			zap.Error(err))
		return func() {}
	}
	return release
}
