package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BillingMetrics records invoice, payment and callback activity.
// A nil *BillingMetrics is valid and records nothing.
type BillingMetrics struct {
	invoiceCreatedTotal    *Counter
	invoiceAmountTotal     *Counter
	paymentInitiatedTotal  *Counter
	gatewayRequestDuration *Histogram
	callbackTotal          *Counter
}

// BillingMetricsConfig holds configuration for billing metrics.
type BillingMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBillingMetrics creates the billing instruments on the given meter.
func NewBillingMetrics(cfg BillingMetricsConfig) (*BillingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BillingMetrics{}

	var err error
	bm.invoiceCreatedTotal, err = NewCounter(cfg.Meter,
		"eventhub_invoice_created_total",
		"Total number of invoices created",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceAmountTotal, err = NewCounter(cfg.Meter,
		"eventhub_invoice_amount_total",
		"Total invoiced amount in VND",
		"{dong}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentInitiatedTotal, err = NewCounter(cfg.Meter,
		"eventhub_payment_initiated_total",
		"Total number of payment initiations by gateway and result",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.gatewayRequestDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "eventhub_gateway_request_duration_seconds",
		Description: "Latency of outbound payment gateway calls",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.callbackTotal, err = NewCounter(cfg.Meter,
		"eventhub_payment_callback_total",
		"Total number of gateway callbacks by outcome",
		"{callbacks}",
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("Billing metrics initialized")
	return bm, nil
}

// RecordInvoiceCreated counts a new invoice and its total.
func (bm *BillingMetrics) RecordInvoiceCreated(ctx context.Context, total decimal.Decimal) {
	if bm == nil {
		return
	}
	bm.invoiceCreatedTotal.Inc(ctx)
	bm.invoiceAmountTotal.Add(ctx, total.IntPart())
}

// RecordPaymentInitiated counts a payment initiation attempt and the gateway latency.
func (bm *BillingMetrics) RecordPaymentInitiated(ctx context.Context, gateway string, elapsed time.Duration, err error) {
	if bm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrPaymentGateway.String(gateway),
		AttrResult.String(resultLabel(err)),
	}
	bm.paymentInitiatedTotal.Inc(ctx, attrs...)
	bm.gatewayRequestDuration.RecordDuration(ctx, elapsed, attrs...)
}

// RecordCallback counts a processed gateway callback by outcome.
func (bm *BillingMetrics) RecordCallback(ctx context.Context, gateway, outcome string) {
	if bm == nil {
		return
	}
	bm.callbackTotal.Inc(ctx,
		AttrPaymentGateway.String(gateway),
		AttrCallbackOutcome.String(outcome),
	)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "telemetry", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// Billing metric attribute keys
var (
	AttrPaymentGateway  = attribute.Key("payment_gateway")
	AttrResult          = attribute.Key("result")
	AttrCallbackOutcome = attribute.Key("callback_outcome")
)
