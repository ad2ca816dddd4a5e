package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/eventhub/backend/internal/infrastructure/telemetry"
)

// setupTestTracer installs an in-memory span recorder as the global provider
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "invoice", "get_or_create",
		telemetry.WithAttribute(telemetry.SpanAttrEventID, "event-1"),
		telemetry.WithSpanKind(trace.SpanKindServer))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "invoice.get_or_create", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, "event-1", attrMap(spans[0])[telemetry.SpanAttrEventID].AsString())
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)
	invoiceID := uuid.New()

	_, span := telemetry.StartSpan(context.Background(), "payment.initiate")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, invoiceID,
		telemetry.SpanAttrPaymentGateway, "MOMO",
		"lines", 3,
		"retried", false,
		42, "non-string key is skipped",
		"dangling",
	)
	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, int64(250000))
	span.End()

	attrs := attrMap(sr.Ended()[0])
	assert.Equal(t, invoiceID.String(), attrs[telemetry.SpanAttrInvoiceID].AsString())
	assert.Equal(t, "MOMO", attrs[telemetry.SpanAttrPaymentGateway].AsString())
	assert.Equal(t, int64(3), attrs["lines"].AsInt64())
	assert.False(t, attrs["retried"].AsBool())
	assert.Equal(t, int64(250000), attrs[telemetry.SpanAttrAmount].AsInt64())
	assert.NotContains(t, attrs, attribute.Key("dangling"))
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, failed := telemetry.StartSpan(context.Background(), "callback.momo")
	telemetry.RecordError(failed, errors.New("invalid signature"))
	failed.End()

	_, ok := telemetry.StartSpan(context.Background(), "callback.vnpay")
	telemetry.RecordError(ok, nil)
	ok.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "invalid signature", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}

func TestRecordLock(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartSpan(context.Background(), "payment_callback.apply")
	telemetry.RecordLock(ctx, "payment:tx:EVH1", 40*time.Millisecond, true)
	telemetry.RecordLock(ctx, "payment:tx:EVH1", 2*time.Second, false)
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 2)
	assert.Equal(t, telemetry.EventLockAcquired, events[0].Name)
	assert.Equal(t, telemetry.EventLockMissed, events[1].Name)
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range events[1].Attributes {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "payment:tx:EVH1", attrs[telemetry.SpanAttrLockKey].AsString())
	assert.Equal(t, int64(2000), attrs[telemetry.SpanAttrLockWait].AsInt64())

	assert.NotPanics(t, func() {
		telemetry.RecordLock(context.Background(), "invoice:event:1", 0, true)
	})
}

func TestNilSpanHelpersAreSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "k", "v")
		telemetry.SetAttribute(nil, "k", "v")
		telemetry.RecordError(nil, errors.New("x"))
	})
}
