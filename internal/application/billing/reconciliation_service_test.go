package billing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/backend/internal/domain/billing"
)

type reconciliationFixture struct {
	svc     *ReconciliationService
	store   *memoryStore
	gateway *MockPaymentGateway
	logs    *MockCallbackLogRepository
	locker  *localLocker
	invoice *billing.Invoice
	payment *billing.Payment
}

func newReconciliationFixture(t *testing.T) *reconciliationFixture {
	t.Helper()
	store := newMemoryStore()
	ctx := context.Background()

	invoice := sampleInvoice()
	require.NoError(t, memoryInvoices{store}.Create(ctx, invoice))
	payment, err := billing.NewPayment(invoice, billing.GatewayMoMo, "EVH100")
	require.NoError(t, err)
	require.NoError(t, memoryPayments{store}.Create(ctx, payment))

	gateway := newMockGateway(billing.GatewayMoMo)
	logs := new(MockCallbackLogRepository)
	logs.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()
	locker := newLocalLocker()

	svc := NewReconciliationService(ReconciliationServiceConfig{
		Gateways:     NewGatewayRegistry(billing.GatewayMoMo, gateway),
		Invoices:     memoryInvoices{store},
		Payments:     memoryPayments{store},
		CallbackLogs: logs,
		Locker:       locker,
	})

	return &reconciliationFixture{
		svc:     svc,
		store:   store,
		gateway: gateway,
		logs:    logs,
		locker:  locker,
		invoice: invoice,
		payment: payment,
	}
}

func successCallback(amount int64) *billing.GatewayCallback {
	return &billing.GatewayCallback{
		Gateway:              billing.GatewayMoMo,
		TransactionID:        "EVH100",
		GatewayTransactionID: "4088878653",
		ResultCode:           "0",
		Success:              true,
		Amount:               decimal.NewFromInt(amount),
	}
}

func TestReconciliationService_ApplyCallback_Success(t *testing.T) {
	f := newReconciliationFixture(t)

	rec, err := f.svc.ApplyCallback(context.Background(), successCallback(250))

	require.NoError(t, err)
	assert.False(t, rec.AlreadyProcessed)
	assert.Equal(t, billing.PaymentStatusCompleted, rec.Payment.Status)
	assert.Equal(t, "4088878653", rec.Payment.GatewayTransactionID)
	assert.Equal(t, billing.InvoiceStatusPaid, rec.Invoice.Status)
	assert.Equal(t, []string{"payment:tx:EVH100"}, f.locker.acquiredKeys())

	stored, err := memoryInvoices{f.store}.FindByID(context.Background(), f.invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, stored.Status)
}

func TestReconciliationService_ApplyCallback_Failure(t *testing.T) {
	f := newReconciliationFixture(t)
	cb := successCallback(250)
	cb.Success = false
	cb.ResultCode = "1006"

	rec, err := f.svc.ApplyCallback(context.Background(), cb)

	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusFailed, rec.Payment.Status)
	assert.Equal(t, "1006", rec.Payment.ResultCode)
	assert.Equal(t, billing.InvoiceStatusUnpaid, rec.Invoice.Status)
}

func TestReconciliationService_ApplyCallback_ReplayPerformsNoWrites(t *testing.T) {
	f := newReconciliationFixture(t)
	ctx := context.Background()

	first, err := f.svc.ApplyCallback(ctx, successCallback(250))
	require.NoError(t, err)
	writes := f.store.writeCount()

	second, err := f.svc.ApplyCallback(ctx, successCallback(250))

	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, writes, f.store.writeCount())
	assert.Equal(t, first.Payment.Status, second.Payment.Status)
	assert.Equal(t, first.Payment.Version, second.Payment.Version)
	assert.Equal(t, first.Invoice.Status, second.Invoice.Status)
}

func TestReconciliationService_ApplyCallback_AmountMismatch(t *testing.T) {
	f := newReconciliationFixture(t)
	writes := f.store.writeCount()

	_, err := f.svc.ApplyCallback(context.Background(), successCallback(200))

	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrAmountMismatch)
	assert.Contains(t, err.Error(), "250")
	assert.Contains(t, err.Error(), "200")
	assert.Equal(t, writes, f.store.writeCount())

	stored, _ := memoryPayments{f.store}.FindByTransactionID(context.Background(), "EVH100")
	assert.Equal(t, billing.PaymentStatusPending, stored.Status)
}

func TestReconciliationService_ApplyCallback_UnknownTransaction(t *testing.T) {
	f := newReconciliationFixture(t)
	cb := successCallback(250)
	cb.TransactionID = "EVH-unknown"

	_, err := f.svc.ApplyCallback(context.Background(), cb)

	assert.ErrorIs(t, err, billing.ErrPaymentNotFound)
}

func TestReconciliationService_ApplyCallback_ConcurrentRedeliveries(t *testing.T) {
	f := newReconciliationFixture(t)

	const deliveries = 8
	results := make([]*Reconciliation, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := f.svc.ApplyCallback(context.Background(), successCallback(250))
			if err == nil {
				results[i] = rec
			}
		}(i)
	}
	wg.Wait()

	applied := 0
	for _, rec := range results {
		require.NotNil(t, rec)
		if !rec.AlreadyProcessed {
			applied++
		}
		assert.Equal(t, billing.PaymentStatusCompleted, rec.Payment.Status)
	}
	assert.Equal(t, 1, applied)
}

func TestReconciliationService_ProcessCallback(t *testing.T) {
	payload := []byte(`{"orderId":"EVH100"}`)

	t.Run("processed", func(t *testing.T) {
		f := newReconciliationFixture(t)
		f.gateway.On("VerifyCallback", mock.Anything, payload).Return(successCallback(250), nil)

		result, err := f.svc.ProcessCallback(context.Background(), billing.GatewayMoMo, payload)

		require.NoError(t, err)
		assert.Equal(t, billing.CallbackOutcomeProcessed, result.Outcome)
		assert.Equal(t, "Completed", result.Payment.Status)
		assert.Equal(t, "Paid", result.Invoice.Status)
		assert.JSONEq(t, `{"outcome":"processed"}`, string(result.GatewayResponse))
		f.logs.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(l *billing.CallbackLog) bool {
			return l.Outcome == billing.CallbackOutcomeProcessed && l.TransactionID == "EVH100" && l.Error == ""
		}))
	})

	t.Run("replayed", func(t *testing.T) {
		f := newReconciliationFixture(t)
		f.gateway.On("VerifyCallback", mock.Anything, payload).Return(successCallback(250), nil)

		_, err := f.svc.ProcessCallback(context.Background(), billing.GatewayMoMo, payload)
		require.NoError(t, err)
		result, err := f.svc.ProcessCallback(context.Background(), billing.GatewayMoMo, payload)

		require.NoError(t, err)
		assert.Equal(t, billing.CallbackOutcomeAlreadyProcessed, result.Outcome)
		assert.True(t, result.AlreadyProcessed)
	})

	t.Run("invalid signature reaches no state", func(t *testing.T) {
		f := newReconciliationFixture(t)
		writes := f.store.writeCount()
		f.gateway.On("VerifyCallback", mock.Anything, payload).Return(nil, billing.ErrInvalidSignature)

		result, err := f.svc.ProcessCallback(context.Background(), billing.GatewayMoMo, payload)

		assert.ErrorIs(t, err, billing.ErrInvalidSignature)
		assert.Equal(t, billing.CallbackOutcomeInvalidSignature, result.Outcome)
		assert.Nil(t, result.Payment)
		assert.Equal(t, writes, f.store.writeCount())
		assert.Empty(t, f.locker.acquiredKeys())
	})

	t.Run("amount mismatch", func(t *testing.T) {
		f := newReconciliationFixture(t)
		f.gateway.On("VerifyCallback", mock.Anything, payload).Return(successCallback(1), nil)

		result, err := f.svc.ProcessCallback(context.Background(), billing.GatewayMoMo, payload)

		assert.ErrorIs(t, err, billing.ErrAmountMismatch)
		assert.Equal(t, billing.CallbackOutcomeAmountMismatch, result.Outcome)
	})

	t.Run("unregistered gateway", func(t *testing.T) {
		f := newReconciliationFixture(t)

		result, err := f.svc.ProcessCallback(context.Background(), billing.GatewayVNPay, payload)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, billing.ErrGatewayNotRegistered)
	})

	t.Run("audit log failure is not fatal", func(t *testing.T) {
		f := newReconciliationFixture(t)
		f.logs.ExpectedCalls = nil
		f.logs.On("Record", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		f.gateway.On("VerifyCallback", mock.Anything, payload).Return(successCallback(250), nil)

		result, err := f.svc.ProcessCallback(context.Background(), billing.GatewayMoMo, payload)

		require.NoError(t, err)
		assert.Equal(t, billing.CallbackOutcomeProcessed, result.Outcome)
	})
}

func TestClassifyCallbackError(t *testing.T) {
	tests := []struct {
		err  error
		want billing.CallbackOutcome
	}{
		{nil, billing.CallbackOutcomeProcessed},
		{billing.ErrPaymentNotFound, billing.CallbackOutcomeNotFound},
		{billing.NewAmountMismatchError("T", decimal.NewFromInt(1), decimal.NewFromInt(2)), billing.CallbackOutcomeAmountMismatch},
		{billing.ErrInvalidCallback, billing.CallbackOutcomeInvalidPayload},
		{errors.New("db down"), billing.CallbackOutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyCallbackError(tt.err))
	}
}
