package billing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/backend/internal/domain/shared"
)

func sampleLines() []InvoiceLine {
	return []InvoiceLine{
		{ServiceID: "svc-a", ServiceName: "Catering", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		{ServiceID: "svc-b", ServiceName: "Sound", Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
	}
}

func TestNewInvoice_ComputesTotalOnce(t *testing.T) {
	inv, err := NewInvoice("evt-1", sampleLines())
	require.NoError(t, err)

	assert.Equal(t, "evt-1", inv.EventID)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, InvoiceStatusPending, inv.Status)
	assert.Equal(t, CurrencyVND, inv.Currency)
	assert.Equal(t, 1, inv.Version)
	assert.NotEqual(t, "", inv.ID.String())
}

func TestNewInvoice_LinesAreCopied(t *testing.T) {
	lines := sampleLines()
	inv, err := NewInvoice("evt-1", lines)
	require.NoError(t, err)

	lines[0].UnitPrice = decimal.NewFromInt(999)
	lines[0].Quantity = 10

	assert.True(t, inv.Lines[0].UnitPrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, inv.Lines[0].Quantity)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(250)))
}

func TestNewInvoice_Validation(t *testing.T) {
	tests := []struct {
		name    string
		eventID string
		lines   []InvoiceLine
	}{
		{"empty event id", "", sampleLines()},
		{"negative quantity", "evt-1", []InvoiceLine{{ServiceID: "x", Quantity: -1, UnitPrice: decimal.NewFromInt(1)}}},
		{"negative price", "evt-1", []InvoiceLine{{ServiceID: "x", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInvoice(tt.eventID, tt.lines)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		})
	}
}

func TestNewInvoice_EmptyLinesYieldZeroTotal(t *testing.T) {
	inv, err := NewInvoice("evt-1", nil)
	require.NoError(t, err)
	assert.True(t, inv.TotalAmount.IsZero())
	assert.Empty(t, inv.Lines)
}

func TestComputeTotal_DecimalExact(t *testing.T) {
	lines := []InvoiceLine{
		{Quantity: 3, UnitPrice: decimal.RequireFromString("0.1")},
		{Quantity: 7, UnitPrice: decimal.RequireFromString("0.2")},
	}
	assert.Equal(t, "1.7", ComputeTotal(lines).String())
}

func TestParseInvoiceStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected InvoiceStatus
		wantErr  bool
	}{
		{"Pending", InvoiceStatusPending, false},
		{"paid", InvoiceStatusPaid, false},
		{" UNPAID ", InvoiceStatusUnpaid, false},
		{"Canceled", InvoiceStatusCanceled, false},
		{"Refunded", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInvoiceStatus(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidStatus))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestInvoice_SetStatus(t *testing.T) {
	inv, err := NewInvoice("evt-1", sampleLines())
	require.NoError(t, err)

	require.NoError(t, inv.SetStatus(InvoiceStatusCanceled))
	assert.Equal(t, InvoiceStatusCanceled, inv.Status)
	assert.Equal(t, 2, inv.Version)

	err = inv.SetStatus("Archived")
	assert.True(t, errors.Is(err, ErrInvalidStatus))
	assert.Equal(t, InvoiceStatusCanceled, inv.Status)

	require.NoError(t, inv.SetStatus(InvoiceStatusCanceled))
	assert.Equal(t, 2, inv.Version, "same status does not bump the version")
}

func TestInvoice_EnsurePayable(t *testing.T) {
	paid, _ := NewInvoice("evt-1", sampleLines())
	paid.Status = InvoiceStatusPaid

	canceled, _ := NewInvoice("evt-2", sampleLines())
	canceled.Status = InvoiceStatusCanceled

	empty, _ := NewInvoice("evt-3", nil)

	unpaid, _ := NewInvoice("evt-4", sampleLines())
	unpaid.Status = InvoiceStatusUnpaid

	assert.True(t, errors.Is(paid.EnsurePayable(), ErrAlreadyPaid))
	assert.True(t, errors.Is(canceled.EnsurePayable(), ErrInvalidStatus))
	assert.True(t, errors.Is(empty.EnsurePayable(), ErrInvalidAmount))
	assert.NoError(t, unpaid.EnsurePayable())
}

func TestInvoice_PayableAmountRoundsToDong(t *testing.T) {
	inv, err := NewInvoice("evt-1", []InvoiceLine{
		{ServiceID: "x", Quantity: 1, UnitPrice: decimal.RequireFromString("1000.6")},
	})
	require.NoError(t, err)
	assert.Equal(t, "1001", inv.PayableAmount().String())
	assert.Equal(t, "1000.6", inv.TotalAmount.String())
}

func TestInvoice_ApplyPaymentOutcome(t *testing.T) {
	inv, _ := NewInvoice("evt-1", sampleLines())
	inv.ApplyPaymentOutcome(false)
	assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
	inv.ApplyPaymentOutcome(true)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)

	// a late failure from a stale attempt keeps the invoice paid
	inv.ApplyPaymentOutcome(false)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
}

func TestNewAmountMismatchError_CarriesBothValues(t *testing.T) {
	err := NewAmountMismatchError("TX1", decimal.NewFromInt(250), decimal.NewFromInt(200))
	assert.True(t, errors.Is(err, ErrAmountMismatch))
	assert.Contains(t, err.Error(), "250")
	assert.Contains(t, err.Error(), "200")
	assert.Equal(t, "AMOUNT_MISMATCH", err.Code)
}
