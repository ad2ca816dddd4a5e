package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eventhub/backend/internal/domain/billing"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	EventID     string             `gorm:"type:varchar(64);not null;uniqueIndex:idx_invoices_event_id"`
	TotalAmount decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Currency    string             `gorm:"type:varchar(3);not null;default:'VND'"`
	Status      string             `gorm:"type:varchar(20);not null;index"`
	Lines       []InvoiceLineModel `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
// Lines are returned in the order they were snapshotted.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	invoice := &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		EventID:           m.EventID,
		Lines:             make([]billing.InvoiceLine, len(m.Lines)),
		TotalAmount:       m.TotalAmount,
		Currency:          m.Currency,
		Status:            billing.InvoiceStatus(m.Status),
	}
	for _, line := range m.Lines {
		if line.Position >= 0 && line.Position < len(invoice.Lines) {
			invoice.Lines[line.Position] = line.ToDomain()
		}
	}
	return invoice
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
func (m *InvoiceModel) FromDomain(i *billing.Invoice) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.EventID = i.EventID
	m.TotalAmount = i.TotalAmount
	m.Currency = i.Currency
	m.Status = string(i.Status)
	m.Lines = make([]InvoiceLineModel, len(i.Lines))
	for pos, line := range i.Lines {
		m.Lines[pos] = InvoiceLineModel{
			InvoiceID:   i.ID,
			Position:    pos,
			ServiceID:   line.ServiceID,
			ServiceName: line.ServiceName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Extension(),
		}
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice aggregate.
func InvoiceModelFromDomain(i *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(i)
	return m
}

// InvoiceLineModel is one frozen pricing line of an invoice.
type InvoiceLineModel struct {
	InvoiceID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position    int             `gorm:"primaryKey;autoIncrement:false"`
	ServiceID   string          `gorm:"type:varchar(64);not null"`
	ServiceName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null;check:chk_invoice_lines_quantity,quantity >= 0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the persistence model to a domain InvoiceLine.
func (m *InvoiceLineModel) ToDomain() billing.InvoiceLine {
	return billing.InvoiceLine{
		ServiceID:   m.ServiceID,
		ServiceName: m.ServiceName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
	}
}

// PaymentModel is the persistence model for the Payment aggregate.
type PaymentModel struct {
	AggregateModel
	InvoiceID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method               string          `gorm:"type:varchar(20);not null"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TransactionID        string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_payments_transaction_id"`
	GatewayTransactionID string          `gorm:"type:varchar(64)"`
	ResultCode           string          `gorm:"type:varchar(20)"`
	Status               string          `gorm:"type:varchar(20);not null;index"`
	CompletedAt          *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		InvoiceID:            m.InvoiceID,
		Method:               billing.GatewayType(m.Method),
		Amount:               m.Amount,
		TransactionID:        m.TransactionID,
		GatewayTransactionID: m.GatewayTransactionID,
		ResultCode:           m.ResultCode,
		Status:               billing.PaymentStatus(m.Status),
		CompletedAt:          m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.InvoiceID = p.InvoiceID
	m.Method = string(p.Method)
	m.Amount = p.Amount
	m.TransactionID = p.TransactionID
	m.GatewayTransactionID = p.GatewayTransactionID
	m.ResultCode = p.ResultCode
	m.Status = string(p.Status)
	m.CompletedAt = p.CompletedAt
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
