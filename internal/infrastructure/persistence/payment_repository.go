package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/domain/shared"
	"github.com/eventhub/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrPaymentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTransactionID finds a payment by the transaction id sent to the gateway
func (r *GormPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrPaymentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	err := r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
	if isUniqueViolation(err) {
		return shared.Wrap(shared.ErrAlreadyExists, "transaction id "+payment.TransactionID+" is already recorded")
	}
	return err
}

// CountByInvoiceID counts the payments recorded against an invoice
func (r *GormPaymentRepository) CountByInvoiceID(ctx context.Context, invoiceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("invoice_id = ?", invoiceID).
		Count(&count).Error
	return count, err
}

// SaveOutcome writes the reconciled payment and then its invoice in one transaction
func (r *GormPaymentRepository) SaveOutcome(ctx context.Context, payment *billing.Payment, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PaymentModel{}).
			Where("id = ?", payment.ID).
			Updates(map[string]interface{}{
				"status":                 string(payment.Status),
				"gateway_transaction_id": payment.GatewayTransactionID,
				"result_code":            payment.ResultCode,
				"completed_at":           payment.CompletedAt,
				"updated_at":             payment.UpdatedAt,
				"version":                payment.Version,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return billing.ErrPaymentNotFound
		}
		return saveInvoiceStatus(tx, invoice)
	})
}

// Ensure GormPaymentRepository implements billing.PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
