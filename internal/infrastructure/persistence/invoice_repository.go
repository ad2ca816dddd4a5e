package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrInvoiceNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEventID finds the invoice of an event
func (r *GormInvoiceRepository) FindByEventID(ctx context.Context, eventID string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("event_id = ?", eventID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrInvoiceNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns one page of invoices matching the filter and the total match count
func (r *GormInvoiceRepository) List(ctx context.Context, filter billing.InvoiceFilter) ([]*billing.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.EventID != "" {
		query = query.Where("event_id = ?", filter.EventID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Clauses(invoiceSort.orderBy(filter.OrderBy, filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var rows []models.InvoiceModel
	if err := query.Preload("Lines", orderedLines).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]*billing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = rows[i].ToDomain()
	}
	return invoices, total, nil
}

// Create inserts an invoice together with its lines.
// A second invoice for the same event fails with billing.ErrInvoiceAlreadyExists.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
	if isUniqueViolation(err) {
		return billing.ErrInvoiceAlreadyExists
	}
	return err
}

// Save persists status changes. Lines and totals are immutable after creation.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return saveInvoiceStatus(r.db.WithContext(ctx), invoice)
}

// Delete removes an invoice and its lines. The payments foreign key restricts
// deletion, which surfaces as billing.ErrInvoiceHasPayments.
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return billing.ErrInvoiceNotFound
		}
		return nil
	})
	if isForeignKeyViolation(err) {
		return billing.ErrInvoiceHasPayments
	}
	return err
}

func saveInvoiceStatus(db *gorm.DB, invoice *billing.Invoice) error {
	result := db.Model(&models.InvoiceModel{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{
			"status":     string(invoice.Status),
			"updated_at": invoice.UpdatedAt,
			"version":    invoice.Version,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return billing.ErrInvoiceNotFound
	}
	return nil
}

// isUniqueViolation recognizes duplicate keys from either driver, translated or not.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// isForeignKeyViolation recognizes a delete blocked by a referencing row
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "violates foreign key constraint")
}

// Ensure GormInvoiceRepository implements billing.InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
