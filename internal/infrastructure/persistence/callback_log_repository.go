package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/eventhub/backend/internal/domain/billing"
	"github.com/eventhub/backend/internal/infrastructure/persistence/models"
)

// GormCallbackLogRepository implements billing.CallbackLogRepository using GORM
type GormCallbackLogRepository struct {
	db *gorm.DB
}

// NewGormCallbackLogRepository creates a new GormCallbackLogRepository
func NewGormCallbackLogRepository(db *gorm.DB) *GormCallbackLogRepository {
	return &GormCallbackLogRepository{db: db}
}

// Record appends one callback to the audit log
func (r *GormCallbackLogRepository) Record(ctx context.Context, log *billing.CallbackLog) error {
	model := &models.CallbackLogModel{}
	model.FromDomain(log)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByTransactionID returns every callback received for a transaction, oldest first
func (r *GormCallbackLogRepository) FindByTransactionID(ctx context.Context, transactionID string) ([]*billing.CallbackLog, error) {
	var rows []models.CallbackLogModel
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("received_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]*billing.CallbackLog, len(rows))
	for i := range rows {
		logs[i] = rows[i].ToDomain()
	}
	return logs, nil
}

// Ensure GormCallbackLogRepository implements billing.CallbackLogRepository
var _ billing.CallbackLogRepository = (*GormCallbackLogRepository)(nil)
