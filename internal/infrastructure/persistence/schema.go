package persistence

import (
	"gorm.io/gorm"

	"github.com/eventhub/backend/internal/infrastructure/persistence/models"
)

// AutoMigrate creates the billing and planning tables from the GORM models.
// PostgreSQL deployments use the SQL files under migrations/ instead; this is
// for sqlite runs and tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ServiceModel{},
		&models.EventModel{},
		&models.EventServiceModel{},
		&models.InvoiceModel{},
		&models.InvoiceLineModel{},
		&models.PaymentModel{},
		&models.CallbackLogModel{},
	)
}
