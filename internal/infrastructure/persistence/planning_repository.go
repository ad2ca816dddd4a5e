package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/eventhub/backend/internal/domain/planning"
	"github.com/eventhub/backend/internal/infrastructure/persistence/models"
)

// GormEventReader implements planning.EventReader over the events tables
type GormEventReader struct {
	db *gorm.DB
}

// NewGormEventReader creates a new GormEventReader
func NewGormEventReader(db *gorm.DB) *GormEventReader {
	return &GormEventReader{db: db}
}

// FindByID loads an event with its service lines in request order
func (r *GormEventReader) FindByID(ctx context.Context, id string) (*planning.Event, error) {
	var model models.EventModel
	if err := r.db.WithContext(ctx).
		Preload("Services", orderedLines).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, planning.ErrEventNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormCatalogReader implements planning.CatalogReader over the services table
type GormCatalogReader struct {
	db *gorm.DB
}

// NewGormCatalogReader creates a new GormCatalogReader
func NewGormCatalogReader(db *gorm.DB) *GormCatalogReader {
	return &GormCatalogReader{db: db}
}

// FindByIDs returns the services that exist, keyed by id. Missing ids are simply absent.
func (r *GormCatalogReader) FindByIDs(ctx context.Context, ids []string) (map[string]*planning.CatalogService, error) {
	found := make(map[string]*planning.CatalogService, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var rows []models.ServiceModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		found[rows[i].ID] = rows[i].ToDomain()
	}
	return found, nil
}

var (
	_ planning.EventReader   = (*GormEventReader)(nil)
	_ planning.CatalogReader = (*GormCatalogReader)(nil)
)
