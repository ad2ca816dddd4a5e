package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventhub/backend/internal/domain/planning"
)

// EventModel is the SQL read model of a planned event.
// Events are owned by the planning side; billing only reads them.
type EventModel struct {
	ID         string              `gorm:"type:varchar(64);primary_key"`
	Name       string              `gorm:"type:varchar(200);not null"`
	Date       time.Time           `gorm:"not null"`
	CategoryID string              `gorm:"type:varchar(64)"`
	Location   string              `gorm:"type:varchar(500)"`
	IsPublic   bool                `gorm:"not null;default:false"`
	CreatedBy  string              `gorm:"type:varchar(64);not null;index"`
	CreatedAt  time.Time           `gorm:"not null"`
	Services   []EventServiceModel `gorm:"foreignKey:EventID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (EventModel) TableName() string {
	return "events"
}

// ToDomain converts the persistence model to a domain Event.
func (m *EventModel) ToDomain() *planning.Event {
	event := &planning.Event{
		ID:         m.ID,
		Name:       m.Name,
		Date:       m.Date,
		CategoryID: m.CategoryID,
		Location:   m.Location,
		IsPublic:   m.IsPublic,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt,
		Services:   make([]planning.ServiceLine, len(m.Services)),
	}
	for i, s := range m.Services {
		event.Services[i] = planning.ServiceLine{ServiceID: s.ServiceID, Quantity: s.Quantity}
	}
	return event
}

// FromDomain populates the persistence model from a domain Event.
func (m *EventModel) FromDomain(e *planning.Event) {
	m.ID = e.ID
	m.Name = e.Name
	m.Date = e.Date
	m.CategoryID = e.CategoryID
	m.Location = e.Location
	m.IsPublic = e.IsPublic
	m.CreatedBy = e.CreatedBy
	m.CreatedAt = e.CreatedAt
	m.Services = make([]EventServiceModel, len(e.Services))
	for i, s := range e.Services {
		m.Services[i] = EventServiceModel{
			EventID:   e.ID,
			Position:  i,
			ServiceID: s.ServiceID,
			Quantity:  s.Quantity,
		}
	}
}

// EventServiceModel is one service line requested by an event.
type EventServiceModel struct {
	EventID   string `gorm:"type:varchar(64);primaryKey"`
	Position  int    `gorm:"primaryKey;autoIncrement:false"`
	ServiceID string `gorm:"type:varchar(64);not null"`
	Quantity  int    `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (EventServiceModel) TableName() string {
	return "event_services"
}

// ServiceModel is the SQL read model of a catalog service.
type ServiceModel struct {
	ID          string          `gorm:"type:varchar(64);primary_key"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ServiceModel) TableName() string {
	return "services"
}

// ToDomain converts the persistence model to a domain CatalogService.
func (m *ServiceModel) ToDomain() *planning.CatalogService {
	return &planning.CatalogService{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
	}
}
