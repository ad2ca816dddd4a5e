package planning

import (
	"context"
	"time"

	"github.com/eventhub/backend/internal/domain/shared"
)

// ErrEventNotFound is returned when an event id does not resolve
var ErrEventNotFound = shared.NewDomainError("NOT_FOUND", "Event not found")

// ServiceLine attaches a catalog service to an event with a quantity
type ServiceLine struct {
	ServiceID string
	Quantity  int
}

// Event is a user-created occasion with attached services.
// Events are owned by the planning side of the application; the billing core only reads them.
type Event struct {
	ID         string
	Name       string
	Date       time.Time
	CategoryID string
	Location   string
	Services   []ServiceLine
	IsPublic   bool
	CreatedBy  string
	CreatedAt  time.Time
}

// HasServices reports whether any service is attached
func (e *Event) HasServices() bool {
	return len(e.Services) > 0
}

// IsOwnedBy reports whether userID created the event
func (e *Event) IsOwnedBy(userID string) bool {
	return userID != "" && e.CreatedBy == userID
}

// EventReader is the read side of the event store used by billing
type EventReader interface {
	// FindByID returns ErrEventNotFound when the id does not resolve
	FindByID(ctx context.Context, id string) (*Event, error)
}
