package planning

import (
	"github.com/eventhub/backend/internal/domain/shared"
)

// ErrForbidden is returned when the access policy denies an operation
var ErrForbidden = shared.ErrForbidden

// AccessPolicy decides what a requester may do with an event.
// All handlers and services consult this single policy instead of re-deriving ownership checks.
type AccessPolicy struct{}

// NewAccessPolicy creates the access policy
func NewAccessPolicy() AccessPolicy {
	return AccessPolicy{}
}

// CanEdit reports whether user is an admin or the event's creator
func (AccessPolicy) CanEdit(event *Event, user Requester) bool {
	if event == nil {
		return false
	}
	return user.IsAdmin() || event.IsOwnedBy(user.ID)
}

// CanView reports whether user may edit the event or the event is public
func (p AccessPolicy) CanView(event *Event, user Requester) bool {
	if event == nil {
		return false
	}
	return p.CanEdit(event, user) || event.IsPublic
}

// RequireView returns ErrForbidden unless CanView holds
func (p AccessPolicy) RequireView(event *Event, user Requester) error {
	if !p.CanView(event, user) {
		return shared.Wrap(ErrForbidden, "not allowed to view this event")
	}
	return nil
}

// RequireEdit returns ErrForbidden unless CanEdit holds
func (p AccessPolicy) RequireEdit(event *Event, user Requester) error {
	if !p.CanEdit(event, user) {
		return shared.Wrap(ErrForbidden, "not allowed to modify this event")
	}
	return nil
}

// RequireAdmin returns ErrForbidden unless user is an admin
func (AccessPolicy) RequireAdmin(user Requester) error {
	if !user.IsAdmin() {
		return shared.Wrap(ErrForbidden, "admin role required")
	}
	return nil
}
