package planning

// Role is the coarse authorization role carried by an authenticated user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Requester identifies the acting user of an operation.
// It is produced by the authentication layer and never persisted.
type Requester struct {
	ID   string
	Role Role
}

// NewRequester creates a requester, treating unknown roles as RoleUser
func NewRequester(id string, role string) Requester {
	r := Role(role)
	if !r.IsValid() {
		r = RoleUser
	}
	return Requester{ID: id, Role: r}
}

// IsAdmin reports whether the requester has the admin role
func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

// IsAnonymous reports whether no user identity is attached
func (r Requester) IsAnonymous() bool {
	return r.ID == ""
}
