package models

// Role strings as issued by the identity provider.
const (
	RoleBuyer       = "buyer"
	RolePublisher   = "publisher"
	RoleAdmin       = "admin"
	RoleSystemAdmin = "system_admin"
)

// Actor is the explicit caller identity passed into every service call.
// Permission checks are pure functions of the actor plus the record being
// acted on, never of ambient session state.
type Actor struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

// HasRole reports whether the actor holds the given role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the actor holds an admin-equivalent role.
func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin) || a.HasRole(RoleSystemAdmin)
}
