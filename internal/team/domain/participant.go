package domain

import "github.com/lodgeline/lodgeline/internal/team/directory"

// Participant is the fully resolved identity of an authenticated caller:
// who they are, which tenant they act in, and with what role. The owner is
// derived from tenants.owner_user_id and carries no membership row; everyone
// else is backed by an active membership.
type Participant struct {
	User   directory.User
	Tenant *Tenant
	Role   Role
	// Membership is nil for the owner.
	Membership *Membership
}

// HasWorkspace reports whether the caller belongs to any tenant. Handlers
// map the false case to a 404.
func (p Participant) HasWorkspace() bool {
	return p.Tenant != nil
}

// IsOwner reports whether the caller is the tenant's implicit owner.
func (p Participant) IsOwner() bool {
	return p.Tenant != nil && p.Role == RoleOwner
}
