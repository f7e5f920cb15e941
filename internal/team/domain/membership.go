package domain

import "time"

// Role is a participant's role within a tenant.
type Role string

const (
	// RoleOwner is the tenant's top-level role. It is usually implicit
	// (derived from tenants.owner_user_id) rather than stored on a
	// membership row, and can never be assigned or removed through this
	// service.
	RoleOwner Role = "owner"

	RoleGeneralManager Role = "general_manager"
	RoleAccountant     Role = "accountant"
)

// Invitable reports whether the role can be granted through an invitation.
func (r Role) Invitable() bool {
	return r == RoleGeneralManager || r == RoleAccountant
}

// CanListMembers reports whether the role may read the team roster.
func (r Role) CanListMembers() bool {
	return r == RoleOwner || r == RoleGeneralManager
}

// MembershipStatus is the lifecycle state of a membership row.
type MembershipStatus string

const (
	MembershipPending   MembershipStatus = "pending"
	MembershipActive    MembershipStatus = "active"
	MembershipSuspended MembershipStatus = "suspended"
	// MembershipRemoved is a soft delete. The row is retained so history
	// survives and a later join can reactivate it in place.
	MembershipRemoved MembershipStatus = "removed"
)

// Membership is one user's relationship to one tenant. At most one active
// row exists per (tenant, user) pair.
type Membership struct {
	ID        string
	TenantID  string
	UserID    string
	Role      Role
	Status    MembershipStatus
	InvitedBy string
	InvitedAt time.Time
	// JoinedAt is nil until the member accepts an invitation.
	JoinedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
