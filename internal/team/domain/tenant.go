package domain

import "time"

// DefaultTeamCap is the number of non-owner team members a tenant may have
// when no explicit limit is configured.
const DefaultTeamCap = 3

// Tenant is one property-management workspace. Tenants are created at signup
// by the provisioning flow; this service reads them and only ever writes the
// tables hanging off them.
type Tenant struct {
	ID           string
	Name         string
	BusinessName string
	LogoURL      string
	OwnerUserID  string
	// MaxTeamMembers caps active non-owner memberships. Zero means unset.
	MaxTeamMembers int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DisplayName prefers the business name, then the workspace name, then a
// generic placeholder.
func (t Tenant) DisplayName() string {
	if t.BusinessName != "" {
		return t.BusinessName
	}
	if t.Name != "" {
		return t.Name
	}
	return "Workspace"
}

// TeamCap returns the effective non-owner member limit.
func (t Tenant) TeamCap() int {
	if t.MaxTeamMembers > 0 {
		return t.MaxTeamMembers
	}
	return DefaultTeamCap
}
