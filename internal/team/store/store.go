package store

import (
	"context"
	"errors"
	"time"

	"github.com/lodgeline/lodgeline/internal/team/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and a transaction entry point for the multi-step join write
// path.
type Store interface {
	Tenants() Tenants
	Memberships() Memberships
	Invitations() Invitations
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rolled back if fn errors,
	// committed otherwise. Preferred over Tx for almost all callers.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying database handle.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repositories, plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Tenants interface {
	// GetTenantByID fetches one tenant.
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)

	// GetTenantByOwner fetches the tenant owned by the given user, if any.
	// This is how the implicit owner role is resolved.
	GetTenantByOwner(ctx context.Context, ownerUserID string) (domain.Tenant, error)

	// CreateTenant inserts a tenant. Signup lives in an adjacent system;
	// this exists for provisioning and tests.
	CreateTenant(ctx context.Context, t domain.Tenant) error
}

type Memberships interface {
	// GetMembership returns the membership row for (tenant, user) in any
	// status. At most one row exists per pair.
	GetMembership(ctx context.Context, tenantID, userID string) (domain.Membership, error)

	// GetActiveMembershipByUser returns the user's active membership across
	// all tenants, used during authorization resolution.
	GetActiveMembershipByUser(ctx context.Context, userID string) (domain.Membership, error)

	// ListTeamMembers returns active and pending members of a tenant
	// ordered by joined_at ascending with nulls last.
	ListTeamMembers(ctx context.Context, tenantID string) ([]domain.Membership, error)

	// CountActiveMembers counts active non-owner memberships, the quantity
	// bounded by the tenant's team cap.
	CountActiveMembers(ctx context.Context, tenantID string) (int, error)

	// CreateMembership inserts a new membership row (id provided by app).
	CreateMembership(ctx context.Context, m domain.Membership) error

	// UpdateMembershipRole changes the role of an active membership.
	UpdateMembershipRole(ctx context.Context, tenantID, userID string, role domain.Role) error

	// UpdateMembershipStatus transitions a membership's status in place.
	// Removal is this with MembershipRemoved; rows are never deleted.
	UpdateMembershipStatus(ctx context.Context, tenantID, userID string, status domain.MembershipStatus) error

	// ReactivateMembership flips an existing non-active row back to active,
	// overwriting role and joined_at. Used when a removed member re-joins.
	ReactivateMembership(ctx context.Context, tenantID, userID string, role domain.Role, joinedAt time.Time) error
}

type Invitations interface {
	// CreateInvitation inserts a new pending invitation.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByID returns an invitation scoped to its tenant.
	GetInvitationByID(ctx context.Context, id, tenantID string) (domain.Invitation, error)

	// GetInvitationByToken returns an invitation in any status by its link
	// token. Validation reads the status to report a precise reason.
	GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error)

	// GetInvitationByCode returns an invitation in any status by code and
	// email. The code is matched exactly (codes are stored uppercase), the
	// email case-insensitively.
	GetInvitationByCode(ctx context.Context, code, email string) (domain.Invitation, error)

	// GetPendingInvitationByEmail returns the pending invitation for
	// (tenant, email), enforcing the at-most-one-pending invariant.
	GetPendingInvitationByEmail(ctx context.Context, tenantID, email string) (domain.Invitation, error)

	// ListPendingInvitations returns all pending invitations for a tenant,
	// newest first.
	ListPendingInvitations(ctx context.Context, tenantID string) ([]domain.Invitation, error)

	// MarkInvitationExpired transitions pending → expired. Scoped to
	// status=pending so it is safe to call on already-terminal rows.
	MarkInvitationExpired(ctx context.Context, id string) error

	// CancelInvitation transitions pending → cancelled, scoped to
	// (id, tenant, status=pending). Zero rows affected is not an error;
	// cancellation is idempotent by design.
	CancelInvitation(ctx context.Context, id, tenantID string) error

	// RefreshInvitation installs a new code and expiry on a pending
	// invitation, preserving the token. Reports whether a row was updated.
	RefreshInvitation(ctx context.Context, id, tenantID, code string, expiresAt time.Time) (bool, error)

	// AcceptInvitation is the conditional accept: pending → accepted with
	// accepted_at/accepted_by, guarded by status='pending'. A false return
	// means another request won the race.
	AcceptInvitation(ctx context.Context, id, userID string, at time.Time) (bool, error)

	// MarkInvitationEmailSent records a successful email dispatch.
	MarkInvitationEmailSent(ctx context.Context, id string) error

	// DeleteTerminalInvitationsBefore purges accepted/expired/cancelled
	// invitations last updated before the cutoff. Housekeeping only; it
	// never touches pending rows.
	DeleteTerminalInvitationsBefore(ctx context.Context, cutoff time.Time) error
}

// Users backs the local directory mode. Remote deployments never touch it.
type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up an account case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	CreateUser(ctx context.Context, u domain.User) error
}
