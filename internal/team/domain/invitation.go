package domain

import "time"

// InvitationTTL is how long an invitation stays redeemable after it is
// created or resent.
const InvitationTTL = 7 * 24 * time.Hour

// InvitationStatus is the lifecycle state of an invitation. All states other
// than pending are terminal; a consumed invitation is never reused.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationExpired   InvitationStatus = "expired"
	InvitationCancelled InvitationStatus = "cancelled"
)

// Invitation is an outstanding offer to join a tenant with a specific role.
// It is redeemable either by the full-entropy Token (link flows) or by the
// short Code together with the invitee's email (human-shareable flows).
type Invitation struct {
	ID       string
	TenantID string
	// Email is stored lowercased; all comparisons are case-insensitive.
	Email string
	Role  Role
	// Token is the opaque link token. Resending preserves it so existing
	// invitation links stay valid.
	Token string
	// Code is the 8-character uppercase hex code. Resending regenerates it.
	Code      string
	InvitedBy string
	Status    InvitationStatus
	EmailSent bool
	ExpiresAt time.Time
	// AcceptedAt / AcceptedBy are set when the join workflow consumes the
	// invitation.
	AcceptedAt *time.Time
	AcceptedBy string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Expired reports whether the invitation is past its expiry at the given
// instant. Expiry is only persisted as a status transition by the join
// workflow and by the create flow replacing a stale pending invitation;
// read paths compute it on the fly.
func (i Invitation) Expired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}
