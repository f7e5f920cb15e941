package http

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lodgeline/lodgeline/internal/team/domain"
	"github.com/lodgeline/lodgeline/internal/team/service"
)

// validate checks request bodies after JSON decoding. One instance for the
// package; validator caches struct metadata internally.
var validate = validator.New()

type InviteCreateRequest struct {
	Email string `json:"email" validate:"required,contains=@"`
	Role  string `json:"role" validate:"required,oneof=general_manager accountant"`
	// SendEmail defaults to true when omitted.
	SendEmail *bool `json:"send_email"`
}

type RoleChangeRequest struct {
	Role string `json:"role" validate:"required,oneof=general_manager accountant"`
}

type JoinRequest struct {
	Token    string `json:"token"`
	Code     string `json:"code"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MeResponse describes the caller's place in their workspace.
type MeResponse struct {
	UserID         string `json:"user_id"`
	TenantID       string `json:"tenant_id"`
	TenantName     string `json:"tenant_name"`
	Role           string `json:"role"`
	MaxTeamMembers int    `json:"max_team_members"`
}

// MemberResponse is one roster entry. Display fields degrade to placeholder
// values when the directory lookup for the member failed.
type MemberResponse struct {
	UserID    string     `json:"user_id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	InvitedAt time.Time  `json:"invited_at"`
	JoinedAt  *time.Time `json:"joined_at,omitempty"`
}

type MembersResponse struct {
	Members    []MemberResponse `json:"members"`
	Total      int              `json:"total"`
	MaxMembers int              `json:"max_members"`
}

// InvitationResponse is the owner-facing view of an invitation. Token and
// code are included so the owner can share either out of band.
type InvitationResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"invitation_token"`
	Code      string    `json:"invitation_code"`
	Status    string    `json:"status"`
	EmailSent bool      `json:"email_sent"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	IsExpired bool      `json:"is_expired"`
}

type InviteCreateResponse struct {
	Invitation InvitationResponse `json:"invitation"`
	Message    string             `json:"message"`
}

type InvitationsResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type RoleChangeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	NewRole string `json:"new_role"`
}

type ResendResponse struct {
	Success        bool      `json:"success"`
	Message        string    `json:"message"`
	InvitationCode string    `json:"invitation_code"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ValidateResponse is the public invitation preview returned to join pages.
type ValidateResponse struct {
	Valid      bool   `json:"valid"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	TenantLogo string `json:"tenant_logo,omitempty"`
}

type JoinResponse struct {
	Success      bool   `json:"success"`
	TenantID     string `json:"tenant_id"`
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	IsNewAccount bool   `json:"is_new_account"`
}

// JoinErrorResponse extends the flat error body with the account-creation
// flag so clients know to prompt for a password.
type JoinErrorResponse struct {
	Error                   string `json:"error"`
	RequiresAccountCreation bool   `json:"requires_account_creation"`
}

func toInvitationResponse(inv domain.Invitation, now time.Time) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID,
		Email:     inv.Email,
		Role:      string(inv.Role),
		Token:     inv.Token,
		Code:      inv.Code,
		Status:    string(inv.Status),
		EmailSent: inv.EmailSent,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
		IsExpired: inv.Expired(now),
	}
}

func toMemberResponse(entry service.MemberEntry) MemberResponse {
	m := MemberResponse{
		UserID:    entry.Membership.UserID,
		Role:      string(entry.Membership.Role),
		Status:    string(entry.Membership.Status),
		InvitedAt: entry.Membership.InvitedAt,
		JoinedAt:  entry.Membership.JoinedAt,
	}
	if entry.ProfileErr != nil {
		m.Email = "Unknown"
		m.Name = "Unknown"
		return m
	}
	m.Email = entry.Profile.Email
	m.Name = entry.Profile.Name
	m.AvatarURL = entry.Profile.AvatarURL
	return m
}
