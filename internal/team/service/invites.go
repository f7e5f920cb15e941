package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lodgeline/lodgeline/internal/team/directory"
	"github.com/lodgeline/lodgeline/internal/team/domain"
	"github.com/lodgeline/lodgeline/internal/team/store"
	"github.com/lodgeline/lodgeline/pkg/cryptox"
	"github.com/lodgeline/lodgeline/pkg/idx"
	"github.com/lodgeline/lodgeline/pkg/slogx"
)

// InvitesService owns the invitation lifecycle: create, list, cancel, resend
// and the public validation reads.
type InvitesService struct {
	Store     store.Store
	Directory directory.Directory
	Mailer    Mailer

	// Now is swappable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewInvitesService(st store.Store, dir directory.Directory, mailer Mailer) *InvitesService {
	return &InvitesService{
		Store:     st,
		Directory: dir,
		Mailer:    mailer,
		Now:       time.Now,
	}
}

func (s *InvitesService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// NowUTC reads the service clock. The HTTP layer annotates listings with it
// so expiry annotations agree with expiry decisions.
func (s *InvitesService) NowUTC() time.Time {
	return s.now()
}

// Create issues a new pending invitation for (tenant, email). Checks run in a
// fixed order so callers get stable, specific errors:
// permission, input shape, team cap, existing member, duplicate pending.
func (s *InvitesService) Create(ctx context.Context, p domain.Participant, email string, role domain.Role, sendEmail bool) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Only the owner invites.
	if !p.IsOwner() {
		return domain.Invitation{}, ErrForbidden
	}

	// 2. Minimal input checks. The HTTP layer validates shape too, but the
	// service is usable without it.
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return domain.Invitation{}, ErrInvalidEmail
	}
	if !role.Invitable() {
		return domain.Invitation{}, ErrInvalidRole
	}

	// 3. Enforce the team-size cap on active non-owner members.
	limit := p.Tenant.TeamCap()
	count, err := s.Store.Memberships().CountActiveMembers(ctx, p.Tenant.ID)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("count members: %w", err)
	}
	if count >= limit {
		return domain.Invitation{}, &TeamLimitError{Limit: limit}
	}

	// 4. An existing account that is already an active member cannot be
	// invited again.
	account, err := s.Directory.LookupByEmail(ctx, email)
	switch {
	case err == nil:
		membership, merr := s.Store.Memberships().GetMembership(ctx, p.Tenant.ID, account.ID)
		if merr != nil && !errors.Is(merr, store.ErrNotFound) {
			return domain.Invitation{}, fmt.Errorf("lookup membership: %w", merr)
		}
		if merr == nil && membership.Status == domain.MembershipActive {
			return domain.Invitation{}, ErrAlreadyMember
		}
	case errors.Is(err, directory.ErrNotFound):
		// No account yet; the join flow will create one.
	default:
		return domain.Invitation{}, fmt.Errorf("lookup account: %w", err)
	}

	// 5. At most one live pending invitation per (tenant, email). A stale
	// pending invitation is expired in place and replaced.
	now := s.now()
	existing, err := s.Store.Invitations().GetPendingInvitationByEmail(ctx, p.Tenant.ID, email)
	switch {
	case err == nil && !existing.Expired(now):
		return domain.Invitation{}, &PendingInviteError{InvitationID: existing.ID}
	case err == nil:
		if err := s.Store.Invitations().MarkInvitationExpired(ctx, existing.ID); err != nil {
			return domain.Invitation{}, fmt.Errorf("expire stale invitation: %w", err)
		}
	case !errors.Is(err, store.ErrNotFound):
		return domain.Invitation{}, fmt.Errorf("lookup pending invitation: %w", err)
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("generate token: %w", err)
	}
	code, err := cryptox.GenerateCode()
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("generate code: %w", err)
	}

	inv := domain.Invitation{
		ID:        idx.New().String(),
		TenantID:  p.Tenant.ID,
		Email:     email,
		Role:      role,
		Token:     token,
		Code:      code,
		InvitedBy: p.User.ID,
		Status:    domain.InvitationPending,
		ExpiresAt: now.Add(domain.InvitationTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		return domain.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}

	log.Info("invitation created",
		"tenant_id", p.Tenant.ID,
		"invitation_id", inv.ID,
		"role", string(role),
	)

	if sendEmail && s.dispatchEmail(ctx, p.Tenant, p.User, inv) {
		inv.EmailSent = true
	}
	return inv, nil
}

// List returns the tenant's pending invitations, newest first. Listing never
// mutates expiry state; callers compute staleness from ExpiresAt.
func (s *InvitesService) List(ctx context.Context, p domain.Participant) ([]domain.Invitation, error) {
	if !p.IsOwner() {
		return nil, ErrForbidden
	}
	invitations, err := s.Store.Invitations().ListPendingInvitations(ctx, p.Tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, nil
}

// Cancel transitions a pending invitation to cancelled. Cancelling an
// unknown, consumed or foreign invitation is a silent no-op.
func (s *InvitesService) Cancel(ctx context.Context, p domain.Participant, invitationID string) error {
	if !p.IsOwner() {
		return ErrForbidden
	}
	if err := s.Store.Invitations().CancelInvitation(ctx, invitationID, p.Tenant.ID); err != nil {
		return fmt.Errorf("cancel invitation: %w", err)
	}
	slogx.FromContext(ctx).Info("invitation cancelled",
		"tenant_id", p.Tenant.ID,
		"invitation_id", invitationID,
	)
	return nil
}

// Resend regenerates the code and extends the expiry of a pending
// invitation. The link token is preserved so previously shared invitation
// URLs keep working.
func (s *InvitesService) Resend(ctx context.Context, p domain.Participant, invitationID string) (domain.Invitation, error) {
	if !p.IsOwner() {
		return domain.Invitation{}, ErrForbidden
	}

	inv, err := s.Store.Invitations().GetInvitationByID(ctx, invitationID, p.Tenant.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInviteNotFound
		}
		return domain.Invitation{}, fmt.Errorf("lookup invitation: %w", err)
	}
	if inv.Status != domain.InvitationPending {
		return domain.Invitation{}, ErrInviteNotFound
	}

	code, err := cryptox.GenerateCode()
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("generate code: %w", err)
	}
	expiresAt := s.now().Add(domain.InvitationTTL)

	updated, err := s.Store.Invitations().RefreshInvitation(ctx, invitationID, p.Tenant.ID, code, expiresAt)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("refresh invitation: %w", err)
	}
	if !updated {
		return domain.Invitation{}, ErrInviteNotFound
	}

	inv.Code = code
	inv.ExpiresAt = expiresAt

	slogx.FromContext(ctx).Info("invitation resent",
		"tenant_id", p.Tenant.ID,
		"invitation_id", invitationID,
	)

	s.dispatchEmail(ctx, p.Tenant, p.User, inv)
	return inv, nil
}

// InvitePreview is the public view of a valid invitation: enough for a
// landing page to show who is inviting whom, and nothing else.
type InvitePreview struct {
	Email      string
	Role       domain.Role
	TenantID   string
	TenantName string
	TenantLogo string
}

// ValidateToken checks a link token and returns the invitation preview.
// Validation is read-only: an invitation past its expiry reports
// ErrInviteExpired but keeps status=pending until a join attempt.
func (s *InvitesService) ValidateToken(ctx context.Context, token string) (InvitePreview, error) {
	inv, err := s.Store.Invitations().GetInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return InvitePreview{}, ErrInviteNotFound
		}
		return InvitePreview{}, fmt.Errorf("lookup invitation: %w", err)
	}
	return s.preview(ctx, inv)
}

// ValidateCode checks a code+email pair. The code is matched uppercased, the
// email case-insensitively.
func (s *InvitesService) ValidateCode(ctx context.Context, code, email string) (InvitePreview, error) {
	inv, err := s.Store.Invitations().GetInvitationByCode(ctx, strings.ToUpper(strings.TrimSpace(code)), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return InvitePreview{}, ErrInviteNotFound
		}
		return InvitePreview{}, fmt.Errorf("lookup invitation: %w", err)
	}
	return s.preview(ctx, inv)
}

func (s *InvitesService) preview(ctx context.Context, inv domain.Invitation) (InvitePreview, error) {
	if inv.Status != domain.InvitationPending {
		return InvitePreview{}, &InviteNotPendingError{Status: inv.Status}
	}
	if inv.Expired(s.now()) {
		return InvitePreview{}, ErrInviteExpired
	}

	tenant, err := s.Store.Tenants().GetTenantByID(ctx, inv.TenantID)
	if err != nil {
		return InvitePreview{}, fmt.Errorf("lookup tenant: %w", err)
	}

	return InvitePreview{
		Email:      inv.Email,
		Role:       inv.Role,
		TenantID:   tenant.ID,
		TenantName: tenant.DisplayName(),
		TenantLogo: tenant.LogoURL,
	}, nil
}

// dispatchEmail sends the invitation email and records the result, reporting
// whether the mail went out. Failures are logged, never returned; the
// invitation itself is already committed.
func (s *InvitesService) dispatchEmail(ctx context.Context, tenant *domain.Tenant, inviter directory.User, inv domain.Invitation) bool {
	log := slogx.FromContext(ctx)

	if s.Mailer == nil {
		return false
	}

	err := s.Mailer.SendInvite(ctx, InviteEmail{
		To:            inv.Email,
		WorkspaceName: tenant.DisplayName(),
		InviterName:   inviter.Name,
		Role:          inv.Role,
		Token:         inv.Token,
		Code:          inv.Code,
	})
	if err != nil {
		log.Warn("invitation email dispatch failed",
			"invitation_id", inv.ID,
			"error", err,
		)
		return false
	}

	if err := s.Store.Invitations().MarkInvitationEmailSent(ctx, inv.ID); err != nil {
		log.Warn("failed to record email dispatch",
			"invitation_id", inv.ID,
			"error", err,
		)
	}
	return true
}
