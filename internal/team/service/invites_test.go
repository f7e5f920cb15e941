package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lodgeline/lodgeline/internal/team/directory"
	"github.com/lodgeline/lodgeline/internal/team/domain"
)

var codePattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

func TestCreateInvitation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := newFakeDirectory()

	owner := dir.add(directory.User{Email: "owner@seaside.test", Name: "Olivia"})
	tenant := seedTenant(t, st, owner.ID, 3)
	p := ownerParticipant(owner, tenant)

	invites := NewInvitesService(st, dir, LogMailer{})

	t.Run("issues a pending invitation with token and code", func(t *testing.T) {
		inv, err := invites.Create(ctx, p, "New.Hire@Example.com", domain.RoleGeneralManager, false)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationPending, inv.Status)
		require.Equal(t, "new.hire@example.com", inv.Email)
		require.Regexp(t, codePattern, inv.Code)
		require.NotEmpty(t, inv.Token)
		require.WithinDuration(t, time.Now().Add(domain.InvitationTTL), inv.ExpiresAt, time.Minute)
	})

	t.Run("rejects duplicate pending invitation", func(t *testing.T) {
		_, err := invites.Create(ctx, p, "new.hire@example.com", domain.RoleAccountant, false)
		var pendingErr *PendingInviteError
		require.ErrorAs(t, err, &pendingErr)
		require.NotEmpty(t, pendingErr.InvitationID)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		gm := domain.Participant{User: owner, Tenant: &tenant, Role: domain.RoleGeneralManager}
		_, err := invites.Create(ctx, gm, "someone@example.com", domain.RoleAccountant, false)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("rejects invalid email and role", func(t *testing.T) {
		_, err := invites.Create(ctx, p, "not-an-email", domain.RoleAccountant, false)
		require.ErrorIs(t, err, ErrInvalidEmail)

		_, err = invites.Create(ctx, p, "fine@example.com", domain.RoleOwner, false)
		require.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("rejects an email that is already an active member", func(t *testing.T) {
		member := dir.add(directory.User{Email: "member@seaside.test"})
		seedMember(t, st, tenant.ID, member.ID, domain.RoleAccountant, domain.MembershipActive)

		_, err := invites.Create(ctx, p, "member@seaside.test", domain.RoleAccountant, false)
		require.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("enforces the team cap", func(t *testing.T) {
		small := seedTenant(t, st, dir.add(directory.User{Email: "o2@x.test"}).ID, 1)
		sp := ownerParticipant(dir.byEmail["o2@x.test"], small)
		seedMember(t, st, small.ID, dir.add(directory.User{Email: "m2@x.test"}).ID,
			domain.RoleAccountant, domain.MembershipActive)

		_, err := invites.Create(ctx, sp, "extra@x.test", domain.RoleAccountant, false)
		var limitErr *TeamLimitError
		require.ErrorAs(t, err, &limitErr)
		require.Equal(t, 1, limitErr.Limit)
	})

	t.Run("replaces a stale pending invitation", func(t *testing.T) {
		invites.Now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
		defer func() { invites.Now = time.Now }()

		// The first invitation is now past expiry; creating again expires it
		// in place and issues a fresh one.
		inv, err := invites.Create(ctx, p, "new.hire@example.com", domain.RoleAccountant, false)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationPending, inv.Status)

		pending, err := st.Invitations().ListPendingInvitations(ctx, tenant.ID)
		require.NoError(t, err)
		for _, other := range pending {
			if other.Email == "new.hire@example.com" {
				require.Equal(t, inv.ID, other.ID)
			}
		}
	})
}

// failMailer refuses every send.
type failMailer struct{}

func (failMailer) SendInvite(context.Context, InviteEmail) error {
	return errors.New("smtp unavailable")
}

func TestInvitationEmailDispatch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := newFakeDirectory()

	owner := dir.add(directory.User{Email: "owner@seaside.test", Name: "Olivia"})
	tenant := seedTenant(t, st, owner.ID, 3)
	p := ownerParticipant(owner, tenant)

	t.Run("a successful dispatch is recorded on the row and the result", func(t *testing.T) {
		invites := NewInvitesService(st, dir, LogMailer{})

		inv, err := invites.Create(ctx, p, "mailed@example.com", domain.RoleAccountant, true)
		require.NoError(t, err)
		require.True(t, inv.EmailSent)

		stored, err := st.Invitations().GetInvitationByToken(ctx, inv.Token)
		require.NoError(t, err)
		require.True(t, stored.EmailSent)
	})

	t.Run("a failed dispatch leaves email_sent false everywhere", func(t *testing.T) {
		invites := NewInvitesService(st, dir, failMailer{})

		inv, err := invites.Create(ctx, p, "unmailed@example.com", domain.RoleAccountant, true)
		require.NoError(t, err)
		require.False(t, inv.EmailSent)

		stored, err := st.Invitations().GetInvitationByToken(ctx, inv.Token)
		require.NoError(t, err)
		require.False(t, stored.EmailSent)
	})
}

func TestResendInvitation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := newFakeDirectory()

	owner := dir.add(directory.User{Email: "owner@seaside.test"})
	tenant := seedTenant(t, st, owner.ID, 3)
	p := ownerParticipant(owner, tenant)

	invites := NewInvitesService(st, dir, LogMailer{})

	inv, err := invites.Create(ctx, p, "hire@example.com", domain.RoleGeneralManager, false)
	require.NoError(t, err)

	t.Run("regenerates code and extends expiry, preserving the token", func(t *testing.T) {
		resent, err := invites.Resend(ctx, p, inv.ID)
		require.NoError(t, err)
		require.Equal(t, inv.Token, resent.Token)
		require.NotEqual(t, inv.Code, resent.Code)
		require.Regexp(t, codePattern, resent.Code)
		require.True(t, resent.ExpiresAt.After(inv.ExpiresAt) || resent.ExpiresAt.Equal(inv.ExpiresAt))
	})

	t.Run("unknown invitation is not found", func(t *testing.T) {
		_, err := invites.Resend(ctx, p, "no-such-id")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("cancelled invitation is not found", func(t *testing.T) {
		require.NoError(t, invites.Cancel(ctx, p, inv.ID))
		_, err := invites.Resend(ctx, p, inv.ID)
		require.ErrorIs(t, err, ErrInviteNotFound)
	})
}

func TestCancelInvitationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := newFakeDirectory()

	owner := dir.add(directory.User{Email: "owner@seaside.test"})
	tenant := seedTenant(t, st, owner.ID, 3)
	p := ownerParticipant(owner, tenant)

	invites := NewInvitesService(st, dir, LogMailer{})

	inv, err := invites.Create(ctx, p, "hire@example.com", domain.RoleAccountant, false)
	require.NoError(t, err)

	require.NoError(t, invites.Cancel(ctx, p, inv.ID))
	require.NoError(t, invites.Cancel(ctx, p, inv.ID))
	require.NoError(t, invites.Cancel(ctx, p, "never-existed"))

	stored, err := st.Invitations().GetInvitationByToken(ctx, inv.Token)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationCancelled, stored.Status)
}

func TestValidateInvitation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := newFakeDirectory()

	owner := dir.add(directory.User{Email: "owner@seaside.test"})
	tenant := seedTenant(t, st, owner.ID, 3)
	p := ownerParticipant(owner, tenant)

	invites := NewInvitesService(st, dir, LogMailer{})

	inv, err := invites.Create(ctx, p, "hire@example.com", domain.RoleGeneralManager, false)
	require.NoError(t, err)

	t.Run("valid token returns tenant display metadata", func(t *testing.T) {
		preview, err := invites.ValidateToken(ctx, inv.Token)
		require.NoError(t, err)
		require.Equal(t, "hire@example.com", preview.Email)
		require.Equal(t, domain.RoleGeneralManager, preview.Role)
		require.Equal(t, tenant.BusinessName, preview.TenantName)
	})

	t.Run("code match is case-insensitive on both sides", func(t *testing.T) {
		preview, err := invites.ValidateCode(ctx, inv.Code, "HIRE@example.com")
		require.NoError(t, err)
		require.Equal(t, tenant.ID, preview.TenantID)
	})

	t.Run("unknown token is not found", func(t *testing.T) {
		_, err := invites.ValidateToken(ctx, "missing-token")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("expired invitation reports expiry without persisting it", func(t *testing.T) {
		invites.Now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
		defer func() { invites.Now = time.Now }()

		_, err := invites.ValidateToken(ctx, inv.Token)
		require.ErrorIs(t, err, ErrInviteExpired)

		stored, err := st.Invitations().GetInvitationByToken(ctx, inv.Token)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationPending, stored.Status)
	})

	t.Run("cancelled invitation reports its status", func(t *testing.T) {
		require.NoError(t, invites.Cancel(ctx, p, inv.ID))

		_, err := invites.ValidateToken(ctx, inv.Token)
		var notPending *InviteNotPendingError
		require.ErrorAs(t, err, &notPending)
		require.Equal(t, domain.InvitationCancelled, notPending.Status)
	})
}
