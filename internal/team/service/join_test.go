package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lodgeline/lodgeline/internal/team/directory"
	"github.com/lodgeline/lodgeline/internal/team/domain"
)

func TestJoin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := newFakeDirectory()

	owner := dir.add(directory.User{Email: "owner@seaside.test", Name: "Olivia"})
	tenant := seedTenant(t, st, owner.ID, 10)
	p := ownerParticipant(owner, tenant)

	invites := NewInvitesService(st, dir, LogMailer{})
	join := NewJoinService(st, dir, invites)

	t.Run("new account joins via code and email", func(t *testing.T) {
		inv, err := invites.Create(ctx, p, "fresh@example.com", domain.RoleGeneralManager, false)
		require.NoError(t, err)

		result, err := join.Join(ctx, JoinRequest{
			Code:     inv.Code,
			Email:    "Fresh@Example.com",
			Password: "abcdef",
		})
		require.NoError(t, err)
		require.True(t, result.NewAccount)
		require.Equal(t, tenant.ID, result.TenantID)
		require.Equal(t, domain.RoleGeneralManager, result.Role)

		m, err := st.Memberships().GetMembership(ctx, tenant.ID, result.UserID)
		require.NoError(t, err)
		require.Equal(t, domain.MembershipActive, m.Status)
		require.NotNil(t, m.JoinedAt)

		stored, err := st.Invitations().GetInvitationByToken(ctx, inv.Token)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationAccepted, stored.Status)
		require.Equal(t, result.UserID, stored.AcceptedBy)
	})

	t.Run("new account requires a password of at least 6 characters", func(t *testing.T) {
		inv, err := invites.Create(ctx, p, "nopass@example.com", domain.RoleAccountant, false)
		require.NoError(t, err)

		_, err = join.Join(ctx, JoinRequest{Token: inv.Token})
		require.ErrorIs(t, err, ErrAccountCreationRequired)

		_, err = join.Join(ctx, JoinRequest{Token: inv.Token, Password: "short"})
		require.ErrorIs(t, err, ErrAccountCreationRequired)

		// The invitation survives the failed attempts.
		stored, err := st.Invitations().GetInvitationByToken(ctx, inv.Token)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationPending, stored.Status)
	})

	t.Run("existing account joins via token without a password", func(t *testing.T) {
		existing := dir.add(directory.User{Email: "known@example.com"})
		inv, err := invites.Create(ctx, p, "known@example.com", domain.RoleAccountant, false)
		require.NoError(t, err)

		result, err := join.Join(ctx, JoinRequest{Token: inv.Token})
		require.NoError(t, err)
		require.False(t, result.NewAccount)
		require.Equal(t, existing.ID, result.UserID)
	})

	t.Run("active member cannot join again", func(t *testing.T) {
		inv, err := invites.Create(ctx, p, "twice@example.com", domain.RoleAccountant, false)
		require.NoError(t, err)

		_, err = join.Join(ctx, JoinRequest{Token: inv.Token, Password: "abcdef"})
		require.NoError(t, err)

		// A second invitation for the same email fails at create time, so
		// re-point a manually crafted one at the now-active member.
		_, err = invites.Create(ctx, p, "twice@example.com", domain.RoleAccountant, false)
		require.ErrorIs(t, err, ErrAlreadyMember)

		// Replaying the consumed invitation behaves as not found.
		_, err = join.Join(ctx, JoinRequest{Token: inv.Token})
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("expired invitation is persisted as expired exactly once", func(t *testing.T) {
		inv, err := invites.Create(ctx, p, "late@example.com", domain.RoleAccountant, false)
		require.NoError(t, err)

		invites.Now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
		defer func() { invites.Now = time.Now }()

		_, err = join.Join(ctx, JoinRequest{Token: inv.Token, Password: "abcdef"})
		require.ErrorIs(t, err, ErrInviteExpired)

		stored, err := st.Invitations().GetInvitationByToken(ctx, inv.Token)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationExpired, stored.Status)

		// A replay sees a terminal invitation, not a second expiry write.
		_, err = join.Join(ctx, JoinRequest{Token: inv.Token, Password: "abcdef"})
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("removed member rejoins on the same membership row", func(t *testing.T) {
		rejoiner := dir.add(directory.User{Email: "back@example.com"})
		original := seedMember(t, st, tenant.ID, rejoiner.ID, domain.RoleGeneralManager, domain.MembershipRemoved)

		inv, err := invites.Create(ctx, p, "back@example.com", domain.RoleAccountant, false)
		require.NoError(t, err)

		result, err := join.Join(ctx, JoinRequest{Token: inv.Token})
		require.NoError(t, err)
		require.False(t, result.NewAccount)

		m, err := st.Memberships().GetMembership(ctx, tenant.ID, rejoiner.ID)
		require.NoError(t, err)
		require.Equal(t, original.ID, m.ID)
		require.Equal(t, domain.MembershipActive, m.Status)
		// The role is overwritten by the new invitation's role.
		require.Equal(t, domain.RoleAccountant, m.Role)
	})

	t.Run("request without token or code is not found", func(t *testing.T) {
		_, err := join.Join(ctx, JoinRequest{Email: "x@example.com"})
		require.ErrorIs(t, err, ErrInviteNotFound)
	})
}
