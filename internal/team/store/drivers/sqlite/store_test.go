package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lodgeline/lodgeline/internal/team/domain"
	"github.com/lodgeline/lodgeline/internal/team/store"
	"github.com/lodgeline/lodgeline/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := NewStore("file:" + filepath.Join(t.TempDir(), "team.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedTenant(t *testing.T, st store.Store, id, ownerUserID string) {
	t.Helper()
	require.NoError(t, st.Tenants().CreateTenant(context.Background(), domain.Tenant{
		ID: id, Name: "Seaside Rentals", OwnerUserID: ownerUserID,
	}))
}

func seedInvitation(t *testing.T, st store.Store, tenantID, email string) domain.Invitation {
	t.Helper()

	inv := domain.Invitation{
		ID:        idx.New().String(),
		TenantID:  tenantID,
		Email:     email,
		Role:      domain.RoleAccountant,
		Token:     "token-" + idx.New().String(),
		Code:      "AB12CD34",
		InvitedBy: "owner-1",
		Status:    domain.InvitationPending,
		ExpiresAt: time.Now().UTC().Add(domain.InvitationTTL),
	}
	require.NoError(t, st.Invitations().CreateInvitation(context.Background(), inv))
	return inv
}

func TestAcceptInvitationIsConditional(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTenant(t, st, "tenant-1", "owner-1")
	inv := seedInvitation(t, st, "tenant-1", "a@example.com")

	at := time.Now().UTC()
	accepted, err := st.Invitations().AcceptInvitation(ctx, inv.ID, "user-1", at)
	require.NoError(t, err)
	require.True(t, accepted)

	// The second accept loses: the row is no longer pending.
	accepted, err = st.Invitations().AcceptInvitation(ctx, inv.ID, "user-2", at)
	require.NoError(t, err)
	require.False(t, accepted)

	stored, err := st.Invitations().GetInvitationByToken(ctx, inv.Token)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationAccepted, stored.Status)
	require.Equal(t, "user-1", stored.AcceptedBy)
	require.NotNil(t, stored.AcceptedAt)
}

func TestCancelInvitationScoping(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTenant(t, st, "tenant-1", "owner-1")
	inv := seedInvitation(t, st, "tenant-1", "a@example.com")

	t.Run("cancel from another tenant is a no-op", func(t *testing.T) {
		require.NoError(t, st.Invitations().CancelInvitation(ctx, inv.ID, "tenant-2"))

		stored, err := st.Invitations().GetInvitationByToken(ctx, inv.Token)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationPending, stored.Status)
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		require.NoError(t, st.Invitations().CancelInvitation(ctx, inv.ID, "tenant-1"))
		require.NoError(t, st.Invitations().CancelInvitation(ctx, inv.ID, "tenant-1"))

		stored, err := st.Invitations().GetInvitationByToken(ctx, inv.Token)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationCancelled, stored.Status)
	})
}

func TestRefreshInvitation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTenant(t, st, "tenant-1", "owner-1")
	inv := seedInvitation(t, st, "tenant-1", "a@example.com")

	newExpiry := time.Now().UTC().Add(14 * 24 * time.Hour)
	updated, err := st.Invitations().RefreshInvitation(ctx, inv.ID, "tenant-1", "99EE88FF", newExpiry)
	require.NoError(t, err)
	require.True(t, updated)

	stored, err := st.Invitations().GetInvitationByToken(ctx, inv.Token)
	require.NoError(t, err)
	require.Equal(t, "99EE88FF", stored.Code)
	require.Equal(t, inv.Token, stored.Token)

	// Refreshing a non-pending invitation reports no update.
	_, err = st.Invitations().AcceptInvitation(ctx, inv.ID, "user-1", time.Now().UTC())
	require.NoError(t, err)
	updated, err = st.Invitations().RefreshInvitation(ctx, inv.ID, "tenant-1", "11223344", newExpiry)
	require.NoError(t, err)
	require.False(t, updated)
}

func TestGetInvitationByCodeMatchesEmailCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTenant(t, st, "tenant-1", "owner-1")
	inv := seedInvitation(t, st, "tenant-1", "mixed@example.com")

	found, err := st.Invitations().GetInvitationByCode(ctx, inv.Code, "MIXED@Example.COM")
	require.NoError(t, err)
	require.Equal(t, inv.ID, found.ID)

	_, err = st.Invitations().GetInvitationByCode(ctx, inv.Code, "other@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListTeamMembersOrdering(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTenant(t, st, "tenant-1", "owner-1")

	now := time.Now().UTC()
	earlier := now.Add(-2 * time.Hour)

	mk := func(id, userID string, status domain.MembershipStatus, joinedAt *time.Time) {
		require.NoError(t, st.Memberships().CreateMembership(ctx, domain.Membership{
			ID: id, TenantID: "tenant-1", UserID: userID,
			Role: domain.RoleAccountant, Status: status,
			InvitedAt: now, JoinedAt: joinedAt,
		}))
	}
	mk("m-late", "u-late", domain.MembershipActive, &now)
	mk("m-early", "u-early", domain.MembershipActive, &earlier)
	mk("m-pending", "u-pending", domain.MembershipPending, nil)
	mk("m-removed", "u-removed", domain.MembershipRemoved, &earlier)

	members, err := st.Memberships().ListTeamMembers(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, members, 3)
	require.Equal(t, "u-early", members[0].UserID)
	require.Equal(t, "u-late", members[1].UserID)
	require.Equal(t, "u-pending", members[2].UserID)
}

func TestCountActiveMembersExcludesOwnerRole(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTenant(t, st, "tenant-1", "owner-1")

	now := time.Now().UTC()
	require.NoError(t, st.Memberships().CreateMembership(ctx, domain.Membership{
		ID: "m-owner", TenantID: "tenant-1", UserID: "u-owner",
		Role: domain.RoleOwner, Status: domain.MembershipActive,
		InvitedAt: now, JoinedAt: &now,
	}))
	require.NoError(t, st.Memberships().CreateMembership(ctx, domain.Membership{
		ID: "m-gm", TenantID: "tenant-1", UserID: "u-gm",
		Role: domain.RoleGeneralManager, Status: domain.MembershipActive,
		InvitedAt: now, JoinedAt: &now,
	}))

	count, err := st.Memberships().CountActiveMembers(ctx, "tenant-1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	user := domain.User{ID: "u-1", Email: "dup@example.com", PasswordHash: "hash"}
	require.NoError(t, st.Users().CreateUser(ctx, user))

	clash := domain.User{ID: "u-2", Email: "DUP@example.com", PasswordHash: "hash"}
	err := st.Users().CreateUser(ctx, clash)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	sentinel := errors.New("abort")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tenants().CreateTenant(ctx, domain.Tenant{
			ID: "tenant-tx", Name: "Rollback Test", OwnerUserID: "u-1",
		}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = st.Tenants().GetTenantByID(ctx, "tenant-tx")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteTerminalInvitationsBefore(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedTenant(t, st, "tenant-1", "owner-1")

	pending := seedInvitation(t, st, "tenant-1", "pending@example.com")
	consumed := seedInvitation(t, st, "tenant-1", "done@example.com")
	_, err := st.Invitations().AcceptInvitation(ctx, consumed.ID, "user-1", time.Now().UTC())
	require.NoError(t, err)

	// A cutoff in the future sweeps every terminal row but never pending ones.
	require.NoError(t, st.Invitations().DeleteTerminalInvitationsBefore(ctx, time.Now().UTC().Add(time.Hour)))

	_, err = st.Invitations().GetInvitationByToken(ctx, consumed.Token)
	require.ErrorIs(t, err, store.ErrNotFound)

	still, err := st.Invitations().GetInvitationByToken(ctx, pending.Token)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationPending, still.Status)
}
