package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lodgeline/lodgeline/internal/team/directory"
	"github.com/lodgeline/lodgeline/internal/team/domain"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	dir := newFakeDirectory()

	owner := dir.add(directory.User{Email: "owner@seaside.test", Name: "Olivia"})
	manager := dir.add(directory.User{Email: "gm@seaside.test", Name: "Morgan"})
	outsider := dir.add(directory.User{Email: "outsider@elsewhere.test"})

	tenant := seedTenant(t, st, owner.ID, 3)
	seedMember(t, st, tenant.ID, manager.ID, domain.RoleGeneralManager, domain.MembershipActive)

	authz := NewAuthzService(st, dir)

	t.Run("missing token is unauthorized", func(t *testing.T) {
		_, err := authz.Resolve(ctx, "")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		_, err := authz.Resolve(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("owner resolves via tenant ownership", func(t *testing.T) {
		p, err := authz.Resolve(ctx, "tok:"+owner.ID)
		require.NoError(t, err)
		require.True(t, p.IsOwner())
		require.Equal(t, tenant.ID, p.Tenant.ID)
		require.Nil(t, p.Membership)
	})

	t.Run("member resolves via active membership", func(t *testing.T) {
		p, err := authz.Resolve(ctx, "tok:"+manager.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleGeneralManager, p.Role)
		require.Equal(t, tenant.ID, p.Tenant.ID)
		require.NotNil(t, p.Membership)
	})

	t.Run("user without workspace resolves with empty tenant", func(t *testing.T) {
		p, err := authz.Resolve(ctx, "tok:"+outsider.ID)
		require.NoError(t, err)
		require.False(t, p.HasWorkspace())
	})

	t.Run("removed membership does not grant a workspace", func(t *testing.T) {
		removed := dir.add(directory.User{Email: "gone@seaside.test"})
		seedMember(t, st, tenant.ID, removed.ID, domain.RoleAccountant, domain.MembershipRemoved)

		p, err := authz.Resolve(ctx, "tok:"+removed.ID)
		require.NoError(t, err)
		require.False(t, p.HasWorkspace())
	})
}
