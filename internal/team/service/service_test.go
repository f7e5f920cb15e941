package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lodgeline/lodgeline/internal/team/directory"
	"github.com/lodgeline/lodgeline/internal/team/domain"
	"github.com/lodgeline/lodgeline/internal/team/store"
	"github.com/lodgeline/lodgeline/internal/team/store/drivers/sqlite"
	"github.com/lodgeline/lodgeline/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "team.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// fakeDirectory is an in-memory user directory for service tests. Tokens are
// "tok:" followed by the user id.
type fakeDirectory struct {
	byEmail     map[string]directory.User
	byID        map[string]directory.User
	profileFail map[string]bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		byEmail:     make(map[string]directory.User),
		byID:        make(map[string]directory.User),
		profileFail: make(map[string]bool),
	}
}

func (d *fakeDirectory) add(user directory.User) directory.User {
	if user.ID == "" {
		user.ID = idx.New().String()
	}
	user.Email = strings.ToLower(user.Email)
	d.byEmail[user.Email] = user
	d.byID[user.ID] = user
	return user
}

func (d *fakeDirectory) ResolveToken(ctx context.Context, token string) (directory.User, error) {
	id, ok := strings.CutPrefix(token, "tok:")
	if !ok {
		return directory.User{}, directory.ErrInvalidToken
	}
	user, found := d.byID[id]
	if !found {
		return directory.User{}, directory.ErrInvalidToken
	}
	return user, nil
}

func (d *fakeDirectory) LookupByEmail(ctx context.Context, email string) (directory.User, error) {
	user, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return directory.User{}, directory.ErrNotFound
	}
	return user, nil
}

func (d *fakeDirectory) CreateAccount(ctx context.Context, email, password string) (directory.User, error) {
	email = strings.ToLower(email)
	if _, exists := d.byEmail[email]; exists {
		return directory.User{}, directory.ErrAlreadyExists
	}
	return d.add(directory.User{Email: email}), nil
}

func (d *fakeDirectory) GetProfile(ctx context.Context, userID string) (directory.User, error) {
	if d.profileFail[userID] {
		return directory.User{}, errors.New("directory unavailable")
	}
	user, ok := d.byID[userID]
	if !ok {
		return directory.User{}, directory.ErrNotFound
	}
	return user, nil
}

var _ directory.Directory = (*fakeDirectory)(nil)

func seedTenant(t *testing.T, st store.Store, ownerID string, maxMembers int) domain.Tenant {
	t.Helper()

	tenant := domain.Tenant{
		ID:             idx.New().String(),
		Name:           "Seaside Rentals",
		BusinessName:   "Seaside Rentals Pty Ltd",
		OwnerUserID:    ownerID,
		MaxTeamMembers: maxMembers,
	}
	require.NoError(t, st.Tenants().CreateTenant(context.Background(), tenant))
	return tenant
}

func seedMember(t *testing.T, st store.Store, tenantID, userID string, role domain.Role, status domain.MembershipStatus) domain.Membership {
	t.Helper()

	now := time.Now().UTC()
	m := domain.Membership{
		ID:        idx.New().String(),
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		Status:    status,
		InvitedAt: now,
		JoinedAt:  &now,
	}
	require.NoError(t, st.Memberships().CreateMembership(context.Background(), m))
	return m
}

func ownerParticipant(user directory.User, tenant domain.Tenant) domain.Participant {
	return domain.Participant{User: user, Tenant: &tenant, Role: domain.RoleOwner}
}
