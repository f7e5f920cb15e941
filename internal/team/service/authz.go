package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lodgeline/lodgeline/internal/team/directory"
	"github.com/lodgeline/lodgeline/internal/team/domain"
	"github.com/lodgeline/lodgeline/internal/team/store"
	"github.com/lodgeline/lodgeline/pkg/slogx"
)

// AuthzService turns a bearer credential into a fully resolved Participant.
// Resolution is per request; nothing here is cached.
type AuthzService struct {
	Store     store.Store
	Directory directory.Directory
}

func NewAuthzService(st store.Store, dir directory.Directory) *AuthzService {
	return &AuthzService{Store: st, Directory: dir}
}

// Resolve verifies the token with the directory and works out the caller's
// tenant and role. Ownership is checked before membership so an owner who
// somehow also has a membership row still resolves as owner. A caller with
// no tenant at all resolves successfully with an empty workspace; handlers
// decide what that means per endpoint.
func (s *AuthzService) Resolve(ctx context.Context, token string) (domain.Participant, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.Participant{}, ErrUnauthorized
	}

	// 1. Verify the credential and fetch the caller's identity.
	user, err := s.Directory.ResolveToken(ctx, token)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidToken) {
			return domain.Participant{}, ErrUnauthorized
		}
		return domain.Participant{}, fmt.Errorf("resolve token: %w", err)
	}

	// 2. Owner path: the owner role is implicit in tenant ownership.
	tenant, err := s.Store.Tenants().GetTenantByOwner(ctx, user.ID)
	switch {
	case err == nil:
		return domain.Participant{
			User:   user,
			Tenant: &tenant,
			Role:   domain.RoleOwner,
		}, nil
	case !errors.Is(err, store.ErrNotFound):
		return domain.Participant{}, fmt.Errorf("lookup owned tenant: %w", err)
	}

	// 3. Member path: an active membership binds the caller to a tenant.
	membership, err := s.Store.Memberships().GetActiveMembershipByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Authenticated, but not part of any workspace.
			return domain.Participant{User: user}, nil
		}
		return domain.Participant{}, fmt.Errorf("lookup membership: %w", err)
	}

	tenant, err = s.Store.Tenants().GetTenantByID(ctx, membership.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Membership pointing at a vanished tenant. Treat as no
			// workspace rather than failing the whole request.
			log.Warn("active membership references missing tenant",
				"user_id", user.ID,
				"tenant_id", membership.TenantID,
			)
			return domain.Participant{User: user}, nil
		}
		return domain.Participant{}, fmt.Errorf("lookup tenant: %w", err)
	}

	return domain.Participant{
		User:       user,
		Tenant:     &tenant,
		Role:       membership.Role,
		Membership: &membership,
	}, nil
}
