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

// MembersService manages the team roster: listing, role changes and removal.
type MembersService struct {
	Store     store.Store
	Directory directory.Directory
}

func NewMembersService(st store.Store, dir directory.Directory) *MembersService {
	return &MembersService{Store: st, Directory: dir}
}

// MemberEntry pairs a membership row with the member's directory profile.
// ProfileErr is set when the profile lookup failed; the roster is still
// returned with whatever the membership row knows.
type MemberEntry struct {
	Membership domain.Membership
	Profile    directory.User
	ProfileErr error
}

// TeamList is the roster plus the tenant's effective size limit. MaxMembers
// includes the owner, matching how the limit is presented to users.
type TeamList struct {
	Members    []MemberEntry
	MaxMembers int
}

// ListMembers returns active and pending members ordered by join time, each
// enriched with the directory profile. Only owners and general managers may
// read the roster.
func (s *MembersService) ListMembers(ctx context.Context, p domain.Participant) (TeamList, error) {
	if !p.Role.CanListMembers() {
		return TeamList{}, ErrForbidden
	}

	memberships, err := s.Store.Memberships().ListTeamMembers(ctx, p.Tenant.ID)
	if err != nil {
		return TeamList{}, fmt.Errorf("list team members: %w", err)
	}

	log := slogx.FromContext(ctx)
	entries := make([]MemberEntry, 0, len(memberships))
	for _, m := range memberships {
		entry := MemberEntry{Membership: m}
		profile, err := s.Directory.GetProfile(ctx, m.UserID)
		if err != nil {
			log.Warn("member profile lookup failed",
				"tenant_id", p.Tenant.ID,
				"user_id", m.UserID,
				"error", err,
			)
			entry.ProfileErr = err
		} else {
			entry.Profile = profile
		}
		entries = append(entries, entry)
	}

	return TeamList{
		Members:    entries,
		MaxMembers: p.Tenant.TeamCap() + 1,
	}, nil
}

// ChangeRole moves an active member to a new invitable role. Only the owner
// may do this, and neither the owner's own row nor the implicit owner role
// can be touched.
func (s *MembersService) ChangeRole(ctx context.Context, p domain.Participant, targetUserID string, role domain.Role) error {
	// 1. Only the owner manages roles.
	if !p.IsOwner() {
		return ErrForbidden
	}

	// 2. The owner role cannot be granted, and unknown roles are rejected.
	if !role.Invitable() {
		return ErrInvalidRole
	}

	// 3. Self and owner rows are off limits.
	if targetUserID == p.User.ID {
		return ErrSelfChange
	}
	if targetUserID == p.Tenant.OwnerUserID {
		return ErrOwnerImmutable
	}

	// 4. The target must hold an active membership.
	membership, err := s.Store.Memberships().GetMembership(ctx, p.Tenant.ID, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("lookup membership: %w", err)
	}
	if membership.Status != domain.MembershipActive {
		return ErrMemberNotFound
	}

	// 5. A membership row holding the owner role is immutable, even when it
	// belongs to someone other than the tenant's implicit owner.
	if membership.Role == domain.RoleOwner {
		return ErrOwnerImmutable
	}

	if err := s.Store.Memberships().UpdateMembershipRole(ctx, p.Tenant.ID, targetUserID, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	slogx.FromContext(ctx).Info("member role changed",
		"tenant_id", p.Tenant.ID,
		"user_id", targetUserID,
		"role", string(role),
	)
	return nil
}

// Remove soft deletes an active member. The row stays behind with status
// removed so a later invitation can reactivate it.
func (s *MembersService) Remove(ctx context.Context, p domain.Participant, targetUserID string) error {
	// 1. Only the owner removes members.
	if !p.IsOwner() {
		return ErrForbidden
	}

	// 2. The owner cannot remove themselves, and the owner row is immutable.
	if targetUserID == p.User.ID {
		return ErrSelfChange
	}
	if targetUserID == p.Tenant.OwnerUserID {
		return ErrOwnerImmutable
	}

	// 3. The target must hold an active membership.
	membership, err := s.Store.Memberships().GetMembership(ctx, p.Tenant.ID, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("lookup membership: %w", err)
	}
	if membership.Status != domain.MembershipActive {
		return ErrMemberNotFound
	}

	// 4. Owner-role rows cannot be removed through this subsystem.
	if membership.Role == domain.RoleOwner {
		return ErrOwnerImmutable
	}

	if err := s.Store.Memberships().UpdateMembershipStatus(ctx, p.Tenant.ID, targetUserID, domain.MembershipRemoved); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	slogx.FromContext(ctx).Info("member removed",
		"tenant_id", p.Tenant.ID,
		"user_id", targetUserID,
	)
	return nil
}
