package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lodgeline/lodgeline/internal/team/directory"
	"github.com/lodgeline/lodgeline/internal/team/domain"
	"github.com/lodgeline/lodgeline/internal/team/store"
	"github.com/lodgeline/lodgeline/pkg/idx"
	"github.com/lodgeline/lodgeline/pkg/slogx"
)

// MinPasswordLength applies to accounts created during a join.
const MinPasswordLength = 6

// JoinService converts a valid invitation into an active membership. It is
// the only writer that touches both the invitation and membership state
// machines in one operation.
type JoinService struct {
	Store     store.Store
	Directory directory.Directory
	Invites   *InvitesService
}

func NewJoinService(st store.Store, dir directory.Directory, invites *InvitesService) *JoinService {
	return &JoinService{Store: st, Directory: dir, Invites: invites}
}

// JoinRequest redeems an invitation either by Token or by Code plus Email.
// Password is only consulted when the email has no directory account yet.
type JoinRequest struct {
	Token    string
	Code     string
	Email    string
	Password string
}

type JoinResult struct {
	TenantID   string
	UserID     string
	Role       domain.Role
	NewAccount bool
}

// Join runs the whole workflow: resolve the invitation, expire it if stale,
// resolve or create the account, then accept and upsert the membership
// inside one transaction. The accept is a conditional update so concurrent
// joins on the same invitation cannot both succeed; the late loser gets
// ErrInviteConflict.
func (s *JoinService) Join(ctx context.Context, req JoinRequest) (JoinResult, error) {
	log := slogx.FromContext(ctx)
	now := s.Invites.now()

	// 1. Resolve the invitation. Consumed invitations behave as missing.
	inv, err := s.resolveInvitation(ctx, req)
	if err != nil {
		return JoinResult{}, err
	}
	if inv.Status != domain.InvitationPending {
		return JoinResult{}, ErrInviteNotFound
	}

	// 2. A stale invitation is expired here, on the join attempt. This is
	// the only write path for expiry.
	if inv.Expired(now) {
		if err := s.Store.Invitations().MarkInvitationExpired(ctx, inv.ID); err != nil {
			return JoinResult{}, fmt.Errorf("expire invitation: %w", err)
		}
		return JoinResult{}, ErrInviteExpired
	}

	// 3. Resolve or create the account for the invited email. Creation
	// happens outside the membership transaction because the directory may
	// be a remote service.
	user, newAccount, err := s.resolveUser(ctx, inv.Email, req.Password)
	if err != nil {
		return JoinResult{}, err
	}

	// 4. Accept the invitation and upsert the membership atomically.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		membership, err := tx.Memberships().GetMembership(ctx, inv.TenantID, user.ID)
		exists := true
		switch {
		case errors.Is(err, store.ErrNotFound):
			exists = false
		case err != nil:
			return fmt.Errorf("lookup membership: %w", err)
		case membership.Status == domain.MembershipActive:
			return ErrAlreadyMember
		}

		accepted, err := tx.Invitations().AcceptInvitation(ctx, inv.ID, user.ID, now)
		if err != nil {
			return fmt.Errorf("accept invitation: %w", err)
		}
		if !accepted {
			return ErrInviteConflict
		}

		if exists {
			// Reactivate in place; the role is reset to the invitation's.
			return tx.Memberships().ReactivateMembership(ctx, inv.TenantID, user.ID, inv.Role, now)
		}
		return tx.Memberships().CreateMembership(ctx, domain.Membership{
			ID:        idx.New().String(),
			TenantID:  inv.TenantID,
			UserID:    user.ID,
			Role:      inv.Role,
			Status:    domain.MembershipActive,
			InvitedBy: inv.InvitedBy,
			InvitedAt: inv.CreatedAt,
			JoinedAt:  &now,
		})
	})
	if err != nil {
		return JoinResult{}, err
	}

	log.Info("invitation accepted",
		"tenant_id", inv.TenantID,
		"invitation_id", inv.ID,
		"user_id", user.ID,
		"new_account", newAccount,
	)

	return JoinResult{
		TenantID:   inv.TenantID,
		UserID:     user.ID,
		Role:       inv.Role,
		NewAccount: newAccount,
	}, nil
}

func (s *JoinService) resolveInvitation(ctx context.Context, req JoinRequest) (domain.Invitation, error) {
	var (
		inv domain.Invitation
		err error
	)
	switch {
	case req.Token != "":
		inv, err = s.Store.Invitations().GetInvitationByToken(ctx, req.Token)
	case req.Code != "" && req.Email != "":
		inv, err = s.Store.Invitations().GetInvitationByCode(ctx,
			strings.ToUpper(strings.TrimSpace(req.Code)), req.Email)
	default:
		return domain.Invitation{}, ErrInviteNotFound
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInviteNotFound
		}
		return domain.Invitation{}, fmt.Errorf("lookup invitation: %w", err)
	}
	return inv, nil
}

// resolveUser finds the account for the invited email, creating one when it
// does not exist. A missing account without a usable password is the
// caller's cue to prompt for one.
func (s *JoinService) resolveUser(ctx context.Context, email, password string) (directory.User, bool, error) {
	user, err := s.Directory.LookupByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, directory.ErrNotFound) {
		return directory.User{}, false, fmt.Errorf("lookup account: %w", err)
	}

	if len(password) < MinPasswordLength {
		return directory.User{}, false, ErrAccountCreationRequired
	}

	user, err = s.Directory.CreateAccount(ctx, email, password)
	if err != nil {
		// Lost a creation race; the account exists now, use it.
		if errors.Is(err, directory.ErrAlreadyExists) {
			user, err = s.Directory.LookupByEmail(ctx, email)
			if err == nil {
				return user, false, nil
			}
		}
		return directory.User{}, false, fmt.Errorf("create account: %w", err)
	}
	return user, true, nil
}
