package service

import (
	"errors"
	"fmt"

	"github.com/lodgeline/lodgeline/internal/team/domain"
)

var (
	// ErrUnauthorized reports a missing, malformed or unverifiable credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden reports an authenticated caller whose role lacks the
	// permission for the operation.
	ErrForbidden = errors.New("forbidden")

	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidRole  = errors.New("invalid role")

	// ErrMemberNotFound covers both a missing membership row and one that
	// is not active; neither is addressable by the membership manager.
	ErrMemberNotFound = errors.New("member not found")
	// ErrSelfChange reports an owner trying to change or remove themselves.
	ErrSelfChange = errors.New("cannot modify own membership")
	// ErrOwnerImmutable reports an attempt to change or remove the tenant
	// owner through the membership manager.
	ErrOwnerImmutable = errors.New("owner membership is immutable")

	ErrAlreadyMember  = errors.New("already a team member")
	ErrInviteNotFound = errors.New("invitation not found")
	ErrInviteExpired  = errors.New("invitation has expired")
	// ErrInviteConflict reports losing the accept race: the invitation was
	// pending when read but no longer pending at write time.
	ErrInviteConflict = errors.New("invitation was consumed concurrently")
	// ErrAccountCreationRequired reports a join for an email with no
	// directory account and no usable password in the request.
	ErrAccountCreationRequired = errors.New("password required to create account")
)

// TeamLimitError reports the team-size cap being hit, carrying the limit so
// handlers can echo it back.
type TeamLimitError struct {
	Limit int
}

func (e *TeamLimitError) Error() string {
	return fmt.Sprintf("maximum team members reached (%d)", e.Limit)
}

// PendingInviteError reports a create attempt while an unexpired pending
// invitation already exists for the same email.
type PendingInviteError struct {
	InvitationID string
}

func (e *PendingInviteError) Error() string {
	return "an invitation is already pending for this email"
}

// InviteNotPendingError reports a validation against an invitation in a
// terminal state; Status names the state for the caller.
type InviteNotPendingError struct {
	Status domain.InvitationStatus
}

func (e *InviteNotPendingError) Error() string {
	return fmt.Sprintf("invitation already %s", e.Status)
}
