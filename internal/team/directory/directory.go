// Package directory abstracts the user-directory collaborator: the system of
// record for accounts and credentials. The team service never stores
// passwords or sessions of its own; it resolves bearer credentials and looks
// up or creates accounts through this interface.
package directory

import (
	"context"
	"errors"
)

var (
	// ErrInvalidToken reports a missing, malformed or expired credential.
	ErrInvalidToken = errors.New("directory: invalid token")
	// ErrNotFound reports an unknown user id or email.
	ErrNotFound = errors.New("directory: user not found")
	// ErrAlreadyExists reports an account creation for a taken email.
	ErrAlreadyExists = errors.New("directory: email already registered")
)

// User is a directory account as this service sees it.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Directory is the user-directory contract.
type Directory interface {
	// ResolveToken resolves a bearer credential to the account it was
	// issued for. Invalid or expired credentials yield ErrInvalidToken.
	ResolveToken(ctx context.Context, token string) (User, error)

	// LookupByEmail finds an account by email (case-insensitive).
	LookupByEmail(ctx context.Context, email string) (User, error)

	// CreateAccount registers a new account. Used by the join workflow when
	// an invitee has no directory account yet.
	CreateAccount(ctx context.Context, email, password string) (User, error)

	// GetProfile fetches display fields for a known user id.
	GetProfile(ctx context.Context, userID string) (User, error)
}
