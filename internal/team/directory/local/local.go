// Package local is a sqlite-backed user directory for standalone
// deployments: accounts live in the service's own database and bearer
// credentials are HS256 JWTs signed with a shared secret. Production
// deployments point the service at the platform directory instead.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lodgeline/lodgeline/internal/team/directory"
	"github.com/lodgeline/lodgeline/internal/team/domain"
	"github.com/lodgeline/lodgeline/internal/team/store"
	"github.com/lodgeline/lodgeline/pkg/cryptox"
	"github.com/lodgeline/lodgeline/pkg/idx"
)

// DefaultTokenTTL bounds tokens minted by IssueToken.
const DefaultTokenTTL = 24 * time.Hour

type Local struct {
	Store  store.Store
	Secret []byte
	Issuer string
}

var _ directory.Directory = (*Local)(nil)

func New(st store.Store, secret []byte, issuer string) *Local {
	return &Local{Store: st, Secret: secret, Issuer: issuer}
}

func (l *Local) ResolveToken(ctx context.Context, token string) (directory.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return l.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(l.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return directory.User{}, directory.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return directory.User{}, directory.ErrInvalidToken
	}

	user, err := l.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return directory.User{}, directory.ErrInvalidToken
		}
		return directory.User{}, err
	}
	return toDirectoryUser(user), nil
}

func (l *Local) LookupByEmail(ctx context.Context, email string) (directory.User, error) {
	user, err := l.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return directory.User{}, directory.ErrNotFound
		}
		return directory.User{}, err
	}
	return toDirectoryUser(user), nil
}

func (l *Local) CreateAccount(ctx context.Context, email, password string) (directory.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return directory.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: hash,
	}
	if err := l.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return directory.User{}, directory.ErrAlreadyExists
		}
		return directory.User{}, err
	}
	return toDirectoryUser(user), nil
}

func (l *Local) GetProfile(ctx context.Context, userID string) (directory.User, error) {
	user, err := l.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return directory.User{}, directory.ErrNotFound
		}
		return directory.User{}, err
	}
	return toDirectoryUser(user), nil
}

// IssueToken mints a bearer token for a known account. Standalone
// deployments use this behind their login flow; tests use it directly.
func (l *Local) IssueToken(userID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now().UTC()

	claims := jwt.RegisteredClaims{
		Issuer:    l.Issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.Secret)
	if err != nil {
		return "", fmt.Errorf("local directory: sign token: %w", err)
	}
	return token, nil
}

// VerifyPassword checks an account's password, for login flows layered on
// top of this directory.
func (l *Local) VerifyPassword(ctx context.Context, email, password string) (directory.User, error) {
	user, err := l.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return directory.User{}, directory.ErrNotFound
		}
		return directory.User{}, err
	}
	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return directory.User{}, directory.ErrInvalidToken
	}
	return toDirectoryUser(user), nil
}

func toDirectoryUser(u domain.User) directory.User {
	return directory.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}
