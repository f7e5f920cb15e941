package domain

import "time"

// User is a locally stored directory account. Only the local directory mode
// persists these; in remote mode accounts live entirely in the external
// directory service.
type User struct {
	ID    string
	Email string
	Name  string
	// AvatarURL is optional profile imagery surfaced in member lists.
	AvatarURL    string
	PasswordHash string // argon2id, PHC encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
