package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// CodeLength is the length of a human-shareable invitation code in hex
// characters. Codes are derived from 4 random bytes.
const CodeLength = 8

// GenerateToken creates a cryptographically secure random token of the given
// byte length, returned as a base64url string without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateCode creates a short human-shareable code: 4 random bytes rendered
// as 8 uppercase hex characters. Codes are meant to be read over the phone or
// pasted from a chat message, not to be unguessable on their own; they are
// always checked together with the invitee's email address.
func GenerateCode() (string, error) {
	buf := make([]byte, CodeLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
