package cryptox_test

import (
	"strings"
	"testing"

	"github.com/lodgeline/lodgeline/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := cryptox.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	require.NoError(t, cryptox.VerifyPassword("correct horse battery staple", hash))
	require.ErrorIs(t,
		cryptox.VerifyPassword("wrong password", hash),
		cryptox.ErrPasswordMismatch,
	)
}

func TestHashesAreSalted(t *testing.T) {
	a, err := cryptox.HashPassword("abcdef")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("abcdef")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	require.Error(t, cryptox.VerifyPassword("x", "not-a-phc-string"))
	require.Error(t, cryptox.VerifyPassword("x", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"))
}
