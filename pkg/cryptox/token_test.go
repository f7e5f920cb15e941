package cryptox_test

import (
	"regexp"
	"testing"

	"github.com/lodgeline/lodgeline/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tok, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43) // 32 bytes base64url, no padding

	other, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)
}

func TestGenerateTokenRejectsNonPositiveSize(t *testing.T) {
	_, err := cryptox.GenerateToken(0)
	require.Error(t, err)
	_, err = cryptox.GenerateToken(-1)
	require.Error(t, err)
}

func TestGenerateCodeShape(t *testing.T) {
	codePattern := regexp.MustCompile(`^[0-9A-F]{8}$`)

	seen := make(map[string]struct{})
	for range 50 {
		code, err := cryptox.GenerateCode()
		require.NoError(t, err)
		require.Regexp(t, codePattern, code)
		seen[code] = struct{}{}
	}
	// 50 draws from a 32-bit space colliding would point at a broken source.
	require.Greater(t, len(seen), 45)
}
