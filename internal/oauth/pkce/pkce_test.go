package pkce

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "signet/pkg/domain-errors"
)

func TestVerify_S256(t *testing.T) {
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	require.NoError(t, Verify(challenge, MethodS256, verifier))

	err := Verify(challenge, MethodS256, "some-other-verifier")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidGrant, dErrors.CodeOf(err))
}

func TestVerify_Plain(t *testing.T) {
	require.NoError(t, Verify("plain-secret", MethodPlain, "plain-secret"))
	require.Error(t, Verify("plain-secret", MethodPlain, "wrong"))
}

func TestVerify_VerifierRequiredWhenChallengeRegistered(t *testing.T) {
	err := Verify("registered-challenge", MethodS256, "")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidGrant, dErrors.CodeOf(err))
}

func TestVerify_NoChallengeRegistered(t *testing.T) {
	// Without a registered challenge the verifier is ignored entirely.
	require.NoError(t, Verify("", MethodS256, ""))
	require.NoError(t, Verify("", MethodS256, "spurious"))
}

func TestChallenge_S256IsUnpadded(t *testing.T) {
	got := Challenge("any-verifier", MethodS256)
	assert.NotContains(t, got, "=")
	assert.NotContains(t, got, "+")
	assert.NotContains(t, got, "/")
}
