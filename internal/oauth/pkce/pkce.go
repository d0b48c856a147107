// Package pkce implements Proof Key for Code Exchange (RFC 7636) challenge
// verification for the token endpoint.
package pkce

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	dErrors "signet/pkg/domain-errors"
)

const (
	MethodPlain = "plain"
	MethodS256  = "S256"
)

// Challenge computes the challenge a verifier should produce under the given
// method. S256 is SHA-256 then base64url without padding; plain is identity.
func Challenge(verifier, method string) string {
	if method == MethodS256 {
		sum := sha256.Sum256([]byte(verifier))
		return base64.RawURLEncoding.EncodeToString(sum[:])
	}
	return verifier
}

// Verify checks a code_verifier against the challenge registered at the
// authorize step. A registered challenge makes the verifier mandatory.
func Verify(challenge, method, verifier string) error {
	if challenge == "" {
		return nil
	}
	if verifier == "" {
		return dErrors.New(dErrors.CodeInvalidGrant, "code_verifier is required")
	}
	expected := Challenge(verifier, method)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(challenge)) != 1 {
		return dErrors.New(dErrors.CodeInvalidGrant, "code_verifier does not match")
	}
	return nil
}
