package models

import (
	"time"

	dErrors "signet/pkg/domain-errors"
)

// AuthorizationCodeGrant is the persisted record behind an authorization
// code. Single-use: the store deletes it atomically on first redemption.
// Nonce is carried from the authorize request so the ID token minted at
// redemption can echo it.
type AuthorizationCodeGrant struct {
	Code                string
	ClientID            string
	UserID              string
	RedirectURI         string
	Scopes              []string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
	CreatedAt           time.Time
	ExpiresAt           time.Time
}

func (g *AuthorizationCodeGrant) IsExpired(now time.Time) bool {
	return !g.ExpiresAt.After(now)
}

// ValidateForRedemption enforces the redemption invariants: the code must be
// unexpired, bound to the requesting client, and presented with the exact
// redirect URI stored at issuance.
func (g *AuthorizationCodeGrant) ValidateForRedemption(clientID, redirectURI string, now time.Time) error {
	if g.IsExpired(now) {
		return dErrors.New(dErrors.CodeInvalidGrant, "authorization code expired")
	}
	if g.ClientID != clientID {
		return dErrors.New(dErrors.CodeInvalidGrant, "authorization code was issued to another client")
	}
	if g.RedirectURI != redirectURI {
		return dErrors.New(dErrors.CodeInvalidGrant, "redirect_uri does not match")
	}
	return nil
}

// RefreshTokenGrant is the persisted record behind a refresh token. Each use
// invalidates the old token and issues a new one carrying the same scopes.
type RefreshTokenGrant struct {
	Token     string
	ClientID  string
	UserID    string
	Scopes    []string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (g *RefreshTokenGrant) IsExpired(now time.Time) bool {
	return !g.ExpiresAt.After(now)
}

func (g *RefreshTokenGrant) ValidateForUse(clientID string, now time.Time) error {
	if g.IsExpired(now) {
		return dErrors.New(dErrors.CodeInvalidGrant, "refresh token expired")
	}
	if g.ClientID != clientID {
		return dErrors.New(dErrors.CodeInvalidGrant, "refresh token was issued to another client")
	}
	return nil
}
