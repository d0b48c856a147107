package models

// GrantType is the closed set of token-endpoint grant types. Requests naming
// anything else are rejected at parse time, never deep in grant handling.
type GrantType string

const (
	GrantClientCredentials GrantType = "client_credentials"
	GrantPassword          GrantType = "password"
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantRefreshToken      GrantType = "refresh_token"
)

func (g GrantType) IsValid() bool {
	switch g {
	case GrantClientCredentials, GrantPassword, GrantAuthorizationCode, GrantRefreshToken:
		return true
	}
	return false
}

// RequiresConfidentialClient reports whether the grant type may only be used
// by clients that can keep a secret. Public clients are limited to the
// authorization-code flow (with PKCE) and rotation of its refresh tokens.
func (g GrantType) RequiresConfidentialClient() bool {
	return g == GrantClientCredentials || g == GrantPassword
}

// Client is an OAuth 2.0 client registration. Immutable for the duration of a
// request; owned by the client directory.
//
// Invariants:
//   - ClientID is non-empty
//   - RedirectURIs are matched exactly, never by prefix
//   - an empty SecretHash marks a public client
type Client struct {
	ClientID      string
	SecretHash    string // bcrypt; never serialized or logged
	Name          string
	AllowedGrants []GrantType
	RedirectURIs  []string
	AllowedScopes []string
	Claims        map[string]string // extra claims embedded in access tokens
}

// Confidential clients are server-side apps with secure secret storage.
// Public clients are SPAs or native apps that cannot hold a secret.
func (c *Client) IsConfidential() bool {
	return c.SecretHash != ""
}

func (c *Client) CanUseGrant(grant GrantType) bool {
	if grant.RequiresConfidentialClient() && !c.IsConfidential() {
		return false
	}
	for _, g := range c.AllowedGrants {
		if g == grant {
			return true
		}
	}
	return false
}

// AllowsRedirectURI checks the registered set with byte-for-byte equality.
func (c *Client) AllowsRedirectURI(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// User is the resource owner tracked by the user directory.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt
	Claims       map[string]string
}
