package models

import (
	"strings"

	dErrors "signet/pkg/domain-errors"
)

// AuthorizeRequest is the parsed authorize-endpoint query. Subject is the
// user identifier of an established session; empty means the caller has not
// authenticated yet and must be sent to the login surface.
type AuthorizeRequest struct {
	ClientID            string
	ResponseType        string
	RedirectURI         string
	Scope               string
	State               string
	Nonce               string
	CodeChallenge       string
	CodeChallengeMethod string
	Subject             string

	// ReturnURL is the original path and query, used to resume the flow
	// after login.
	ReturnURL string
}

func (r *AuthorizeRequest) Normalize() {
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.ResponseType = strings.TrimSpace(r.ResponseType)
	r.RedirectURI = strings.TrimSpace(r.RedirectURI)
	r.Scope = strings.TrimSpace(r.Scope)
	if r.CodeChallenge != "" && r.CodeChallengeMethod == "" {
		r.CodeChallengeMethod = "plain"
	}
}

func (r *AuthorizeRequest) Validate() error {
	if r.ClientID == "" {
		return dErrors.New(dErrors.CodeInvalidRequest, "client_id is required")
	}
	if r.RedirectURI == "" {
		return dErrors.New(dErrors.CodeInvalidRequest, "redirect_uri is required")
	}
	if r.ResponseType != "code" {
		return dErrors.New(dErrors.CodeInvalidRequest, "response_type must be code")
	}
	if r.CodeChallenge != "" {
		if r.CodeChallengeMethod != "S256" && r.CodeChallengeMethod != "plain" {
			return dErrors.New(dErrors.CodeInvalidRequest, "invalid code_challenge_method")
		}
	}
	return nil
}

// RequestedScopes splits the space-delimited scope parameter.
func (r *AuthorizeRequest) RequestedScopes() []string {
	return strings.Fields(r.Scope)
}

// AuthorizeResult is the outcome of a completed authorize request. Either a
// code redirect back to the client, or a deferred continuation to the login
// surface (LoginRequired true).
type AuthorizeResult struct {
	Code          string
	State         string
	RedirectURL   string
	LoginRequired bool
}

// TokenRequest is the transient value parsed from the token-endpoint body.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	CodeVerifier string `json:"code_verifier"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	Scope        string `json:"scope"`
}

func (r *TokenRequest) Normalize() {
	r.GrantType = strings.TrimSpace(strings.ToLower(r.GrantType))
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.RedirectURI = strings.TrimSpace(r.RedirectURI)
}

// Validate rejects unknown grant types and missing per-grant parameters up
// front, so the dispatcher only ever sees a well-formed request.
func (r *TokenRequest) Validate() error {
	if r.ClientID == "" {
		return dErrors.New(dErrors.CodeInvalidClient, "client_id is required")
	}
	grant := GrantType(r.GrantType)
	if !grant.IsValid() {
		return dErrors.New(dErrors.CodeUnsupportedGrantType, "unsupported grant_type")
	}
	switch grant {
	case GrantAuthorizationCode:
		if r.Code == "" {
			return dErrors.New(dErrors.CodeInvalidRequest, "code is required")
		}
		if r.RedirectURI == "" {
			return dErrors.New(dErrors.CodeInvalidRequest, "redirect_uri is required")
		}
	case GrantRefreshToken:
		if r.RefreshToken == "" {
			return dErrors.New(dErrors.CodeInvalidRequest, "refresh_token is required")
		}
	case GrantPassword:
		if r.Username == "" || r.Password == "" {
			return dErrors.New(dErrors.CodeInvalidRequest, "username and password are required")
		}
	}
	return nil
}

// Grant returns the validated grant type. Only meaningful after Validate.
func (r *TokenRequest) Grant() GrantType {
	return GrantType(r.GrantType)
}

// TokenResult is the successful token-endpoint payload.
type TokenResult struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// UserInfoResult is the userinfo projection of a resolved subject.
type UserInfoResult struct {
	Sub    string            `json:"sub"`
	Name   string            `json:"name"`
	Claims map[string]string `json:"claims"`
}
