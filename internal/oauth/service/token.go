package service

import (
	"context"
	"errors"
	"strings"

	"signet/internal/audit"
	"signet/internal/oauth/models"
	"signet/internal/oauth/pkce"
	"signet/internal/oauth/secrets"
	"signet/pkg/platform/sentinel"

	dErrors "signet/pkg/domain-errors"
)

// Token authenticates the client and dispatches to the handler for the
// requested grant type. Every failure maps to a coded error; the transport
// layer renders the code as the OAuth error field.
func (s *Service) Token(ctx context.Context, req *models.TokenRequest) (*models.TokenResult, error) {
	ctx, span := tracer.Start(ctx, "oauth.token")
	defer span.End()

	start := s.clock()
	defer func() {
		s.metrics.TokenRequestMs.Observe(float64(s.clock().Sub(start).Milliseconds()))
	}()

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.recordGrantFailure(ctx, req, err)
		return nil, err
	}

	client, err := s.authenticateClient(ctx, req)
	if err != nil {
		s.recordGrantFailure(ctx, req, err)
		return nil, err
	}

	var result *models.TokenResult
	switch req.Grant() {
	case models.GrantClientCredentials:
		result, err = s.grantClientCredentials(ctx, client)
	case models.GrantPassword:
		result, err = s.grantPassword(ctx, client, req)
	case models.GrantAuthorizationCode:
		result, err = s.grantAuthorizationCode(ctx, client, req)
	case models.GrantRefreshToken:
		result, err = s.grantRefreshToken(ctx, client, req)
	default:
		err = dErrors.New(dErrors.CodeUnsupportedGrantType, "unsupported grant_type")
	}
	if err != nil {
		s.recordGrantFailure(ctx, req, err)
		return nil, err
	}

	s.metrics.TokensIssued.WithLabelValues(string(req.Grant())).Inc()
	s.logger.InfoContext(ctx, "token issued",
		"client_id", client.ClientID,
		"grant_type", string(req.Grant()),
	)
	return result, nil
}

func (s *Service) recordGrantFailure(ctx context.Context, req *models.TokenRequest, err error) {
	code := string(dErrors.CodeOf(err))
	s.metrics.GrantFailures.WithLabelValues(code).Inc()
	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventGrantRejected,
		ClientID: req.ClientID,
		Detail: map[string]string{
			"grant_type": req.GrantType,
			"error":      code,
		},
	})
}

// authenticateClient resolves the client and checks its credentials and
// grant allowance. Confidential clients must present their secret; public
// clients must not present one at all.
func (s *Service) authenticateClient(ctx context.Context, req *models.TokenRequest) (*models.Client, error) {
	client, err := s.clients.FindByClientID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidClient, "invalid client")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up client")
	}

	if client.IsConfidential() {
		if req.ClientSecret == "" {
			return nil, dErrors.New(dErrors.CodeInvalidClient, "client authentication required")
		}
		if err := secrets.Verify(req.ClientSecret, client.SecretHash); err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidClient, "invalid client")
		}
	} else if req.ClientSecret != "" {
		return nil, dErrors.New(dErrors.CodeInvalidClient, "public client must not send a secret")
	}

	if !client.CanUseGrant(req.Grant()) {
		return nil, dErrors.New(dErrors.CodeInvalidClient, "grant type not allowed for this client")
	}
	return client, nil
}

// grantClientCredentials issues an access token for the client acting on its
// own behalf. No user, no refresh token.
func (s *Service) grantClientCredentials(ctx context.Context, client *models.Client) (*models.TokenResult, error) {
	access, err := s.tokens.GenerateAccessToken(client, client.ClientID, client.AllowedScopes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mint access token")
	}
	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventTokenIssued,
		ClientID: client.ClientID,
	})
	return s.tokenResult(access, "", "", client.AllowedScopes), nil
}

// grantPassword authenticates the resource owner directly and issues an
// access and refresh token pair.
func (s *Service) grantPassword(ctx context.Context, client *models.Client, req *models.TokenRequest) (*models.TokenResult, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidGrant, "invalid username or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up user")
	}
	if err := secrets.Verify(req.Password, user.PasswordHash); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidGrant, "invalid username or password")
	}

	access, err := s.tokens.GenerateAccessToken(client, user.ID, client.AllowedScopes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mint access token")
	}
	refresh, err := s.issueRefreshToken(ctx, client.ClientID, user.ID, client.AllowedScopes)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventTokenIssued,
		ClientID: client.ClientID,
		UserID:   user.ID,
	})
	return s.tokenResult(access, refresh, "", client.AllowedScopes), nil
}

// grantAuthorizationCode redeems a code for tokens. The code is consumed
// before validation, so a failed redemption attempt still burns it; a stolen
// code cannot be retried against a different redirect URI or verifier.
func (s *Service) grantAuthorizationCode(ctx context.Context, client *models.Client, req *models.TokenRequest) (*models.TokenResult, error) {
	now := s.clock()
	grant, err := s.codes.Consume(ctx, req.Code, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return nil, dErrors.New(dErrors.CodeInvalidGrant, "invalid authorization code")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "consume authorization code")
	}
	if err := grant.ValidateForRedemption(client.ClientID, req.RedirectURI, now); err != nil {
		return nil, err
	}
	if client.IsConfidential() || grant.CodeChallenge != "" {
		if err := pkce.Verify(grant.CodeChallenge, grant.CodeChallengeMethod, req.CodeVerifier); err != nil {
			return nil, err
		}
	} else {
		// Public clients never get a challenge-free redemption path.
		return nil, dErrors.New(dErrors.CodeInvalidGrant, "code_challenge is required for public clients")
	}

	user, err := s.users.FindByID(ctx, grant.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidGrant, "unknown user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up user")
	}

	access, err := s.tokens.GenerateAccessToken(client, user.ID, grant.Scopes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mint access token")
	}
	idToken, err := s.tokens.GenerateIDToken(user, client.ClientID, grant.Nonce)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mint id token")
	}
	refresh, err := s.issueRefreshToken(ctx, client.ClientID, user.ID, grant.Scopes)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventCodeRedeemed,
		ClientID: client.ClientID,
		UserID:   user.ID,
	})
	return s.tokenResult(access, refresh, idToken, grant.Scopes), nil
}

// grantRefreshToken rotates a refresh token: the presented token is consumed
// atomically and a replacement is issued with the same scopes. Consuming
// before validating means a token presented by the wrong client is revoked
// on the spot.
func (s *Service) grantRefreshToken(ctx context.Context, client *models.Client, req *models.TokenRequest) (*models.TokenResult, error) {
	now := s.clock()
	old, err := s.refresh.Consume(ctx, req.RefreshToken, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return nil, dErrors.New(dErrors.CodeInvalidGrant, "invalid refresh token")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "consume refresh token")
	}
	if err := old.ValidateForUse(client.ClientID, now); err != nil {
		return nil, err
	}

	access, err := s.tokens.GenerateAccessToken(client, old.UserID, old.Scopes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mint access token")
	}
	next, err := s.issueRefreshToken(ctx, client.ClientID, old.UserID, old.Scopes)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventTokenRefresh,
		ClientID: client.ClientID,
		UserID:   old.UserID,
	})
	return s.tokenResult(access, next, "", old.Scopes), nil
}

func (s *Service) issueRefreshToken(ctx context.Context, clientID, userID string, scopes []string) (string, error) {
	refresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "mint refresh token")
	}
	now := s.clock()
	grant := &models.RefreshTokenGrant{
		Token:     refresh,
		ClientID:  clientID,
		UserID:    userID,
		Scopes:    scopes,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.refresh.Create(ctx, grant); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "persist refresh token")
	}
	return refresh, nil
}

func (s *Service) tokenResult(access, refresh, idToken string, scopes []string) *models.TokenResult {
	return &models.TokenResult{
		AccessToken:  access,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokens.AccessTokenTTL().Seconds()),
		RefreshToken: refresh,
		IDToken:      idToken,
		Scope:        strings.Join(scopes, " "),
	}
}
