package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"signet/internal/audit"
	"signet/internal/oauth/models"
	"signet/pkg/platform/sentinel"

	dErrors "signet/pkg/domain-errors"
)

// Authorize runs the authorization-endpoint state machine. On success the
// result carries a redirect back to the client with a freshly minted
// authorization code; when no authenticated subject is attached the result
// instead points at the login surface with the original request preserved
// in return_url.
func (s *Service) Authorize(ctx context.Context, req *models.AuthorizeRequest) (*models.AuthorizeResult, error) {
	ctx, span := tracer.Start(ctx, "oauth.authorize")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.metrics.AuthorizeRequests.WithLabelValues("invalid_request").Inc()
		return nil, err
	}

	client, err := s.clients.FindByClientID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.AuthorizeRequests.WithLabelValues("unknown_client").Inc()
			return nil, dErrors.New(dErrors.CodeInvalidRequest, "unknown client")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up client")
	}

	if !client.AllowsRedirectURI(req.RedirectURI) {
		s.metrics.AuthorizeRequests.WithLabelValues("redirect_mismatch").Inc()
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "redirect_uri is not registered for this client")
	}

	if req.Subject == "" {
		s.metrics.AuthorizeRequests.WithLabelValues("login_redirect").Inc()
		s.audit.Record(ctx, audit.Event{
			Type:     audit.EventLoginRequired,
			ClientID: client.ClientID,
		})
		return &models.AuthorizeResult{
			LoginRequired: true,
			RedirectURL:   s.loginURL + "?return_url=" + url.QueryEscape(req.ReturnURL),
		}, nil
	}

	user, err := s.users.FindByID(ctx, req.Subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.AuthorizeRequests.WithLabelValues("unknown_user").Inc()
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unknown user")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up user")
	}

	code, err := s.tokens.GenerateAuthorizationCode()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "generate authorization code")
	}

	now := s.clock()
	grant := &models.AuthorizationCodeGrant{
		Code:                code,
		ClientID:            client.ClientID,
		UserID:              user.ID,
		RedirectURI:         req.RedirectURI,
		Scopes:              req.RequestedScopes(),
		Nonce:               req.Nonce,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		CreatedAt:           now,
		ExpiresAt:           now.Add(s.codeTTL),
	}
	if err := s.codes.Create(ctx, grant); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist authorization code")
	}

	redirect, err := buildCodeRedirect(req.RedirectURI, code, req.State)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build redirect")
	}

	s.metrics.AuthorizeRequests.WithLabelValues("code_issued").Inc()
	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventCodeIssued,
		ClientID: client.ClientID,
		UserID:   user.ID,
	})
	s.logger.InfoContext(ctx, "authorization code issued",
		"client_id", client.ClientID,
		"user_id", user.ID,
	)

	return &models.AuthorizeResult{
		Code:        code,
		State:       req.State,
		RedirectURL: redirect,
	}, nil
}

// buildCodeRedirect appends code and state to the registered redirect URI,
// preserving any query parameters the client registered with.
func buildCodeRedirect(redirectURI, code, state string) (string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("parse redirect_uri: %w", err)
	}
	q := u.Query()
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
