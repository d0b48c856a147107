package service

import (
	"context"
	"errors"

	"signet/internal/oauth/models"
	"signet/pkg/platform/sentinel"

	dErrors "signet/pkg/domain-errors"
)

// UserInfo resolves the caller to a subject and projects that user's claims.
// An established session subject wins; otherwise the bearer token is
// validated and its sub claim used.
func (s *Service) UserInfo(ctx context.Context, sessionSubject, bearerToken string) (*models.UserInfoResult, error) {
	ctx, span := tracer.Start(ctx, "oauth.userinfo")
	defer span.End()

	subject := sessionSubject
	if subject == "" {
		if bearerToken == "" {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
		}
		claims, err := s.tokens.ValidateAccessToken(bearerToken)
		if err != nil {
			return nil, err
		}
		subject = claims.Subject
	}
	if subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token carries no subject")
	}

	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up user")
	}

	return &models.UserInfoResult{
		Sub:    user.ID,
		Name:   user.Username,
		Claims: user.Claims,
	}, nil
}
