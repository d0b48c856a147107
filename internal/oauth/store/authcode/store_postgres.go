package authcode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"signet/internal/oauth/models"
	"signet/pkg/platform/sentinel"
)

// Postgres persists authorization codes durably. DELETE ... RETURNING makes
// redemption a single atomic statement, so concurrent redemptions of the same
// code cannot both succeed.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, grant *models.AuthorizationCodeGrant) error {
	query := `
		INSERT INTO auth_code_grants
			(code, client_id, user_id, redirect_uri, scopes, nonce, code_challenge, code_challenge_method, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		grant.Code, grant.ClientID, grant.UserID, grant.RedirectURI,
		pq.Array(grant.Scopes), grant.Nonce, grant.CodeChallenge,
		grant.CodeChallengeMethod, grant.CreatedAt, grant.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("store authorization code: %w", err)
	}
	return nil
}

func (s *Postgres) Consume(ctx context.Context, code string, now time.Time) (*models.AuthorizationCodeGrant, error) {
	query := `
		DELETE FROM auth_code_grants
		WHERE code = $1
		RETURNING code, client_id, user_id, redirect_uri, scopes, nonce, code_challenge, code_challenge_method, created_at, expires_at
	`
	var grant models.AuthorizationCodeGrant
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&grant.Code, &grant.ClientID, &grant.UserID, &grant.RedirectURI,
		pq.Array(&grant.Scopes), &grant.Nonce, &grant.CodeChallenge,
		&grant.CodeChallengeMethod, &grant.CreatedAt, &grant.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume authorization code: %w", err)
	}
	if grant.IsExpired(now) {
		return nil, fmt.Errorf("authorization code expired: %w", sentinel.ErrExpired)
	}
	return &grant, nil
}

func (s *Postgres) Delete(ctx context.Context, code string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_code_grants WHERE code = $1`, code); err != nil {
		return fmt.Errorf("delete authorization code: %w", err)
	}
	return nil
}

func (s *Postgres) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM auth_code_grants WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired authorization codes: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired authorization codes: %w", err)
	}
	return int(deleted), nil
}
