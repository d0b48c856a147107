package refreshtoken

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

// Postgres persists refresh tokens durably. DELETE ... RETURNING keeps
// rotation atomic: a concurrently replayed token finds no row.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, grant *models.RefreshTokenGrant) error {
	query := `
		INSERT INTO refresh_token_grants (token, client_id, user_id, scopes, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		grant.Token, grant.ClientID, grant.UserID,
		pq.Array(grant.Scopes), grant.CreatedAt, grant.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (s *Postgres) Consume(ctx context.Context, token string, now time.Time) (*models.RefreshTokenGrant, error) {
	query := `
		DELETE FROM refresh_token_grants
		WHERE token = $1
		RETURNING token, client_id, user_id, scopes, created_at, expires_at
	`
	var grant models.RefreshTokenGrant
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&grant.Token, &grant.ClientID, &grant.UserID,
		pq.Array(&grant.Scopes), &grant.CreatedAt, &grant.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	if grant.IsExpired(now) {
		return nil, fmt.Errorf("refresh token expired: %w", sentinel.ErrExpired)
	}
	return &grant, nil
}

func (s *Postgres) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM refresh_token_grants WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *Postgres) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM refresh_token_grants WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return int(deleted), nil
}
