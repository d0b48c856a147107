package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"signet/internal/oauth/models"
	"signet/pkg/platform/sentinel"
)

// Postgres is the durable user directory.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findBy(ctx, `SELECT id, username, password_hash, claims FROM users WHERE id = $1`, id)
}

func (s *Postgres) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findBy(ctx, `SELECT id, username, password_hash, claims FROM users WHERE username = $1`, username)
}

func (s *Postgres) findBy(ctx context.Context, query, arg string) (*models.User, error) {
	var (
		u         models.User
		rawClaims []byte
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &rawClaims)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if len(rawClaims) > 0 {
		if err := json.Unmarshal(rawClaims, &u.Claims); err != nil {
			return nil, fmt.Errorf("decode user claims: %w", err)
		}
	}
	return &u, nil
}

func (s *Postgres) Create(ctx context.Context, u *models.User) error {
	rawClaims, err := json.Marshal(u.Claims)
	if err != nil {
		return fmt.Errorf("encode user claims: %w", err)
	}
	query := `
		INSERT INTO users (id, username, password_hash, claims)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			claims = EXCLUDED.claims
	`
	if _, err := s.db.ExecContext(ctx, query, u.ID, u.Username, u.PasswordHash, rawClaims); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}
