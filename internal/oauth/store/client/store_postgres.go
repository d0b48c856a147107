package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"signet/internal/oauth/models"
	"signet/pkg/platform/sentinel"
)

// Postgres is the durable client directory.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindByClientID(ctx context.Context, clientID string) (*models.Client, error) {
	query := `
		SELECT client_id, secret_hash, name, allowed_grants, redirect_uris, allowed_scopes, claims
		FROM clients
		WHERE client_id = $1
	`
	var (
		c         models.Client
		grants    []string
		rawClaims []byte
	)
	err := s.db.QueryRowContext(ctx, query, clientID).Scan(
		&c.ClientID, &c.SecretHash, &c.Name,
		pq.Array(&grants), pq.Array(&c.RedirectURIs), pq.Array(&c.AllowedScopes),
		&rawClaims,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}

	c.AllowedGrants = make([]models.GrantType, 0, len(grants))
	for _, g := range grants {
		c.AllowedGrants = append(c.AllowedGrants, models.GrantType(g))
	}
	if len(rawClaims) > 0 {
		if err := json.Unmarshal(rawClaims, &c.Claims); err != nil {
			return nil, fmt.Errorf("decode client claims: %w", err)
		}
	}
	return &c, nil
}

func (s *Postgres) Create(ctx context.Context, c *models.Client) error {
	rawClaims, err := json.Marshal(c.Claims)
	if err != nil {
		return fmt.Errorf("encode client claims: %w", err)
	}
	grants := make([]string, 0, len(c.AllowedGrants))
	for _, g := range c.AllowedGrants {
		grants = append(grants, string(g))
	}
	query := `
		INSERT INTO clients (client_id, secret_hash, name, allowed_grants, redirect_uris, allowed_scopes, claims)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (client_id) DO UPDATE SET
			secret_hash = EXCLUDED.secret_hash,
			name = EXCLUDED.name,
			allowed_grants = EXCLUDED.allowed_grants,
			redirect_uris = EXCLUDED.redirect_uris,
			allowed_scopes = EXCLUDED.allowed_scopes,
			claims = EXCLUDED.claims
	`
	_, err = s.db.ExecContext(ctx, query,
		c.ClientID, c.SecretHash, c.Name,
		pq.Array(grants), pq.Array(c.RedirectURIs), pq.Array(c.AllowedScopes),
		rawClaims,
	)
	if err != nil {
		return fmt.Errorf("store client: %w", err)
	}
	return nil
}
