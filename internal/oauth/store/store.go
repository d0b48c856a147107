// Package store defines the persistence boundaries the protocol engine
// depends on. Implementations live in subpackages (memory for tests and dev,
// redis and postgres for deployments).
//
// Error contract, shared by every implementation:
//   - return sentinel.ErrNotFound (wrapped) when the entity does not exist
//   - return sentinel.ErrExpired (wrapped) when a grant is past its expiry,
//     even if it has not been physically purged yet
//   - return nil on success
//   - wrap infrastructure failures with context
package store

import (
	"context"
	"time"

	"signet/internal/oauth/models"
)

// ClientDirectory resolves client registrations. Durable storage is an
// external collaborator; the engine only ever reads.
type ClientDirectory interface {
	FindByClientID(ctx context.Context, clientID string) (*models.Client, error)
}

// UserDirectory resolves end users.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AuthorizationCodeStore manages the lifecycle of authorization codes.
//
// Consume atomically removes and returns the grant: under concurrent
// redemption attempts for the same code, exactly one caller observes the
// grant and all others observe ErrNotFound. An expired grant is removed and
// reported as ErrExpired.
type AuthorizationCodeStore interface {
	Create(ctx context.Context, grant *models.AuthorizationCodeGrant) error
	Consume(ctx context.Context, code string, now time.Time) (*models.AuthorizationCodeGrant, error)
	// Delete is idempotent; deleting an absent code is not an error.
	Delete(ctx context.Context, code string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// RefreshTokenStore manages refresh tokens with the same consume-once
// contract; rotation is consume-old-then-create-new.
type RefreshTokenStore interface {
	Create(ctx context.Context, grant *models.RefreshTokenGrant) error
	Consume(ctx context.Context, token string, now time.Time) (*models.RefreshTokenGrant, error)
	// Delete is idempotent; deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
