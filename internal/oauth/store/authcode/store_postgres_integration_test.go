//go:build integration

package authcode_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"signet/internal/oauth/models"
	"signet/internal/oauth/store"
	"signet/internal/oauth/store/authcode"
	"signet/pkg/platform/sentinel"
	"signet/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *authcode.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(s.postgres.Apply(context.Background(), store.Schema))
	s.store = authcode.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "auth_code_grants"))
}

func newGrant(ttl time.Duration) *models.AuthorizationCodeGrant {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.AuthorizationCodeGrant{
		Code:                uuid.NewString(),
		ClientID:            "web-client",
		UserID:              "user-1",
		RedirectURI:         "https://app/cb",
		Scopes:              []string{"openid", "profile"},
		Nonce:               "n-1",
		CodeChallenge:       "challenge",
		CodeChallengeMethod: "S256",
		CreatedAt:           now,
		ExpiresAt:           now.Add(ttl),
	}
}

func (s *PostgresStoreSuite) TestConsumeRoundTrip() {
	ctx := context.Background()
	grant := newGrant(5 * time.Minute)
	s.Require().NoError(s.store.Create(ctx, grant))

	got, err := s.store.Consume(ctx, grant.Code, time.Now())
	s.Require().NoError(err)
	s.Equal(grant.ClientID, got.ClientID)
	s.Equal(grant.UserID, got.UserID)
	s.Equal(grant.RedirectURI, got.RedirectURI)
	s.Equal(grant.Scopes, got.Scopes)
	s.Equal(grant.Nonce, got.Nonce)
	s.Equal(grant.CodeChallenge, got.CodeChallenge)
	s.WithinDuration(grant.ExpiresAt, got.ExpiresAt, time.Millisecond)

	_, err = s.store.Consume(ctx, grant.Code, time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentConsume verifies that DELETE ... RETURNING lets exactly one of
// many concurrent redemptions win.
func (s *PostgresStoreSuite) TestConcurrentConsume() {
	ctx := context.Background()
	grant := newGrant(5 * time.Minute)
	s.Require().NoError(s.store.Create(ctx, grant))

	const goroutines = 50
	var wg sync.WaitGroup
	var winners, losers atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.Consume(ctx, grant.Code, time.Now()); err == nil {
				winners.Add(1)
			} else {
				losers.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), winners.Load(), "exactly one consume should win")
	s.Equal(int32(goroutines-1), losers.Load())
}

func (s *PostgresStoreSuite) TestExpiredConsume() {
	ctx := context.Background()
	grant := newGrant(-time.Minute)
	s.Require().NoError(s.store.Create(ctx, grant))

	_, err := s.store.Consume(ctx, grant.Code, time.Now())
	s.ErrorIs(err, sentinel.ErrExpired)

	// The expired grant was removed by the failed consume.
	_, err = s.store.Consume(ctx, grant.Code, time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeleteIsIdempotent() {
	ctx := context.Background()
	grant := newGrant(5 * time.Minute)
	s.Require().NoError(s.store.Create(ctx, grant))

	s.NoError(s.store.Delete(ctx, grant.Code))
	s.NoError(s.store.Delete(ctx, grant.Code))
}

func (s *PostgresStoreSuite) TestDeleteExpired() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newGrant(-time.Minute)))
	s.Require().NoError(s.store.Create(ctx, newGrant(-time.Second)))
	live := newGrant(5 * time.Minute)
	s.Require().NoError(s.store.Create(ctx, live))

	deleted, err := s.store.DeleteExpired(ctx, time.Now())
	s.Require().NoError(err)
	s.Equal(2, deleted)

	_, err = s.store.Consume(ctx, live.Code, time.Now())
	s.NoError(err)
}
