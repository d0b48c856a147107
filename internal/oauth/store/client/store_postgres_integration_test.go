//go:build integration

package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"signet/internal/oauth/models"
	"signet/internal/oauth/store"
	"signet/internal/oauth/store/client"
	"signet/pkg/platform/sentinel"
	"signet/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *client.Postgres
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
	s.store = client.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "clients"))
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	c := &models.Client{
		ClientID:   "web-client",
		SecretHash: "$2a$10$fakehash",
		Name:       "Web Client",
		AllowedGrants: []models.GrantType{
			models.GrantAuthorizationCode,
			models.GrantRefreshToken,
		},
		RedirectURIs:  []string{"https://app/cb"},
		AllowedScopes: []string{"openid", "profile"},
		Claims:        map[string]string{"tier": "gold"},
	}
	s.Require().NoError(s.store.Create(ctx, c))

	got, err := s.store.FindByClientID(ctx, "web-client")
	s.Require().NoError(err)
	s.Equal(c.ClientID, got.ClientID)
	s.Equal(c.SecretHash, got.SecretHash)
	s.Equal(c.AllowedGrants, got.AllowedGrants)
	s.Equal(c.RedirectURIs, got.RedirectURIs)
	s.Equal(c.Claims, got.Claims)
}

func (s *PostgresStoreSuite) TestUpsert() {
	ctx := context.Background()
	c := &models.Client{
		ClientID:      "web-client",
		Name:          "Before",
		AllowedGrants: []models.GrantType{models.GrantAuthorizationCode},
		RedirectURIs:  []string{"https://app/cb"},
		AllowedScopes: []string{"openid"},
	}
	s.Require().NoError(s.store.Create(ctx, c))

	c.Name = "After"
	c.RedirectURIs = []string{"https://app/cb", "https://app/cb2"}
	s.Require().NoError(s.store.Create(ctx, c))

	got, err := s.store.FindByClientID(ctx, "web-client")
	s.Require().NoError(err)
	s.Equal("After", got.Name)
	s.Len(got.RedirectURIs, 2)
}

func (s *PostgresStoreSuite) TestNotFound() {
	_, err := s.store.FindByClientID(context.Background(), "ghost")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
