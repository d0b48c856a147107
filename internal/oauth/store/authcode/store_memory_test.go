package authcode

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"signet/internal/oauth/models"
	"signet/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
}

func (s *MemoryStoreSuite) newGrant(code string, expiresAt time.Time) *models.AuthorizationCodeGrant {
	return &models.AuthorizationCodeGrant{
		Code:        code,
		ClientID:    "web-client",
		UserID:      "user-1",
		RedirectURI: "https://app/cb",
		Scopes:      []string{"openid"},
		CreatedAt:   expiresAt.Add(-5 * time.Minute),
		ExpiresAt:   expiresAt,
	}
}

func (s *MemoryStoreSuite) TestConsume() {
	ctx := context.Background()
	now := time.Now()

	s.Run("fresh code is consumed exactly once", func() {
		grant := s.newGrant("code-once", now.Add(time.Minute))
		s.Require().NoError(s.store.Create(ctx, grant))

		got, err := s.store.Consume(ctx, "code-once", now)
		s.Require().NoError(err)
		s.Equal(grant, got)

		_, err = s.store.Consume(ctx, "code-once", now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unknown code is not found", func() {
		_, err := s.store.Consume(ctx, "never-issued", now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("expired code is reported expired and removed", func() {
		grant := s.newGrant("code-stale", now.Add(-time.Second))
		s.Require().NoError(s.store.Create(ctx, grant))

		_, err := s.store.Consume(ctx, "code-stale", now)
		s.Require().ErrorIs(err, sentinel.ErrExpired)

		_, err = s.store.Consume(ctx, "code-stale", now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// Racing redemptions of the same code must yield exactly one winner.
func (s *MemoryStoreSuite) TestConsume_Concurrent() {
	ctx := context.Background()
	now := time.Now()

	grant := s.newGrant("code-race", now.Add(time.Minute))
	s.Require().NoError(s.store.Create(ctx, grant))

	const attempts = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := s.store.Consume(ctx, "code-race", now); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Equal(int32(1), wins.Load())
}

func (s *MemoryStoreSuite) TestDelete_Idempotent() {
	ctx := context.Background()
	now := time.Now()

	grant := s.newGrant("code-del", now.Add(time.Minute))
	s.Require().NoError(s.store.Create(ctx, grant))

	s.Require().NoError(s.store.Delete(ctx, "code-del"))
	s.Require().NoError(s.store.Delete(ctx, "code-del"))
	s.Require().NoError(s.store.Delete(ctx, "never-existed"))
}

func (s *MemoryStoreSuite) TestDeleteExpired() {
	ctx := context.Background()
	now := time.Now()

	s.Require().NoError(s.store.Create(ctx, s.newGrant("live", now.Add(time.Minute))))
	s.Require().NoError(s.store.Create(ctx, s.newGrant("dead-1", now.Add(-time.Minute))))
	s.Require().NoError(s.store.Create(ctx, s.newGrant("dead-2", now.Add(-time.Second))))

	deleted, err := s.store.DeleteExpired(ctx, now)
	s.Require().NoError(err)
	s.Equal(2, deleted)

	_, err = s.store.Consume(ctx, "live", now)
	s.Require().NoError(err)
}
