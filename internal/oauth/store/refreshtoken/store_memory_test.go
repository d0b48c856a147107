package refreshtoken

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

func (s *MemoryStoreSuite) newGrant(token string, expiresAt time.Time) *models.RefreshTokenGrant {
	return &models.RefreshTokenGrant{
		Token:     token,
		ClientID:  "web-client",
		UserID:    "user-1",
		Scopes:    []string{"openid", "profile"},
		CreatedAt: expiresAt.Add(-30 * 24 * time.Hour),
		ExpiresAt: expiresAt,
	}
}

func (s *MemoryStoreSuite) TestConsume_RotationSemantics() {
	ctx := context.Background()
	now := time.Now()

	old := s.newGrant("rt-old", now.Add(time.Hour))
	s.Require().NoError(s.store.Create(ctx, old))

	// First use wins and removes the token.
	got, err := s.store.Consume(ctx, "rt-old", now)
	s.Require().NoError(err)
	s.Equal(old, got)

	// The rotated replacement lives alongside; the old one is gone.
	replacement := s.newGrant("rt-new", now.Add(time.Hour))
	s.Require().NoError(s.store.Create(ctx, replacement))

	_, err = s.store.Consume(ctx, "rt-old", now)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Consume(ctx, "rt-new", now)
	s.Require().NoError(err)
}

func (s *MemoryStoreSuite) TestConsume_Expired() {
	ctx := context.Background()
	now := time.Now()

	s.Require().NoError(s.store.Create(ctx, s.newGrant("rt-stale", now.Add(-time.Minute))))

	_, err := s.store.Consume(ctx, "rt-stale", now)
	s.Require().ErrorIs(err, sentinel.ErrExpired)

	// Lazy expiration still removes the record.
	_, err = s.store.Consume(ctx, "rt-stale", now)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestConsume_Concurrent() {
	ctx := context.Background()
	now := time.Now()

	s.Require().NoError(s.store.Create(ctx, s.newGrant("rt-race", now.Add(time.Hour))))

	const attempts = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := s.store.Consume(ctx, "rt-race", now); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Equal(int32(1), wins.Load())
}

func (s *MemoryStoreSuite) TestDeleteAndSweep() {
	ctx := context.Background()
	now := time.Now()

	s.Require().NoError(s.store.Create(ctx, s.newGrant("rt-live", now.Add(time.Hour))))
	s.Require().NoError(s.store.Create(ctx, s.newGrant("rt-dead", now.Add(-time.Hour))))

	s.Require().NoError(s.store.Delete(ctx, "rt-live"))
	s.Require().NoError(s.store.Delete(ctx, "rt-live"), "delete must be idempotent")

	deleted, err := s.store.DeleteExpired(ctx, now)
	s.Require().NoError(err)
	s.Equal(1, deleted)
}
