//go:build integration

package refreshtoken_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"signet/internal/oauth/store/refreshtoken"
	"signet/pkg/platform/sentinel"
	"signet/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *refreshtoken.Redis
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = refreshtoken.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRotation() {
	ctx := context.Background()
	old := newGrant(30 * 24 * time.Hour)
	s.Require().NoError(s.store.Create(ctx, old))

	got, err := s.store.Consume(ctx, old.Token, time.Now())
	s.Require().NoError(err)
	s.Equal(old.UserID, got.UserID)

	next := newGrant(30 * 24 * time.Hour)
	s.Require().NoError(s.store.Create(ctx, next))

	_, err = s.store.Consume(ctx, old.Token, time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Consume(ctx, next.Token, time.Now())
	s.NoError(err)
}

func (s *RedisStoreSuite) TestConcurrentConsume() {
	ctx := context.Background()
	grant := newGrant(30 * 24 * time.Hour)
	s.Require().NoError(s.store.Create(ctx, grant))

	const goroutines = 50
	var wg sync.WaitGroup
	var winners atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.store.Consume(ctx, grant.Token, time.Now()); err == nil {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), winners.Load(), "exactly one consume should win")
}

func (s *RedisStoreSuite) TestCreateRejectsAlreadyExpired() {
	err := s.store.Create(context.Background(), newGrant(-time.Minute))
	s.ErrorIs(err, sentinel.ErrExpired)
}
