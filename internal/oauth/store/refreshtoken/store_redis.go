package refreshtoken

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"signet/internal/oauth/models"
	"signet/pkg/platform/sentinel"
)

const redisKeyPrefix = "rt:"

// Redis persists refresh tokens with key-level TTL; GETDEL makes rotation
// atomic across instances.
type Redis struct {
	client *redis.Client
	clock  func() time.Time
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithRedisClock sets the clock used to derive key TTLs.
func WithRedisClock(clock func() time.Time) RedisOption {
	return func(s *Redis) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	s := &Redis{client: client, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Redis) Create(ctx context.Context, grant *models.RefreshTokenGrant) error {
	payload, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("marshal refresh token grant: %w", err)
	}
	ttl := grant.ExpiresAt.Sub(s.clock())
	if ttl <= 0 {
		return fmt.Errorf("refresh token already expired: %w", sentinel.ErrExpired)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+grant.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (s *Redis) Consume(ctx context.Context, token string, now time.Time) (*models.RefreshTokenGrant, error) {
	payload, err := s.client.GetDel(ctx, redisKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}

	var grant models.RefreshTokenGrant
	if err := json.Unmarshal([]byte(payload), &grant); err != nil {
		return nil, fmt.Errorf("unmarshal refresh token grant: %w", err)
	}
	if grant.IsExpired(now) {
		return nil, fmt.Errorf("refresh token expired: %w", sentinel.ErrExpired)
	}
	return &grant, nil
}

func (s *Redis) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op for Redis; key TTLs handle expiry.
func (s *Redis) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
