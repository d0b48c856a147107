package authcode

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

const redisKeyPrefix = "ac:"

// Redis persists authorization codes with key-level TTL. GETDEL gives the
// atomic consume-once guarantee across instances.
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

func (s *Redis) Create(ctx context.Context, grant *models.AuthorizationCodeGrant) error {
	payload, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("marshal authorization code grant: %w", err)
	}
	ttl := grant.ExpiresAt.Sub(s.clock())
	if ttl <= 0 {
		return fmt.Errorf("authorization code already expired: %w", sentinel.ErrExpired)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+grant.Code, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store authorization code: %w", err)
	}
	return nil
}

func (s *Redis) Consume(ctx context.Context, code string, now time.Time) (*models.AuthorizationCodeGrant, error) {
	payload, err := s.client.GetDel(ctx, redisKeyPrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume authorization code: %w", err)
	}

	var grant models.AuthorizationCodeGrant
	if err := json.Unmarshal([]byte(payload), &grant); err != nil {
		return nil, fmt.Errorf("unmarshal authorization code grant: %w", err)
	}
	// Key TTL normally purges expired grants; the check stays for injected
	// clocks that run ahead of the server clock.
	if grant.IsExpired(now) {
		return nil, fmt.Errorf("authorization code expired: %w", sentinel.ErrExpired)
	}
	return &grant, nil
}

func (s *Redis) Delete(ctx context.Context, code string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+code).Err(); err != nil {
		return fmt.Errorf("delete authorization code: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op for Redis; key TTLs handle expiry.
func (s *Redis) DeleteExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}
