// Package refreshtoken persists refresh token grants.
package refreshtoken

import (
	"context"
	"fmt"
	"sync"
	"time"

	"signet/internal/oauth/models"
	"signet/pkg/platform/sentinel"
)

// Memory stores refresh tokens in a mutex-guarded map. Consume removes the
// token under the lock, which is what makes rotation detect replays: a
// rotated-away token is simply gone.
type Memory struct {
	mu     sync.RWMutex
	grants map[string]*models.RefreshTokenGrant
}

func NewMemory() *Memory {
	return &Memory{grants: make(map[string]*models.RefreshTokenGrant)}
}

func (s *Memory) Create(_ context.Context, grant *models.RefreshTokenGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grant.Token] = grant
	return nil
}

func (s *Memory) Consume(_ context.Context, token string, now time.Time) (*models.RefreshTokenGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[token]
	if !ok {
		return nil, fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
	}
	delete(s.grants, token)

	if grant.IsExpired(now) {
		return nil, fmt.Errorf("refresh token expired: %w", sentinel.ErrExpired)
	}
	return grant, nil
}

func (s *Memory) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, token)
	return nil
}

func (s *Memory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for token, grant := range s.grants {
		if grant.IsExpired(now) {
			delete(s.grants, token)
			deleted++
		}
	}
	return deleted, nil
}
