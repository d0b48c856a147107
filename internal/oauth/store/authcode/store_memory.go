// Package authcode persists authorization code grants.
package authcode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"signet/internal/oauth/models"
	"signet/pkg/platform/sentinel"
)

// Memory stores authorization codes in a mutex-guarded map. Reference
// implementation for tests and single-process deployments; the lock around
// Consume is what makes redemption at-most-once.
type Memory struct {
	mu     sync.RWMutex
	grants map[string]*models.AuthorizationCodeGrant
}

func NewMemory() *Memory {
	return &Memory{grants: make(map[string]*models.AuthorizationCodeGrant)}
}

func (s *Memory) Create(_ context.Context, grant *models.AuthorizationCodeGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grant.Code] = grant
	return nil
}

// Consume removes the grant and returns it. The removal happens before the
// expiry check so a replayed expired code cannot be observed twice either.
func (s *Memory) Consume(_ context.Context, code string, now time.Time) (*models.AuthorizationCodeGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[code]
	if !ok {
		return nil, fmt.Errorf("authorization code not found: %w", sentinel.ErrNotFound)
	}
	delete(s.grants, code)

	if grant.IsExpired(now) {
		return nil, fmt.Errorf("authorization code expired: %w", sentinel.ErrExpired)
	}
	return grant, nil
}

func (s *Memory) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, code)
	return nil
}

// DeleteExpired removes all grants past their expiry as of now. The time is
// injected so sweeps are testable without hidden time.Now calls.
func (s *Memory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for code, grant := range s.grants {
		if grant.IsExpired(now) {
			delete(s.grants, code)
			deleted++
		}
	}
	return deleted, nil
}
