// Package user implements the user directory. The engine only reads from it;
// provisioning belongs to the surrounding host.
package user

import (
	"context"
	"fmt"
	"sync"

	"signet/internal/oauth/models"
	"signet/pkg/platform/sentinel"
)

// Memory is the in-memory user directory used by tests and dev hosts.
type Memory struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byUsername map[string]*models.User
}

func NewMemory() *Memory {
	return &Memory{
		byID:       make(map[string]*models.User),
		byUsername: make(map[string]*models.User),
	}
}

func (s *Memory) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[u.ID] = u
	s.byUsername[u.Username] = u
	return nil
}

func (s *Memory) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *Memory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byUsername[username]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}
