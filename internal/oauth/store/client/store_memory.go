// Package client implements the client directory.
package client

import (
	"context"
	"fmt"
	"sync"

	"signet/internal/oauth/models"
	"signet/pkg/platform/sentinel"
)

// Memory is the in-memory client directory used by tests and dev hosts.
type Memory struct {
	mu      sync.RWMutex
	clients map[string]*models.Client
}

func NewMemory() *Memory {
	return &Memory{clients: make(map[string]*models.Client)}
}

func (s *Memory) Create(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ClientID] = c
	return nil
}

func (s *Memory) FindByClientID(_ context.Context, clientID string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.clients[clientID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("client not found: %w", sentinel.ErrNotFound)
}

func (s *Memory) Update(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ClientID]; !ok {
		return fmt.Errorf("client not found: %w", sentinel.ErrNotFound)
	}
	s.clients[c.ClientID] = c
	return nil
}

func (s *Memory) Delete(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, clientID)
	return nil
}
