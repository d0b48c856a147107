// Package cache provides a caching decorator for the client directory.
// Caching is explicit and injected, never ambient: hosts that mutate client
// registrations call the invalidation hooks on create, update, and delete.
package cache

import (
	"context"
	"sync"
	"time"

	"signet/internal/oauth/models"
	"signet/internal/oauth/store"
)

type entry struct {
	client    *models.Client
	expiresAt time.Time
}

// ClientCache wraps a ClientDirectory with a TTL cache. Negative results are
// not cached so a freshly registered client is visible immediately.
type ClientCache struct {
	next  store.ClientDirectory
	ttl   time.Duration
	clock func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

// Option configures a ClientCache.
type Option func(*ClientCache)

// WithClock sets the time source used for entry expiry.
func WithClock(clock func() time.Time) Option {
	return func(c *ClientCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func New(next store.ClientDirectory, ttl time.Duration, opts ...Option) *ClientCache {
	c := &ClientCache{
		next:    next,
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *ClientCache) FindByClientID(ctx context.Context, clientID string) (*models.Client, error) {
	now := c.clock()

	c.mu.RLock()
	cached, ok := c.entries[clientID]
	c.mu.RUnlock()
	if ok && cached.expiresAt.After(now) {
		return cached.client, nil
	}

	client, err := c.next.FindByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[clientID] = entry{client: client, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
	return client, nil
}

// Invalidate drops a single client from the cache. Hosts call this from
// their create/update/delete paths.
func (c *ClientCache) Invalidate(clientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, clientID)
}

// InvalidateAll drops every cached entry.
func (c *ClientCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
