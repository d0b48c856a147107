package audit

import (
	"context"
	"sync"
)

// MemorySink collects events for tests and single-process dev hosts.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of everything emitted so far.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// NopSink discards events; used when auditing is not configured.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) error { return nil }
