package audit

import (
	"context"
	"log/slog"
	"time"
)

// Sink receives audit events. Implementations: Kafka for deployments, Memory
// for tests, Nop when auditing is disabled.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Publisher accepts events on the request path and hands them to a worker
// over a bounded channel. Emission never blocks a request: when the buffer is
// full the event is dropped and counted in the log.
type Publisher struct {
	inbox  chan Event
	clock  func() time.Time
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithClock sets the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(p *Publisher) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func NewPublisher(buffer int, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		inbox:  make(chan Event, buffer),
		clock:  time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Record enqueues an event without blocking.
func (p *Publisher) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event", "type", string(event.Type))
	}
}

// Inbox exposes the channel for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
