// Package cleanup sweeps expired grants out of storage. Expired codes and
// refresh tokens are already unusable; the sweeper only reclaims space and
// keeps table scans short.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"signet/internal/oauth/store"
)

type Sweeper struct {
	codes    store.AuthorizationCodeStore
	refresh  store.RefreshTokenStore
	interval time.Duration
	logger   *slog.Logger
	clock    func() time.Time
}

type Option func(*Sweeper)

func WithClock(clock func() time.Time) Option {
	return func(s *Sweeper) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(codes store.AuthorizationCodeStore, refresh store.RefreshTokenStore, interval time.Duration, logger *slog.Logger, opts ...Option) *Sweeper {
	s := &Sweeper{
		codes:    codes,
		refresh:  refresh,
		interval: interval,
		logger:   logger,
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Run sweeps on a fixed interval until the context is cancelled. Store
// failures are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass over both stores.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	now := s.clock()

	codes, err := s.codes.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "sweep authorization codes failed", "error", err)
	}
	tokens, err := s.refresh.DeleteExpired(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "sweep refresh tokens failed", "error", err)
	}

	if codes > 0 || tokens > 0 {
		s.logger.InfoContext(ctx, "expired grants swept",
			"authorization_codes", codes,
			"refresh_tokens", tokens,
		)
	}
}
