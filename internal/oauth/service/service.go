// Package service implements the protocol engine: the authorize-endpoint
// state machine, the token-endpoint grant dispatcher, and the userinfo
// resolver. The engine is stateless per request; all shared state lives
// behind the injected store interfaces.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"signet/internal/audit"
	"signet/internal/oauth/metrics"
	"signet/internal/oauth/store"
	"signet/internal/oauth/token"
)

var tracer trace.Tracer = otel.Tracer("signet/internal/oauth/service")

// AuditRecorder receives engine events; recording must never block a request.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, audit.Event) {}

// Service wires the protocol engine's collaborators. All fields are
// long-lived and shared; any locking is internal to the stores.
type Service struct {
	clients store.ClientDirectory
	users   store.UserDirectory
	codes   store.AuthorizationCodeStore
	refresh store.RefreshTokenStore
	tokens  *token.Service

	loginURL   string
	codeTTL    time.Duration
	refreshTTL time.Duration

	clock   func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for grant issuance and expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLoginURL sets the login surface unauthenticated authorize requests are
// redirected to.
func WithLoginURL(loginURL string) Option {
	return func(s *Service) {
		if loginURL != "" {
			s.loginURL = loginURL
		}
	}
}

// WithGrantTTLs overrides the authorization code and refresh token lifetimes.
func WithGrantTTLs(codeTTL, refreshTTL time.Duration) Option {
	return func(s *Service) {
		if codeTTL > 0 {
			s.codeTTL = codeTTL
		}
		if refreshTTL > 0 {
			s.refreshTTL = refreshTTL
		}
	}
}

// WithAudit sets the audit recorder.
func WithAudit(recorder AuditRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.audit = recorder
		}
	}
}

func New(
	clients store.ClientDirectory,
	users store.UserDirectory,
	codes store.AuthorizationCodeStore,
	refresh store.RefreshTokenStore,
	tokens *token.Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	opts ...Option,
) *Service {
	s := &Service{
		clients:    clients,
		users:      users,
		codes:      codes,
		refresh:    refresh,
		tokens:     tokens,
		loginURL:   "/login",
		codeTTL:    5 * time.Minute,
		refreshTTL: 30 * 24 * time.Hour,
		clock:      time.Now,
		logger:     logger,
		metrics:    m,
		audit:      nopRecorder{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}
