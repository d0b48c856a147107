// Package httptransport is the thin HTTP layer over the protocol engine.
// Handlers parse and render; every decision lives in the engine.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signet/internal/oauth/models"
	"signet/internal/platform/middleware"
	"signet/pkg/platform/httputil"
)

//go:generate mockgen -source=router.go -destination=mocks/engine-mocks.go -package=mocks Engine

// Engine is the protocol surface the handlers delegate to.
type Engine interface {
	Authorize(ctx context.Context, req *models.AuthorizeRequest) (*models.AuthorizeResult, error)
	Token(ctx context.Context, req *models.TokenRequest) (*models.TokenResult, error)
	UserInfo(ctx context.Context, sessionSubject, bearerToken string) (*models.UserInfoResult, error)
}

// Handler carries the dependencies shared by all endpoints.
type Handler struct {
	engine Engine
	logger *slog.Logger
	issuer string
}

func NewHandler(engine Engine, issuer string, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, logger: logger, issuer: issuer}
}

// NewRouter wires the public endpoints. The session middleware resolves an
// Authorization bearer token into a subject for the authorize and userinfo
// endpoints; the token endpoint authenticates clients itself.
func NewRouter(h *Handler, sessions middleware.SubjectValidator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Group(func(r chi.Router) {
		if sessions != nil {
			r.Use(middleware.Session(sessions))
		}
		r.Get("/connect/authorize", h.handleAuthorize)
		r.Get("/connect/userinfo", h.handleUserInfo)
		r.Post("/connect/userinfo", h.handleUserInfo)
	})

	r.Post("/connect/token", h.handleToken)
	r.Get("/.well-known/openid-configuration", h.handleDiscovery)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

const requestTimeout = 30 * time.Second
