// Command server runs the authorization server. main wires configuration,
// storage, the protocol engine, and the HTTP surface, then supervises the
// server, the audit worker, and the cleanup sweeper until shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"signet/internal/audit"
	"signet/internal/oauth/cache"
	"signet/internal/oauth/cleanup"
	"signet/internal/oauth/metrics"
	"signet/internal/oauth/service"
	"signet/internal/oauth/store"
	authcodestore "signet/internal/oauth/store/authcode"
	clientstore "signet/internal/oauth/store/client"
	refreshstore "signet/internal/oauth/store/refreshtoken"
	userstore "signet/internal/oauth/store/user"
	"signet/internal/oauth/token"
	"signet/internal/platform/config"
	"signet/internal/platform/httpserver"
	"signet/internal/platform/logger"
	"signet/internal/platform/postgres"
	redisplatform "signet/internal/platform/redis"
	httptransport "signet/internal/transport/http"
)

const (
	clientCacheTTL  = 5 * time.Minute
	auditBufferSize = 256
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	tokens := token.New(cfg.Issuer, cfg.Audience, cfg.JWTSigningKey,
		token.WithAccessTokenTTL(cfg.AccessTokenTTL),
	)
	m := metrics.New()

	publisher := audit.NewPublisher(auditBufferSize, log)
	sink, closeSink, err := buildAuditSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	engine := service.New(
		cache.New(stores.clients, clientCacheTTL),
		stores.users, stores.codes, stores.refresh,
		tokens, log, m,
		service.WithLoginURL(cfg.LoginURL),
		service.WithGrantTTLs(cfg.AuthCodeTTL, cfg.RefreshTokenTTL),
		service.WithAudit(publisher),
	)

	handler := httptransport.NewHandler(engine, cfg.Issuer, log)
	router := httptransport.NewRouter(handler, sessionValidator{tokens: tokens})
	srv := httpserver.New(cfg.Addr, router)

	sweeper := cleanup.New(stores.codes, stores.refresh, cfg.CleanupInterval, log)
	worker := audit.NewWorker(sink, publisher.Inbox(), log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreCanceled(worker.Run(ctx))
	})
	g.Go(func() error {
		return ignoreCanceled(sweeper.Run(ctx))
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr, "issuer", cfg.Issuer)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// storeSet groups the persistence dependencies the engine needs.
type storeSet struct {
	clients store.ClientDirectory
	users   store.UserDirectory
	codes   store.AuthorizationCodeStore
	refresh store.RefreshTokenStore
}

// buildStores selects backends from configuration. Postgres covers both
// directories and grants; Redis covers grants only, with in-memory
// directories; no URLs at all means a fully in-memory server.
func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (storeSet, func(), error) {
	noop := func() {}

	switch {
	case cfg.PostgresURL != "":
		db, err := postgres.Open(cfg.PostgresURL)
		if err != nil {
			return storeSet{}, noop, fmt.Errorf("open postgres: %w", err)
		}
		if _, err := db.ExecContext(ctx, store.Schema); err != nil {
			db.Close()
			return storeSet{}, noop, fmt.Errorf("apply schema: %w", err)
		}
		log.Info("using postgres storage")
		return storeSet{
			clients: clientstore.NewPostgres(db),
			users:   userstore.NewPostgres(db),
			codes:   authcodestore.NewPostgres(db),
			refresh: refreshstore.NewPostgres(db),
		}, func() { db.Close() }, nil

	case cfg.RedisURL != "":
		rdb, err := redisplatform.New(cfg.RedisURL)
		if err != nil {
			return storeSet{}, noop, fmt.Errorf("connect redis: %w", err)
		}
		clients, users := memoryDirectories(cfg, log)
		log.Info("using redis grant storage with in-memory directories")
		return storeSet{
			clients: clients,
			users:   users,
			codes:   authcodestore.NewRedis(rdb.Client),
			refresh: refreshstore.NewRedis(rdb.Client),
		}, func() { rdb.Close() }, nil

	default:
		clients, users := memoryDirectories(cfg, log)
		log.Info("using in-memory storage")
		return storeSet{
			clients: clients,
			users:   users,
			codes:   authcodestore.NewMemory(),
			refresh: refreshstore.NewMemory(),
		}, noop, nil
	}
}

func memoryDirectories(cfg config.Server, log *slog.Logger) (*clientstore.Memory, *userstore.Memory) {
	clients := clientstore.NewMemory()
	users := userstore.NewMemory()
	if cfg.SeedDemoData {
		store.SeedDemoData(clients, users)
		log.Info("seeded demo clients and user")
	}
	return clients, users
}

func buildAuditSink(cfg config.Server) (audit.Sink, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return audit.NopSink{}, func() {}, nil
	}
	sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, func() {}, fmt.Errorf("create audit sink: %w", err)
	}
	return sink, sink.Close, nil
}

// sessionValidator adapts the token service to the session middleware: a
// valid access token establishes the bearer as its subject.
type sessionValidator struct {
	tokens *token.Service
}

func (v sessionValidator) SubjectOf(tokenString string) (string, error) {
	claims, err := v.tokens.ValidateAccessToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
