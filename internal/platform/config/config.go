package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean; empty store URLs mean "use the in-memory
// reference implementation".
type Server struct {
	Addr          string
	Issuer        string
	Audience      string
	LoginURL      string
	JWTSigningKey string

	AccessTokenTTL  time.Duration
	AuthCodeTTL     time.Duration
	RefreshTokenTTL time.Duration
	CleanupInterval time.Duration

	PostgresURL  string
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string

	SeedDemoData bool
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:            getenv("SIGNET_ADDR", ":8080"),
		Issuer:          getenv("SIGNET_ISSUER", "http://localhost:8080"),
		Audience:        getenv("SIGNET_AUDIENCE", "signet-api"),
		LoginURL:        getenv("SIGNET_LOGIN_URL", "/login"),
		JWTSigningKey:   getenv("SIGNET_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AccessTokenTTL:  getduration("SIGNET_ACCESS_TOKEN_TTL", time.Hour),
		AuthCodeTTL:     getduration("SIGNET_AUTH_CODE_TTL", 5*time.Minute),
		RefreshTokenTTL: getduration("SIGNET_REFRESH_TOKEN_TTL", 30*24*time.Hour),
		CleanupInterval: getduration("SIGNET_CLEANUP_INTERVAL", 10*time.Minute),
		PostgresURL:     os.Getenv("SIGNET_POSTGRES_URL"),
		RedisURL:        os.Getenv("SIGNET_REDIS_URL"),
		KafkaTopic:      getenv("SIGNET_KAFKA_TOPIC", "signet.audit"),
		SeedDemoData:    os.Getenv("SIGNET_SEED_DEMO_DATA") == "true",
	}
	if brokers := os.Getenv("SIGNET_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
