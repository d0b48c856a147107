// Package token mints and validates the credentials issued by the server:
// HS256-signed access and ID tokens, and the opaque random strings used as
// refresh tokens and authorization codes. The package is pure over its
// signing key; it touches no storage.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"signet/internal/oauth/models"
	dErrors "signet/pkg/domain-errors"
)

// minKeyLen pads the operator-supplied secret up to 256 bits so HS256 always
// signs with a full-strength key.
const minKeyLen = 32

const (
	refreshTokenBytes = 32
	authCodeBytes     = 16
	authCodeLen       = 16
)

// AccessTokenClaims is the typed view of a validated access token.
type AccessTokenClaims struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Scopes splits the space-delimited scope claim.
func (c *AccessTokenClaims) Scopes() []string {
	return strings.Fields(c.Scope)
}

// Service signs and validates tokens for a single issuer/audience pair.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	clock      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source for issuance and validation. Tests inject a
// fixed clock to cross expiry instants deterministically.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithAccessTokenTTL overrides the default 1-hour access token lifetime.
func WithAccessTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.accessTTL = ttl
		}
	}
}

func New(issuer, audience, secret string, opts ...Option) *Service {
	s := &Service{
		signingKey: padKey(secret),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  time.Hour,
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// AccessTokenTTL reports the configured access token lifetime; the token
// endpoint derives expires_in from it.
func (s *Service) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

func padKey(secret string) []byte {
	key := []byte(secret)
	for len(key) < minKeyLen {
		key = append(key, '0')
	}
	return key
}

// GenerateAccessToken mints a signed access token for subject on behalf of
// client. The scope claim carries one entry per granted scope, and any extra
// claims registered on the client are embedded.
func (s *Service) GenerateAccessToken(client *models.Client, subject string, scopes []string) (string, error) {
	now := s.clock()
	claims := jwt.MapClaims{
		"sub":       subject,
		"iss":       s.issuer,
		"aud":       s.audience,
		"jti":       uuid.NewString(),
		"iat":       now.Unix(),
		"exp":       now.Add(s.accessTTL).Unix(),
		"client_id": client.ClientID,
	}
	if len(scopes) > 0 {
		claims["scope"] = strings.Join(scopes, " ")
	}
	for k, v := range client.Claims {
		if _, reserved := claims[k]; reserved {
			continue
		}
		claims[k] = v
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// GenerateIDToken mints a signed ID token for the client that requested
// authentication. The audience is the client itself, the nonce echoes the
// value from the original authorize request, and every user claim is
// flattened in.
func (s *Service) GenerateIDToken(user *models.User, clientID, nonce string) (string, error) {
	now := s.clock()
	claims := jwt.MapClaims{
		"sub": user.ID,
		"iss": s.issuer,
		"aud": clientID,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.accessTTL).Unix(),
	}
	if nonce != "" {
		claims["nonce"] = nonce
	}
	for k, v := range user.Claims {
		if _, reserved := claims[k]; reserved {
			continue
		}
		claims[k] = v
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign id token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken verifies signature, issuer, audience, and expiry.
// Malformed or expired tokens come back as coded errors; nothing panics and
// token contents are never logged.
func (s *Service) ValidateAccessToken(tokenString string) (*AccessTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenUnverifiable
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*AccessTokenClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}

// GenerateRefreshToken returns 32 bytes of randomness, URL-safe encoded.
func (s *Service) GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateAuthorizationCode returns a 16-character code from 16 random
// bytes, filtered to stay URL friendly. Filtering can shorten a candidate
// below 16 characters, in which case a fresh one is drawn.
func (s *Service) GenerateAuthorizationCode() (string, error) {
	for {
		buf := make([]byte, authCodeBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate authorization code: %w", err)
		}
		code := base64.StdEncoding.EncodeToString(buf)
		code = strings.NewReplacer("+", "", "/", "", "=", "").Replace(code)
		if len(code) >= authCodeLen {
			return code[:authCodeLen], nil
		}
	}
}
