package store

import (
	"context"

	"github.com/google/uuid"

	"signet/internal/oauth/models"
	"signet/internal/oauth/secrets"
	clientstore "signet/internal/oauth/store/client"
	userstore "signet/internal/oauth/store/user"
)

// SeedDemoData provisions a confidential web client, a public SPA client,
// and a demo user for local development. Secrets are bcrypt-hashed like any
// production registration; the plaintext values below exist only for curl.
func SeedDemoData(clients *clientstore.Memory, users *userstore.Memory) {
	ctx := context.Background()

	_ = clients.Create(ctx, &models.Client{
		ClientID:   "web-client",
		SecretHash: secrets.MustHash("web-client-secret"),
		Name:       "Demo Web Client",
		AllowedGrants: []models.GrantType{
			models.GrantAuthorizationCode,
			models.GrantRefreshToken,
			models.GrantClientCredentials,
			models.GrantPassword,
		},
		RedirectURIs:  []string{"https://app/cb", "http://localhost:3000/callback"},
		AllowedScopes: []string{"openid", "profile", "api"},
	})

	_ = clients.Create(ctx, &models.Client{
		ClientID: "spa-client",
		Name:     "Demo SPA (public, PKCE only)",
		AllowedGrants: []models.GrantType{
			models.GrantAuthorizationCode,
			models.GrantRefreshToken,
		},
		RedirectURIs:  []string{"http://localhost:5173/callback"},
		AllowedScopes: []string{"openid", "profile"},
	})

	_ = users.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		Username:     "alice",
		PasswordHash: secrets.MustHash("alice-password"),
		Claims: map[string]string{
			"email": "alice@example.com",
			"name":  "Alice Example",
		},
	})
}
