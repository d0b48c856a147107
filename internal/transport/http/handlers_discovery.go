package httptransport

import (
	"net/http"

	"signet/pkg/platform/httputil"
)

// DiscoveryDocument is the OpenID Provider metadata served at the well-known
// path. Endpoint URLs are derived from the configured issuer so the document
// stays consistent across deployments.
type DiscoveryDocument struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	UserInfoEndpoint                  string   `json:"userinfo_endpoint"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	ScopesSupported                   []string `json:"scopes_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
	SubjectTypesSupported             []string `json:"subject_types_supported"`
}

func (h *Handler) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, DiscoveryDocument{
		Issuer:                h.issuer,
		AuthorizationEndpoint: h.issuer + "/connect/authorize",
		TokenEndpoint:         h.issuer + "/connect/token",
		UserInfoEndpoint:      h.issuer + "/connect/userinfo",
		ResponseTypesSupported: []string{
			"code",
		},
		GrantTypesSupported: []string{
			"authorization_code",
			"client_credentials",
			"password",
			"refresh_token",
		},
		ScopesSupported: []string{
			"openid",
			"profile",
		},
		TokenEndpointAuthMethodsSupported: []string{
			"client_secret_basic",
			"client_secret_post",
		},
		IDTokenSigningAlgValuesSupported: []string{
			"HS256",
		},
		CodeChallengeMethodsSupported: []string{
			"S256",
			"plain",
		},
		SubjectTypesSupported: []string{
			"public",
		},
	})
}
