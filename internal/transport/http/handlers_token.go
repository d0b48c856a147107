package httptransport

import (
	"encoding/json"
	"net/http"
	"strings"

	"signet/internal/oauth/models"
	"signet/pkg/platform/httputil"
	"signet/pkg/requestcontext"

	dErrors "signet/pkg/domain-errors"
)

// handleToken parses the token request and delegates to the grant
// dispatcher. Both form-encoded and JSON bodies are accepted; client
// credentials may arrive in the body or as HTTP Basic.
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseTokenRequest(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.engine.Token(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "token request rejected",
			"client_id", req.ClientID,
			"grant_type", req.GrantType,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, result)
}

func parseTokenRequest(r *http.Request) (*models.TokenRequest, error) {
	req := &models.TokenRequest{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidRequest, "invalid request body")
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, dErrors.New(dErrors.CodeInvalidRequest, "invalid request body")
		}
		req.GrantType = r.PostForm.Get("grant_type")
		req.ClientID = r.PostForm.Get("client_id")
		req.ClientSecret = r.PostForm.Get("client_secret")
		req.Code = r.PostForm.Get("code")
		req.RedirectURI = r.PostForm.Get("redirect_uri")
		req.CodeVerifier = r.PostForm.Get("code_verifier")
		req.RefreshToken = r.PostForm.Get("refresh_token")
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		req.Scope = r.PostForm.Get("scope")
	}

	// Basic auth wins over body credentials when both are present.
	if clientID, clientSecret, ok := r.BasicAuth(); ok {
		req.ClientID = clientID
		req.ClientSecret = clientSecret
	}
	return req, nil
}
