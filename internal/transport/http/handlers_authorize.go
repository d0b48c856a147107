package httptransport

import (
	"net/http"

	"signet/internal/oauth/models"
	"signet/pkg/platform/httputil"
	"signet/pkg/requestcontext"
)

// handleAuthorize parses the authorize query and delegates to the engine.
// Success is always a 302: either back to the client with a code, or to the
// login surface with the original request preserved in return_url. Failures
// are rendered as JSON rather than redirected, so a bad redirect_uri can
// never be used as an open redirector.
func (h *Handler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	req := &models.AuthorizeRequest{
		ClientID:            q.Get("client_id"),
		ResponseType:        q.Get("response_type"),
		RedirectURI:         q.Get("redirect_uri"),
		Scope:               q.Get("scope"),
		State:               q.Get("state"),
		Nonce:               q.Get("nonce"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
		Subject:             requestcontext.Subject(ctx),
		ReturnURL:           r.URL.RequestURI(),
	}

	result, err := h.engine.Authorize(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "authorize rejected",
			"client_id", req.ClientID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}
