package httptransport

import (
	"net/http"
	"strings"

	"signet/pkg/platform/httputil"
	"signet/pkg/requestcontext"
)

// handleUserInfo resolves the caller and returns the subject's claims. An
// established session subject takes priority; otherwise the bearer token is
// looked for in the Authorization header, then the query string, then the
// form body.
func (h *Handler) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	info, err := h.engine.UserInfo(ctx, requestcontext.Subject(ctx), bearerToken(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

func bearerToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	if token := r.URL.Query().Get("access_token"); token != "" {
		return token
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			return r.PostForm.Get("access_token")
		}
	}
	return ""
}
