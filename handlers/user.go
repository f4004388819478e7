package handlers

import (
	"net/http"

	"oneclick-go/middleware"

	"go.uber.org/zap"
)

// GetProfile returns the caller's agent profile, creating it on first access.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.EnsureProfile(r.Context(), principal.UserID, principal.Email)
	if err != nil {
		h.logger.Error("agent profile load failed", zap.Error(err), zap.String("user_id", principal.UserID))
		sendError(w, http.StatusInternalServerError, "Failed to load profile", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
		"role":    principal.Role,
	})
}

// EnsureAgentProfile creates the caller's agent profile on first
// authenticated access so the kyc_status mirror always has a row to update.
// It must run after JWTAuth. A failure is logged and the request proceeds.
func (h *Handlers) EnsureAgentProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims := middleware.GetUserFromContext(r); claims != nil {
			if _, err := h.profiles.EnsureProfile(r.Context(), claims.UserID(), claims.Email); err != nil {
				h.logger.Warn("agent profile provisioning failed",
					zap.Error(err),
					zap.String("user_id", claims.UserID()))
			}
		}
		next.ServeHTTP(w, r)
	})
}
