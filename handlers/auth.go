package handlers

import (
	"errors"
	"net/http"

	"oneclick-go/database"
	"oneclick-go/middleware"
	"oneclick-go/utils"
)

// DebugToken reports the verified token claims next to the stored agent
// profile. It is only routed outside production.
func (h *Handlers) DebugToken(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", "No claims found in context, ensure JWT middleware is active and token is valid.")
		return
	}

	response := map[string]interface{}{
		"token_claims":  claims,
		"resolved_role": claims.Role,
		"is_admin":      utils.IsAdminRole(claims.Role),
		"agent_profile": nil,
	}

	profile, err := h.profiles.FindByUserID(r.Context(), claims.UserID())
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		sendError(w, http.StatusInternalServerError, "Failed to fetch agent profile", err.Error())
		return
	default:
		response["agent_profile"] = profile
		response["email_match"] = profile.Email == claims.Email
	}

	writeJSON(w, http.StatusOK, response)
}
