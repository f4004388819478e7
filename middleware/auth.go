package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"oneclick-go/utils"

	"go.uber.org/zap"
)

type contextKey string

const UserContextKey contextKey = "user"

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*utils.Claims, error)
}

// Authenticator resolves the caller from the Authorization header.
type Authenticator struct {
	tokens TokenValidator
	roles  utils.RolePolicy
	logger *zap.Logger
}

func NewAuthenticator(tokens TokenValidator, roles utils.RolePolicy, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{tokens: tokens, roles: roles, logger: logger}
}

// JWTAuth rejects requests without a valid bearer token. The claims stored in
// the request context carry the resolved role, not the raw claim.
func (a *Authenticator) JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			a.logger.Debug("no authorization header", zap.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			a.logger.Debug("invalid authorization header format", zap.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := a.tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			a.logger.Info("token validation failed", zap.String("path", r.URL.Path), zap.Error(err))
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		claims.Role = a.roles.Resolve(claims.Email, claims.Role)

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminAuth must run after JWTAuth.
func (a *Authenticator) AdminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized - No user context")
			return
		}

		if !utils.IsAdminRole(claims.Role) {
			a.logger.Warn("admin endpoint denied",
				zap.String("user_id", claims.UserID()),
				zap.String("role", claims.Role),
				zap.String("path", r.URL.Path))
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func GetUserFromContext(r *http.Request) *utils.Claims {
	if claims, ok := r.Context().Value(UserContextKey).(*utils.Claims); ok {
		return claims
	}
	return nil
}

// WithUser returns a copy of r carrying claims, as JWTAuth would.
func WithUser(r *http.Request, claims *utils.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"error":     msg,
		"timestamp": time.Now().UTC(),
	})
}
