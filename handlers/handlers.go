package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"oneclick-go/config"
	"oneclick-go/kyc"
	"oneclick-go/middleware"
	"oneclick-go/models"
	"oneclick-go/utils"

	"go.uber.org/zap"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Status    int         `json:"status"`
	Error     string      `json:"error"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func sendError(w http.ResponseWriter, status int, err string, details interface{}) {
	writeJSON(w, status, ErrorResponse{
		Status:    status,
		Error:     err,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// KYCService is the workflow the KYC endpoints delegate to.
type KYCService interface {
	Submit(ctx context.Context, p kyc.Principal, form kyc.SubmissionForm) (*models.KYCSubmission, error)
	Status(ctx context.Context, p kyc.Principal) (*kyc.StatusResult, error)
	List(ctx context.Context, p kyc.Principal, f kyc.ListFilter) (*kyc.ListResult, error)
	Review(ctx context.Context, p kyc.Principal, req kyc.ReviewRequest) (*kyc.SubmissionView, error)
	MaxUploadBytes() int64
}

type ProfileStore interface {
	EnsureProfile(ctx context.Context, userID, email string) (*models.AgentProfile, error)
	FindByUserID(ctx context.Context, userID string) (*models.AgentProfile, error)
}

type AuditStore interface {
	Record(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

type Handlers struct {
	kyc      KYCService
	profiles ProfileStore
	audit    AuditStore
	config   *config.Config
	logger   *zap.Logger
}

func NewHandlers(svc KYCService, profiles ProfileStore, audit AuditStore, cfg *config.Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		kyc:      svc,
		profiles: profiles,
		audit:    audit,
		config:   cfg,
		logger:   logger,
	}
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "OneClickKYC",
		"version":   "1.0.0",
	})
}

func principalFrom(claims *utils.Claims) kyc.Principal {
	return kyc.Principal{
		UserID: claims.UserID(),
		Email:  claims.Email,
		Role:   claims.Role,
	}
}

// requirePrincipal writes 401 and returns false when the request carries no
// authenticated user.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (kyc.Principal, bool) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		sendError(w, http.StatusUnauthorized, "Invalid or missing token", nil)
		return kyc.Principal{}, false
	}
	return principalFrom(claims), true
}

var statusByCode = map[kyc.Code]int{
	kyc.CodeUnauthorized:      http.StatusUnauthorized,
	kyc.CodeForbidden:         http.StatusForbidden,
	kyc.CodeInvalidInput:      http.StatusBadRequest,
	kyc.CodeNotFound:          http.StatusNotFound,
	kyc.CodeOwnershipMismatch: http.StatusBadRequest,
	kyc.CodeConflict:          http.StatusConflict,
	kyc.CodeUploadFailed:      http.StatusInternalServerError,
	kyc.CodePersistenceFailed: http.StatusInternalServerError,
}

// writeServiceError translates a workflow error into the JSON error body.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var kerr *kyc.Error
	if !errors.As(err, &kerr) {
		h.logger.Error("unexpected handler error", zap.Error(err), zap.String("path", r.URL.Path))
		sendError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	status, ok := statusByCode[kerr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	var details interface{}
	switch {
	case len(kerr.Fields) > 0:
		details = kerr.Fields
	case status >= http.StatusInternalServerError && kerr.Err != nil:
		h.logger.Error("kyc request failed",
			zap.Error(err),
			zap.String("code", string(kerr.Code)),
			zap.String("path", r.URL.Path))
		if !h.config.IsProduction() {
			details = kerr.Err.Error()
		}
	}
	sendError(w, status, kerr.Message, details)
}

// logAudit records an audit entry. Failures are logged and otherwise ignored.
func (h *Handlers) logAudit(r *http.Request, userID, action, resource, details string) {
	entry := models.AuditLog{
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
	if userID != "" {
		entry.UserID = &userID
	}
	if err := h.audit.Record(context.WithoutCancel(r.Context()), &entry); err != nil {
		h.logger.Warn("audit log write failed",
			zap.Error(err),
			zap.String("action", action),
			zap.String("resource", resource))
	}
}
