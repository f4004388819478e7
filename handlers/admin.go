package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"oneclick-go/kyc"

	"go.uber.org/zap"
)

type reviewBody struct {
	ID     json.Number `json:"id"`
	UserID string      `json:"userId"`
	Action string      `json:"action"`
	Reason string      `json:"reason"`
}

func (h *Handlers) ListKYC(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := kyc.ListFilter{
		Status: q.Get("status"),
		From:   q.Get("from"),
		To:     q.Get("to"),
	}
	fields := make(map[string]string)
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields["limit"] = "limit must be an integer"
		}
		filter.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields["offset"] = "offset must be an integer"
		}
		filter.Offset = n
	}
	if len(fields) > 0 {
		sendError(w, http.StatusBadRequest, "Invalid list query", fields)
		return
	}

	result, err := h.kyc.List(r.Context(), principal, filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) ReviewKYC(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var body reviewBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	var id uint64
	if raw := strings.TrimSpace(body.ID.String()); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			sendError(w, http.StatusBadRequest, "Invalid review request", map[string]string{"id": "id must be a positive integer"})
			return
		}
		id = n
	}

	view, err := h.kyc.Review(r.Context(), principal, kyc.ReviewRequest{
		ID:     uint(id),
		UserID: body.UserID,
		Action: kyc.Action(body.Action),
		Reason: body.Reason,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logAudit(r, principal.UserID, "UPDATE", "KYC",
		fmt.Sprintf("KYC submission %d for user %s set to %s", view.ID, view.UserID, view.Status))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("KYC %s successfully", strings.ToLower(string(view.Status))),
		"data":    view,
	})
}

func (h *Handlers) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	logs, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("audit log listing failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, "Failed to fetch audit logs", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  logs,
		"page":  page,
		"limit": limit,
	})
}
