package kyc

import (
	"context"
	"errors"
	"strings"

	"oneclick-go/database"
	"oneclick-go/models"
	"oneclick-go/utils"

	"go.uber.org/zap"
)

type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

// ReviewRequest is an administrator's decision on one submission. UserID is
// the owner the client believes the submission belongs to.
type ReviewRequest struct {
	ID     uint
	UserID string
	Action Action
	Reason string
}

// Review moves a PENDING submission to APPROVED or REJECTED. The ownership
// check always precedes the write, and the write only applies while the row
// is still PENDING.
func (s *Service) Review(ctx context.Context, p Principal, req ReviewRequest) (*SubmissionView, error) {
	if p.UserID == "" {
		return nil, newError(CodeUnauthorized, "Unauthorized", nil)
	}
	if !s.canReview(p) {
		return nil, newError(CodeForbidden, "Admin access required", nil)
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.Action = Action(strings.ToUpper(strings.TrimSpace(string(req.Action))))
	reason := utils.SanitizeString(req.Reason)

	fields := make(map[string]string)
	if req.ID == 0 {
		fields["id"] = "id is required"
	}
	if req.UserID == "" {
		fields["userId"] = "userId is required"
	}
	var next models.KYCStatus
	switch req.Action {
	case ActionApprove:
		next = models.KYCStatusApproved
	case ActionReject:
		next = models.KYCStatusRejected
		if reason == "" {
			fields["reason"] = "Rejection reason is required"
		}
	case "":
		fields["action"] = "action is required"
	default:
		fields["action"] = "action must be APPROVE or REJECT"
	}
	if len(fields) > 0 {
		return nil, invalidInput("Invalid review request", fields)
	}
	decision := strings.ToLower(string(req.Action))

	sub, err := s.submissions.FindByID(ctx, req.ID)
	if errors.Is(err, database.ErrNotFound) {
		s.metrics.IncReview(decision, "not_found")
		return nil, newError(CodeNotFound, "Submission not found", nil)
	}
	if err != nil {
		s.metrics.IncReview(decision, "persistence_failed")
		return nil, newError(CodePersistenceFailed, "Failed to load submission", err)
	}
	if sub.UserID != req.UserID {
		s.metrics.IncReview(decision, "ownership_mismatch")
		s.logger.Warn("kyc review ownership mismatch",
			zap.Uint("submission_id", sub.ID),
			zap.String("claimed_user_id", req.UserID),
			zap.String("reviewer", p.UserID))
		return nil, newError(CodeOwnershipMismatch, "User ID mismatch", nil)
	}
	if sub.Status.Terminal() {
		s.metrics.IncReview(decision, "conflict")
		return nil, newError(CodeConflict, "Submission has already been reviewed", nil)
	}

	patch := database.ReviewPatch{
		Status:     next,
		ReviewedAt: s.now().UTC(),
		ReviewedBy: p.UserID,
	}
	if next == models.KYCStatusRejected {
		patch.RejectionReason = &reason
	}

	affected, err := s.submissions.ApplyReview(ctx, sub.ID, sub.UserID, patch)
	if err != nil {
		s.metrics.IncReview(decision, "persistence_failed")
		return nil, newError(CodePersistenceFailed, "Failed to update KYC status", err)
	}
	if affected == 0 {
		s.metrics.IncReview(decision, "conflict")
		return nil, newError(CodeConflict, "Submission was reviewed concurrently", nil)
	}

	sub.Status = patch.Status
	sub.RejectionReason = patch.RejectionReason
	sub.ReviewedAt = &patch.ReviewedAt
	sub.ReviewedBy = &patch.ReviewedBy

	s.syncProfile(ctx, sub.UserID, sub.Status)
	s.metrics.IncReview(decision, "applied")
	s.logger.Info("kyc reviewed",
		zap.Uint("submission_id", sub.ID),
		zap.String("user_id", sub.UserID),
		zap.String("status", string(sub.Status)),
		zap.String("reviewer", p.UserID))

	view, err := s.decryptedView(sub)
	if err != nil {
		// The review is committed; report it without the decrypted numbers.
		s.logger.Error("kyc review response decrypt failed", zap.Error(err), zap.Uint("submission_id", sub.ID))
		return &SubmissionView{
			ID:              sub.ID,
			UserID:          sub.UserID,
			Status:          sub.Status,
			RejectionReason: sub.RejectionReason,
			ReviewedAt:      sub.ReviewedAt,
			ReviewedBy:      sub.ReviewedBy,
			SubmittedAt:     sub.SubmittedAt,
		}, nil
	}
	return view, nil
}
