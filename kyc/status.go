package kyc

import (
	"context"
	"errors"

	"oneclick-go/database"
	"oneclick-go/models"
)

type StatusResult struct {
	Status          models.KYCStatus `json:"status"`
	RejectionReason *string          `json:"rejection_reason"`
	Data            *SubmissionView  `json:"data"`
}

// Status reports the caller's latest submission, or NOT_SUBMITTED with no
// data when there is none.
func (s *Service) Status(ctx context.Context, p Principal) (*StatusResult, error) {
	if p.UserID == "" {
		return nil, newError(CodeUnauthorized, "Unauthorized", nil)
	}

	sub, err := s.submissions.LatestByUser(ctx, p.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return &StatusResult{Status: models.KYCStatusNotSubmitted}, nil
	}
	if err != nil {
		return nil, newError(CodePersistenceFailed, "Failed to load KYC status", err)
	}

	view, err := s.decryptedView(sub)
	if err != nil {
		return nil, newError(CodePersistenceFailed, "Failed to load KYC status", err)
	}
	s.signDocuments(ctx, view)

	return &StatusResult{
		Status:          sub.Status,
		RejectionReason: sub.RejectionReason,
		Data:            view,
	}, nil
}
