package kyc

import (
	"context"
	"fmt"
	"time"

	"oneclick-go/models"
	"oneclick-go/storage"

	"go.uber.org/zap"
)

// Submit validates form, uploads the three documents and records a PENDING
// submission. If an upload or the insert fails, every document uploaded so
// far is deleted before the error is returned.
func (s *Service) Submit(ctx context.Context, p Principal, form SubmissionForm) (*models.KYCSubmission, error) {
	if p.UserID == "" {
		return nil, newError(CodeUnauthorized, "Unauthorized", nil)
	}

	now := s.now().UTC()
	payload, err := ValidateSubmission(form, now, s.maxUploadBytes)
	if err != nil {
		s.metrics.IncSubmission("invalid")
		return nil, err
	}

	open, err := s.submissions.HasOpenSubmission(ctx, p.UserID)
	if err != nil {
		s.metrics.IncSubmission("persistence_failed")
		return nil, newError(CodePersistenceFailed, "Failed to check existing KYC submissions", err)
	}
	if open {
		s.metrics.IncSubmission("conflict")
		return nil, newError(CodeConflict, "A KYC submission is already pending or approved", nil)
	}

	sub, err := s.sealPayload(p.UserID, payload, now)
	if err != nil {
		s.metrics.IncSubmission("persistence_failed")
		return nil, newError(CodePersistenceFailed, "Failed to protect KYC details", err)
	}

	uploaded := make([]string, 0, len(payload.Documents))
	for _, doc := range payload.Documents {
		key := storage.DocumentKey(p.UserID, doc.Field, now)
		if err := s.objects.Put(ctx, key, doc.Data, doc.ContentType); err != nil {
			s.logger.Error("kyc document upload failed",
				zap.Error(err),
				zap.String("user_id", p.UserID),
				zap.String("field", doc.Field))
			s.cleanup(ctx, p.UserID, uploaded)
			s.metrics.IncSubmission("upload_failed")
			return nil, newError(CodeUploadFailed, "Failed to upload documents", fmt.Errorf("upload %s: %w", doc.Field, err))
		}
		uploaded = append(uploaded, key)
	}
	sub.AadhaarFrontKey = uploaded[0]
	sub.AadhaarBackKey = uploaded[1]
	sub.PANCardKey = uploaded[2]

	if err := s.submissions.Create(ctx, sub); err != nil {
		s.logger.Error("kyc submission insert failed", zap.Error(err), zap.String("user_id", p.UserID))
		s.cleanup(ctx, p.UserID, uploaded)
		s.metrics.IncSubmission("persistence_failed")
		return nil, newError(CodePersistenceFailed, "Failed to save KYC details", err)
	}

	s.syncProfile(ctx, p.UserID, models.KYCStatusPending)
	s.metrics.IncSubmission("accepted")
	s.logger.Info("kyc submitted",
		zap.String("user_id", p.UserID),
		zap.Uint("submission_id", sub.ID))
	return sub, nil
}

// sealPayload builds the PENDING row with the identity numbers encrypted.
func (s *Service) sealPayload(userID string, p Payload, now time.Time) (*models.KYCSubmission, error) {
	pan, err := s.cipher.Encrypt(p.PANNumber)
	if err != nil {
		return nil, fmt.Errorf("encrypt pan: %w", err)
	}
	aadhaar, err := s.cipher.Encrypt(p.AadhaarNumber)
	if err != nil {
		return nil, fmt.Errorf("encrypt aadhaar: %w", err)
	}
	account, err := s.cipher.Encrypt(p.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("encrypt account number: %w", err)
	}
	return &models.KYCSubmission{
		UserID:            userID,
		Status:            models.KYCStatusPending,
		FullName:          p.FullName,
		DateOfBirth:       p.DateOfBirth.Format(time.DateOnly),
		PANNumber:         pan,
		AadhaarNumber:     aadhaar,
		AccountHolderName: p.AccountHolderName,
		AccountNumber:     account,
		IFSCCode:          p.IFSCCode,
		BankName:          p.BankName,
		UPIID:             p.UPIID,
		SubmittedAt:       now,
	}, nil
}
