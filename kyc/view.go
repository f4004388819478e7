package kyc

import (
	"context"
	"fmt"
	"time"

	"oneclick-go/models"
	"oneclick-go/storage"

	"go.uber.org/zap"
)

// SubmissionView is a submission as returned to clients: identity numbers
// decrypted and each document resolved to a short-lived URL. A URL is nil
// when it could not be signed.
type SubmissionView struct {
	ID                uint             `json:"id"`
	UserID            string           `json:"user_id"`
	Status            models.KYCStatus `json:"status"`
	FullName          string           `json:"full_name"`
	DateOfBirth       string           `json:"date_of_birth"`
	PANNumber         string           `json:"pan_number"`
	AadhaarNumber     string           `json:"aadhaar_number"`
	AccountHolderName string           `json:"account_holder_name"`
	AccountNumber     string           `json:"account_number"`
	IFSCCode          string           `json:"ifsc_code"`
	BankName          string           `json:"bank_name"`
	UPIID             *string          `json:"upi_id"`
	AadhaarFrontKey   string           `json:"aadhaar_front_key"`
	AadhaarBackKey    string           `json:"aadhaar_back_key"`
	PANCardKey        string           `json:"pan_card_key"`
	RejectionReason   *string          `json:"rejection_reason"`
	SubmittedAt       time.Time        `json:"submitted_at"`
	ReviewedAt        *time.Time       `json:"reviewed_at"`
	ReviewedBy        *string          `json:"reviewed_by"`

	AadhaarFrontSigned *string `json:"aadhaar_front_signed"`
	AadhaarBackSigned  *string `json:"aadhaar_back_signed"`
	PANCardSigned      *string `json:"pan_card_signed"`
}

func (s *Service) decryptedView(sub *models.KYCSubmission) (*SubmissionView, error) {
	pan, err := s.cipher.Decrypt(sub.PANNumber)
	if err != nil {
		return nil, fmt.Errorf("decrypt pan for submission %d: %w", sub.ID, err)
	}
	aadhaar, err := s.cipher.Decrypt(sub.AadhaarNumber)
	if err != nil {
		return nil, fmt.Errorf("decrypt aadhaar for submission %d: %w", sub.ID, err)
	}
	account, err := s.cipher.Decrypt(sub.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("decrypt account number for submission %d: %w", sub.ID, err)
	}
	return &SubmissionView{
		ID:                sub.ID,
		UserID:            sub.UserID,
		Status:            sub.Status,
		FullName:          sub.FullName,
		DateOfBirth:       sub.DateOfBirth,
		PANNumber:         pan,
		AadhaarNumber:     aadhaar,
		AccountHolderName: sub.AccountHolderName,
		AccountNumber:     account,
		IFSCCode:          sub.IFSCCode,
		BankName:          sub.BankName,
		UPIID:             sub.UPIID,
		AadhaarFrontKey:   sub.AadhaarFrontKey,
		AadhaarBackKey:    sub.AadhaarBackKey,
		PANCardKey:        sub.PANCardKey,
		RejectionReason:   sub.RejectionReason,
		SubmittedAt:       sub.SubmittedAt,
		ReviewedAt:        sub.ReviewedAt,
		ReviewedBy:        sub.ReviewedBy,
	}, nil
}

// signDocuments fills the three signed URLs on v. It never fails.
func (s *Service) signDocuments(ctx context.Context, v *SubmissionView) {
	v.AadhaarFrontSigned = s.signOne(ctx, v, v.AadhaarFrontKey)
	v.AadhaarBackSigned = s.signOne(ctx, v, v.AadhaarBackKey)
	v.PANCardSigned = s.signOne(ctx, v, v.PANCardKey)
}

// signOne only signs keys that live under the submission owner's prefix.
func (s *Service) signOne(ctx context.Context, v *SubmissionView, key string) *string {
	if key == "" {
		return nil
	}
	if owner, _, ok := storage.ParseDocumentKey(key); !ok || owner != v.UserID {
		s.logger.Warn("kyc document key not owned by submission",
			zap.Uint("submission_id", v.ID),
			zap.String("user_id", v.UserID),
			zap.String("key", key))
		return nil
	}
	url, err := s.objects.SignedURL(ctx, key, s.signedURLTTL)
	if err != nil {
		s.logger.Warn("kyc document url signing failed",
			zap.Error(err),
			zap.Uint("submission_id", v.ID),
			zap.String("key", key))
		return nil
	}
	return &url
}
