package models

import (
	"time"
)

// KYCStatus is the lifecycle state of a submission. NOT_SUBMITTED is only
// ever reported, never stored on a submission row.
type KYCStatus string

const (
	KYCStatusNotSubmitted KYCStatus = "NOT_SUBMITTED"
	KYCStatusPending      KYCStatus = "PENDING"
	KYCStatusApproved     KYCStatus = "APPROVED"
	KYCStatusRejected     KYCStatus = "REJECTED"
)

// Terminal reports whether no further review transition is defined.
func (s KYCStatus) Terminal() bool {
	return s == KYCStatusApproved || s == KYCStatusRejected
}

// ParseKYCStatus accepts the stored submission states only.
func ParseKYCStatus(s string) (KYCStatus, bool) {
	switch KYCStatus(s) {
	case KYCStatusPending, KYCStatusApproved, KYCStatusRejected:
		return KYCStatus(s), true
	}
	return "", false
}

// KYCSubmission is one submission attempt. PANNumber, AadhaarNumber and
// AccountNumber hold ciphertext; the document keys point into the object store.
type KYCSubmission struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	UserID            string     `json:"user_id" gorm:"index;not null"`
	Status            KYCStatus  `json:"status" gorm:"type:varchar(16);index;not null;default:PENDING"`
	FullName          string     `json:"full_name" gorm:"not null"`
	DateOfBirth       string     `json:"date_of_birth" gorm:"type:varchar(10);not null"`
	PANNumber         string     `json:"pan_number" gorm:"not null"`
	AadhaarNumber     string     `json:"aadhaar_number" gorm:"not null"`
	AccountHolderName string     `json:"account_holder_name" gorm:"not null"`
	AccountNumber     string     `json:"account_number" gorm:"not null"`
	IFSCCode          string     `json:"ifsc_code" gorm:"type:varchar(11);not null"`
	BankName          string     `json:"bank_name" gorm:"not null"`
	UPIID             *string    `json:"upi_id"`
	AadhaarFrontKey   string     `json:"aadhaar_front_key" gorm:"not null"`
	AadhaarBackKey    string     `json:"aadhaar_back_key" gorm:"not null"`
	PANCardKey        string     `json:"pan_card_key" gorm:"not null"`
	RejectionReason   *string    `json:"rejection_reason"`
	SubmittedAt       time.Time  `json:"submitted_at" gorm:"index;not null"`
	ReviewedAt        *time.Time `json:"reviewed_at"`
	ReviewedBy        *string    `json:"reviewed_by"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (KYCSubmission) TableName() string { return "kyc_submissions" }
