package models

import (
	"time"
)

// AgentProfile is the agent row owned by signup. The KYC workflow only ever
// writes KYCStatus, which mirrors the latest submission.
type AgentProfile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	KYCStatus KYCStatus `json:"kyc_status" gorm:"type:varchar(16);default:NOT_SUBMITTED"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AgentProfile) TableName() string { return "agent_profiles" }
