package database

import (
	"context"
	"strings"

	"oneclick-go/models"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// EnsureProfile returns the agent profile for userID, creating it on first
// access the way signup would.
func (r *ProfileRepository) EnsureProfile(ctx context.Context, userID, email string) (*models.AgentProfile, error) {
	var profile models.AgentProfile
	err := r.db.WithContext(ctx).
		Where(models.AgentProfile{UserID: userID}).
		Attrs(models.AgentProfile{
			Email:     email,
			Name:      displayName(email),
			KYCStatus: models.KYCStatusNotSubmitted,
		}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.AgentProfile, error) {
	var profile models.AgentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// UpdateKYCStatus writes the profile mirror. A missing profile is ErrNotFound.
func (r *ProfileRepository) UpdateKYCStatus(ctx context.Context, userID string, status models.KYCStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.AgentProfile{}).
		Where("user_id = ?", userID).
		Update("kyc_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func displayName(email string) string {
	if name, _, ok := strings.Cut(email, "@"); ok && name != "" {
		return name
	}
	return "User"
}
