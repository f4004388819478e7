package database

import (
	"context"
	"time"

	"oneclick-go/models"

	"gorm.io/gorm"
)

// SubmissionFilter narrows a review listing. Nil fields do not filter.
type SubmissionFilter struct {
	Status *models.KYCStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// ReviewPatch is the single write a review applies to a PENDING row.
type ReviewPatch struct {
	Status          models.KYCStatus
	RejectionReason *string
	ReviewedAt      time.Time
	ReviewedBy      string
}

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *models.KYCSubmission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id uint) (*models.KYCSubmission, error) {
	var sub models.KYCSubmission
	if err := r.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

// LatestByUser returns the most recently submitted row for userID.
func (r *SubmissionRepository) LatestByUser(ctx context.Context, userID string) (*models.KYCSubmission, error) {
	var sub models.KYCSubmission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Order("id DESC").
		Take(&sub).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sub, nil
}

// HasOpenSubmission reports whether userID has a PENDING or APPROVED row.
func (r *SubmissionRepository) HasOpenSubmission(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.KYCSubmission{}).
		Where("user_id = ? AND status IN ?", userID, []models.KYCStatus{models.KYCStatusPending, models.KYCStatusApproved}).
		Count(&count).Error
	return count > 0, err
}

// List returns one page ordered by submission time, newest first, and the
// number of rows matching the filter before paging.
func (r *SubmissionRepository) List(ctx context.Context, f SubmissionFilter) ([]models.KYCSubmission, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.KYCSubmission
	err := r.filtered(ctx, f).
		Order("submitted_at DESC").
		Order("id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (r *SubmissionRepository) filtered(ctx context.Context, f SubmissionFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.KYCSubmission{})
	if f.Status != nil {
		query = query.Where("status = ?", *f.Status)
	}
	if f.From != nil {
		query = query.Where("submitted_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("submitted_at <= ?", *f.To)
	}
	return query
}

// ApplyReview moves a PENDING submission owned by userID to its reviewed
// state. The returned count is zero when the row is missing, owned by someone
// else, or no longer PENDING.
func (r *SubmissionRepository) ApplyReview(ctx context.Context, id uint, userID string, patch ReviewPatch) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.KYCSubmission{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, models.KYCStatusPending).
		Updates(map[string]interface{}{
			"status":           patch.Status,
			"rejection_reason": patch.RejectionReason,
			"reviewed_at":      patch.ReviewedAt,
			"reviewed_by":      patch.ReviewedBy,
		})
	return res.RowsAffected, res.Error
}
