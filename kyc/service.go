// Package kyc implements the agent KYC workflow: validated submission with
// compensating cleanup, self-service status, administrative review listing
// and the PENDING -> APPROVED/REJECTED review action.
package kyc

import (
	"context"
	"errors"
	"time"

	"oneclick-go/database"
	"oneclick-go/metrics"
	"oneclick-go/models"
	"oneclick-go/utils"

	"go.uber.org/zap"
)

const (
	DefaultSignedURLTTL   = time.Hour
	DefaultMaxUploadBytes = 5 << 20
)

// SubmissionStore is the relational store for submission rows.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.KYCSubmission) error
	FindByID(ctx context.Context, id uint) (*models.KYCSubmission, error)
	LatestByUser(ctx context.Context, userID string) (*models.KYCSubmission, error)
	HasOpenSubmission(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context, f database.SubmissionFilter) ([]models.KYCSubmission, int64, error)
	ApplyReview(ctx context.Context, id uint, userID string, patch database.ReviewPatch) (int64, error)
}

// ProfileStore writes the agent profile's kyc_status mirror.
type ProfileStore interface {
	UpdateKYCStatus(ctx context.Context, userID string, status models.KYCStatus) error
}

// ObjectStore holds the uploaded document images.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	DeleteMany(ctx context.Context, keys []string) error
}

// FieldCipher protects sensitive identity numbers at rest.
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

// RoleChecker decides whether a principal may list and review submissions.
type RoleChecker func(p Principal) bool

// AdminOnly allows the admin and super_admin roles.
func AdminOnly(p Principal) bool {
	return utils.IsAdminRole(p.Role)
}

type Service struct {
	submissions SubmissionStore
	profiles    ProfileStore
	objects     ObjectStore
	cipher      FieldCipher
	logger      *zap.Logger
	metrics     *metrics.Metrics

	canReview      RoleChecker
	signedURLTTL   time.Duration
	maxUploadBytes int64
	now            func() time.Time
}

type Option func(*Service)

func WithSignedURLTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.signedURLTTL = ttl
		}
	}
}

func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

func WithRoleChecker(fn RoleChecker) Option {
	return func(s *Service) {
		if fn != nil {
			s.canReview = fn
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(submissions SubmissionStore, profiles ProfileStore, objects ObjectStore, cipher FieldCipher, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		submissions:    submissions,
		profiles:       profiles,
		objects:        objects,
		cipher:         cipher,
		logger:         logger,
		canReview:      AdminOnly,
		signedURLTTL:   DefaultSignedURLTTL,
		maxUploadBytes: DefaultMaxUploadBytes,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxUploadBytes is the per-document size limit.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// syncProfile mirrors status onto the agent profile. Failure is logged and
// counted, never propagated.
func (s *Service) syncProfile(ctx context.Context, userID string, status models.KYCStatus) {
	err := s.profiles.UpdateKYCStatus(ctx, userID, status)
	if err == nil {
		return
	}
	if errors.Is(err, database.ErrNotFound) {
		err = errors.New("agent profile missing")
	}
	s.metrics.IncProfileSyncWarning()
	s.logger.Warn("kyc profile sync",
		zap.Error(errors.Join(ErrProfileSync, err)),
		zap.String("user_id", userID),
		zap.String("kyc_status", string(status)))
}

// cleanup deletes documents uploaded by a submission that did not complete.
// It runs even when ctx is already cancelled.
func (s *Service) cleanup(ctx context.Context, userID string, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.objects.DeleteMany(context.WithoutCancel(ctx), keys); err != nil {
		s.metrics.IncCleanupFailure()
		s.logger.Error("kyc cleanup of orphaned documents failed",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Strings("keys", keys))
		return
	}
	s.logger.Info("kyc cleaned up orphaned documents",
		zap.String("user_id", userID),
		zap.Strings("keys", keys))
}
