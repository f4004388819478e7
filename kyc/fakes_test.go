package kyc

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"oneclick-go/database"
	"oneclick-go/models"
	"oneclick-go/storage"

	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

var (
	pngData  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegData = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	pdfData  = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
)

func imageFile(data []byte) *Attachment {
	return &Attachment{Size: int64(len(data)), Data: data}
}

func documentKeys(sub *models.KYCSubmission) []string {
	return []string{sub.AadhaarFrontKey, sub.AadhaarBackKey, sub.PANCardKey}
}

func validForm() SubmissionForm {
	return SubmissionForm{
		FullName:          "Ravi Kumar",
		DateOfBirth:       "1990-05-17",
		PANNumber:         "ABCDE1234F",
		AadhaarNumber:     "234567890123",
		AccountHolderName: "Ravi Kumar",
		AccountNumber:     "001234567890",
		IFSCCode:          "HDFC0001234",
		BankName:          "HDFC Bank",
		AadhaarFront:      imageFile(pngData),
		AadhaarBack:       imageFile(jpegData),
		PANCardImage:      imageFile(pngData),
	}
}

var (
	agent    = Principal{UserID: "agent-1", Email: "agent@example.com", Role: "user"}
	reviewer = Principal{UserID: "admin-1", Email: "ops@example.com", Role: "admin"}
)

// fakeSubmissions mimics SubmissionRepository in memory.
type fakeSubmissions struct {
	mu     sync.Mutex
	rows   []models.KYCSubmission
	nextID uint

	createErr  error
	findErr    error
	listErr    error
	applyErr   error
	openErr    error
	applyCalls int
	lastFilter database.SubmissionFilter

	// beforeApply runs inside ApplyReview before the conditional write.
	beforeApply func(rows []models.KYCSubmission)
}

func (f *fakeSubmissions) Create(_ context.Context, sub *models.KYCSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	sub.ID = f.nextID
	f.rows = append(f.rows, *sub)
	return nil
}

func (f *fakeSubmissions) seed(sub models.KYCSubmission) *models.KYCSubmission {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	sub.ID = f.nextID
	f.rows = append(f.rows, sub)
	return &sub
}

func (f *fakeSubmissions) FindByID(_ context.Context, id uint) (*models.KYCSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, r := range f.rows {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeSubmissions) LatestByUser(_ context.Context, userID string) (*models.KYCSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.KYCSubmission
	for i := range f.rows {
		r := f.rows[i]
		if r.UserID != userID {
			continue
		}
		if latest == nil || r.SubmittedAt.After(latest.SubmittedAt) ||
			(r.SubmittedAt.Equal(latest.SubmittedAt) && r.ID > latest.ID) {
			latest = &r
		}
	}
	if latest == nil {
		return nil, database.ErrNotFound
	}
	return latest, nil
}

func (f *fakeSubmissions) HasOpenSubmission(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return false, f.openErr
	}
	for _, r := range f.rows {
		if r.UserID == userID && (r.Status == models.KYCStatusPending || r.Status == models.KYCStatusApproved) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubmissions) List(_ context.Context, filter database.SubmissionFilter) ([]models.KYCSubmission, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var matched []models.KYCSubmission
	for _, r := range f.rows {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.From != nil && r.SubmittedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && r.SubmittedAt.After(*filter.To) {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].SubmittedAt.Equal(matched[j].SubmittedAt) {
			return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []models.KYCSubmission{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (f *fakeSubmissions) ApplyReview(_ context.Context, id uint, userID string, patch database.ReviewPatch) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyCalls++
	if f.beforeApply != nil {
		f.beforeApply(f.rows)
	}
	if f.applyErr != nil {
		return 0, f.applyErr
	}
	for i := range f.rows {
		r := &f.rows[i]
		if r.ID == id && r.UserID == userID && r.Status == models.KYCStatusPending {
			at := patch.ReviewedAt
			by := patch.ReviewedBy
			r.Status = patch.Status
			r.RejectionReason = patch.RejectionReason
			r.ReviewedAt = &at
			r.ReviewedBy = &by
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeSubmissions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeProfiles struct {
	mu       sync.Mutex
	statuses map[string]models.KYCStatus
	err      error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{statuses: make(map[string]models.KYCStatus)}
}

func (f *fakeProfiles) UpdateKYCStatus(_ context.Context, userID string, status models.KYCStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.statuses[userID] = status
	return nil
}

func (f *fakeProfiles) status(userID string) models.KYCStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[userID]
}

// prefixCipher is a reversible stand-in for the field cipher.
type prefixCipher struct {
	encryptErr error
}

func (c prefixCipher) Encrypt(p string) (string, error) {
	if c.encryptErr != nil {
		return "", c.encryptErr
	}
	return "enc:" + p, nil
}

func (c prefixCipher) Decrypt(s string) (string, error) {
	if !strings.HasPrefix(s, "enc:") {
		return "", errors.New("not ciphertext")
	}
	return strings.TrimPrefix(s, "enc:"), nil
}

type mockObjects struct {
	mock.Mock
}

func (m *mockObjects) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *mockObjects) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockObjects) DeleteMany(ctx context.Context, keys []string) error {
	return m.Called(ctx, keys).Error(0)
}

// flakySigner fails to sign the keys in fail.
type flakySigner struct {
	*storage.MemoryStore
	fail map[string]bool
}

func (f *flakySigner) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if f.fail[key] {
		return "", errors.New("signing unavailable")
	}
	return f.MemoryStore.SignedURL(ctx, key, ttl)
}

func keyWithPrefix(prefix string) interface{} {
	return mock.MatchedBy(func(k string) bool { return strings.HasPrefix(k, prefix) })
}
