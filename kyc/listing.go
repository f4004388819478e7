package kyc

import (
	"context"
	"strings"
	"time"

	"oneclick-go/database"
	"oneclick-go/models"
	"oneclick-go/utils"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200

	signConcurrency = 8
)

// ListFilter is the raw review listing query. Empty strings and a zero Limit
// mean "not set".
type ListFilter struct {
	Status string
	From   string
	To     string
	Limit  int
	Offset int
}

type ListResult struct {
	Data   []*SubmissionView `json:"data"`
	Count  int64             `json:"count"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// List returns one page of submissions, newest first, with signed document
// URLs. Only reviewers may list.
func (s *Service) List(ctx context.Context, p Principal, f ListFilter) (*ListResult, error) {
	if p.UserID == "" {
		return nil, newError(CodeUnauthorized, "Unauthorized", nil)
	}
	if !s.canReview(p) {
		return nil, newError(CodeForbidden, "Admin access required", nil)
	}

	filter, err := parseListFilter(f)
	if err != nil {
		return nil, err
	}

	subs, total, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, newError(CodePersistenceFailed, "Failed to list KYC submissions", err)
	}

	views := make([]*SubmissionView, len(subs))
	for i := range subs {
		v, err := s.decryptedView(&subs[i])
		if err != nil {
			return nil, newError(CodePersistenceFailed, "Failed to list KYC submissions", err)
		}
		views[i] = v
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(signConcurrency)
	for _, v := range views {
		g.Go(func() error {
			s.signDocuments(gctx, v)
			return nil
		})
	}
	_ = g.Wait()

	return &ListResult{
		Data:   views,
		Count:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func parseListFilter(f ListFilter) (database.SubmissionFilter, error) {
	fields := make(map[string]string)
	out := database.SubmissionFilter{Limit: f.Limit, Offset: f.Offset}

	switch {
	case f.Limit < 0:
		fields["limit"] = "limit must not be negative"
	case f.Limit == 0:
		out.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		out.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		fields["offset"] = "offset must not be negative"
	}

	if raw := strings.TrimSpace(f.Status); raw != "" {
		status, ok := models.ParseKYCStatus(strings.ToUpper(raw))
		if !ok {
			fields["status"] = "status must be one of PENDING, APPROVED, REJECTED"
		} else {
			out.Status = &status
		}
	}

	if raw := strings.TrimSpace(f.From); raw != "" {
		from, err := utils.ParseDate(raw)
		if err != nil {
			fields["from"] = "from must be a date (YYYY-MM-DD)"
		} else {
			out.From = &from
		}
	}
	if raw := strings.TrimSpace(f.To); raw != "" {
		to, err := utils.ParseDate(raw)
		if err != nil {
			fields["to"] = "to must be a date (YYYY-MM-DD)"
		} else {
			end := to.Add(24*time.Hour - time.Millisecond)
			out.To = &end
		}
	}
	if out.From != nil && out.To != nil && out.From.After(*out.To) {
		fields["from"] = "from must not be after to"
	}

	if len(fields) > 0 {
		return database.SubmissionFilter{}, invalidInput("Invalid list query", fields)
	}
	return out, nil
}
