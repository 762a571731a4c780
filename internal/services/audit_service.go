package services

import (
	"context"
	"time"

	"github.com/ganamos/backend/internal/models"
	repo "github.com/ganamos/backend/internal/repository"
)

// AuditService checks stored balances against the transaction ledger and
// builds the daily platform summary.
type AuditService struct {
	profiles repo.Profiles
	txns     repo.Transactions
	posts    repo.Posts
	reports  repo.AuditReports
}

func NewAuditService(p repo.Profiles, t repo.Transactions, po repo.Posts, r repo.AuditReports) *AuditService {
	return &AuditService{profiles: p, txns: t, posts: po, reports: r}
}

// Run audits one profile, or every active profile when profileID is
// empty. A report row is written for each mismatch found.
func (s *AuditService) Run(ctx context.Context, profileID string) ([]models.AuditReport, error) {
	var targets []models.Profile
	if profileID != "" {
		p, err := s.profiles.GetByID(ctx, profileID)
		if err != nil {
			return nil, err
		}
		targets = []models.Profile{p}
	} else {
		var err error
		targets, err = s.profiles.ListActive(ctx)
		if err != nil {
			return nil, err
		}
	}

	var out []models.AuditReport
	for _, p := range targets {
		expected, err := s.txns.SumSettled(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if expected == p.BalanceSats {
			continue
		}
		rep, err := s.reports.Create(ctx, models.AuditReport{
			ProfileID:    p.ID,
			ExpectedSats: expected,
			ActualSats:   p.BalanceSats,
			DeltaSats:    p.BalanceSats - expected,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}

func (s *AuditService) ListReports(ctx context.Context, limit, offset int) ([]models.AuditReport, error) {
	return s.reports.List(ctx, limit, offset)
}

// Summary aggregates one UTC day.
func (s *AuditService) Summary(ctx context.Context, day time.Time) (models.DailySummary, error) {
	from := day.UTC().Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)

	sum, err := s.txns.Summary(ctx, from, to)
	if err != nil {
		return models.DailySummary{}, err
	}
	sum.Date = from.Format("2006-01-02")
	if sum.NewProfiles, err = s.profiles.CountCreatedBetween(ctx, from, to); err != nil {
		return models.DailySummary{}, err
	}
	if sum.NewPosts, err = s.posts.CountCreatedBetween(ctx, from, to); err != nil {
		return models.DailySummary{}, err
	}
	return sum, nil
}
