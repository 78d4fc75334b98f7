package service

import (
	"context"
	"time"

	"github.com/duncan19760605/GenAI-Kid/internal/domain"
	"github.com/duncan19760605/GenAI-Kid/internal/repository"
)

// UsageService is the cost accountant: it folds per-interaction deltas into
// the per-user, per-day aggregate.
type UsageService struct {
	repo *repository.UsageRepository
	now  func() time.Time
}

func NewUsageService(repo *repository.UsageRepository) *UsageService {
	return &UsageService{repo: repo, now: time.Now}
}

func (s *UsageService) Record(ctx context.Context, userID string, delta repository.UsageDelta) error {
	return s.repo.Record(ctx, userID, s.today(), delta)
}

func (s *UsageService) Today(ctx context.Context, userID string) (domain.DailyUsage, error) {
	return s.repo.Get(ctx, userID, s.today())
}

func (s *UsageService) Range(ctx context.Context, userID string, from, to time.Time) ([]domain.DailyUsage, error) {
	return s.repo.ListRange(ctx, userID, from.UTC().Format("2006-01-02"), to.UTC().Format("2006-01-02"))
}

// Daily returns the last n days of usage, most recent first.
func (s *UsageService) Daily(ctx context.Context, userID string, days int) ([]domain.DailyUsage, error) {
	since := s.now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	return s.repo.ListSince(ctx, userID, since)
}

func (s *UsageService) Summary(ctx context.Context, userID string) (domain.UsageSummary, error) {
	return s.repo.Summary(ctx, userID)
}

func (s *UsageService) today() string {
	return s.now().UTC().Format("2006-01-02")
}
