// internal/service/dashboard/dashboard.go
package dashboard

import (
	"context"
	"time"

	"warmup-service/internal/domain/dashboard"

	"go.uber.org/zap"
)

// RecentActivityLimit is how many interactions the summary lists.
const RecentActivityLimit = 10

type DashboardService struct {
	repo   dashboard.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewDashboardService(repo dashboard.Repository, logger *zap.Logger) *DashboardService {
	return &DashboardService{repo: repo, logger: logger, now: time.Now}
}

// Summary assembles the dashboard cards. A failing part is logged and left zeroed
// so the rest of the summary is still served.
func (s *DashboardService) Summary(ctx context.Context) *dashboard.Summary {
	summary := &dashboard.Summary{
		RecentActivity: []dashboard.ActivityItem{},
		GeneratedAt:    s.now(),
	}

	if counts, err := s.repo.NumberCounts(ctx); err != nil {
		s.logger.Warn("dashboard: number counts unavailable", zap.Error(err))
	} else {
		summary.NumberCounts = *counts
	}

	if activity, err := s.repo.ActivityCounts(ctx); err != nil {
		s.logger.Warn("dashboard: activity counts unavailable", zap.Error(err))
	} else {
		summary.ActivityCounts = *activity
	}

	if recent, err := s.repo.RecentActivity(ctx, RecentActivityLimit); err != nil {
		s.logger.Warn("dashboard: recent activity unavailable", zap.Error(err))
	} else if recent != nil {
		summary.RecentActivity = recent
	}

	return summary
}
