// internal/domain/dashboard/repository.go
package dashboard

import "context"

type Repository interface {
	NumberCounts(ctx context.Context) (*NumberCounts, error)
	ActivityCounts(ctx context.Context) (*ActivityCounts, error)
	RecentActivity(ctx context.Context, limit int) ([]ActivityItem, error)
}
