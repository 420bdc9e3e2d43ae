// internal/repository/postgres/dashboard_repo.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"warmup-service/internal/domain/dashboard"
)

type DashboardRepository struct {
	db  DBTX
	now func() time.Time
}

func NewDashboardRepository(db DBTX) *DashboardRepository {
	return &DashboardRepository{db: db, now: time.Now}
}

// NumberCounts counts numbers per status in a single pass.
func (r *DashboardRepository) NumberCounts(ctx context.Context) (*dashboard.NumberCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'heating' THEN 1 END),
			COUNT(CASE WHEN status = 'ready' THEN 1 END),
			COUNT(CASE WHEN COALESCE(status, 'paused') = 'paused' THEN 1 END),
			COUNT(CASE WHEN status = 'banned' THEN 1 END)
		FROM numbers
	`

	var c dashboard.NumberCounts
	err := r.db.QueryRow(ctx, query).Scan(&c.Total, &c.Heating, &c.Ready, &c.Paused, &c.Banned)
	if err != nil {
		return nil, fmt.Errorf("failed to count numbers: %w", err)
	}

	return &c, nil
}

// ActivityCounts aggregates today's sent messages, block alerts of the last 24h
// and the mean stored response rate.
func (r *DashboardRepository) ActivityCounts(ctx context.Context) (*dashboard.ActivityCounts, error) {
	query := `
		SELECT
			(SELECT COALESCE(SUM(COALESCE((metadata->>'message_count')::int, 1)), 0)
			   FROM number_interactions
			  WHERE type = 'message_sent' AND "timestamp" >= date_trunc('day', NOW())),
			(SELECT COUNT(*)
			   FROM number_interactions
			  WHERE type = 'block_alert' AND "timestamp" >= NOW() - INTERVAL '24 hours'),
			(SELECT COALESCE(AVG(response_rate), 0) FROM number_health)
	`

	var (
		c            dashboard.ActivityCounts
		responseRate sql.NullFloat64
	)
	err := r.db.QueryRow(ctx, query).Scan(&c.MessagesSentToday, &c.CriticalAlerts, &responseRate)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity: %w", err)
	}
	c.ResponseRate = float(responseRate)

	return &c, nil
}

// RecentActivity returns the latest interactions across all numbers.
func (r *DashboardRepository) RecentActivity(ctx context.Context, limit int) ([]dashboard.ActivityItem, error) {
	query := `
		SELECT i.id, i.number_id, n.number, n.display_name, i.type, i.description, i."timestamp"
		FROM number_interactions i
		JOIN numbers n ON n.id = i.number_id
		ORDER BY i."timestamp" DESC, i.id DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent activity: %w", err)
	}
	defer rows.Close()

	now := r.now()
	items := []dashboard.ActivityItem{}
	for rows.Next() {
		var (
			item                        dashboard.ActivityItem
			num, displayName, typ, desc sql.NullString
			ts                          sql.NullTime
		)
		if err := rows.Scan(&item.InteractionID, &item.NumberID, &num, &displayName, &typ, &desc, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		item.Number = str(num)
		item.DisplayName = str(displayName)
		item.Type = str(typ)
		item.Description = str(desc)
		item.Timestamp = timeOr(ts, now)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}

	return items, nil
}
