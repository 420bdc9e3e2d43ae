// internal/domain/dashboard/entity.go
package dashboard

import "time"

type NumberCounts struct {
	Total   int64 `json:"total_numbers"`
	Heating int64 `json:"heating_numbers"`
	Ready   int64 `json:"ready_numbers"`
	Paused  int64 `json:"paused_numbers"`
	Banned  int64 `json:"banned_numbers"`
}

type ActivityCounts struct {
	MessagesSentToday int64   `json:"messages_sent_today"`
	CriticalAlerts    int64   `json:"critical_alerts"`
	ResponseRate      float64 `json:"response_rate"`
}

type ActivityItem struct {
	InteractionID string    `json:"interaction_id"`
	NumberID      string    `json:"number_id"`
	Number        string    `json:"number"`
	DisplayName   string    `json:"display_name"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Timestamp     time.Time `json:"timestamp"`
}

type Summary struct {
	NumberCounts
	ActivityCounts
	RecentActivity []ActivityItem `json:"recent_activity"`
	GeneratedAt    time.Time      `json:"generated_at"`
}
