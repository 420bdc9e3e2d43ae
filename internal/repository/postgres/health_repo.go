// internal/repository/postgres/health_repo.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"warmup-service/internal/domain/number"
	xerrors "warmup-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const healthColumns = `number_id, response_rate, block_rate, average_messages_per_day, format_diversity, last_calculated`

type healthRow struct {
	NumberID              string
	ResponseRate          sql.NullFloat64
	BlockRate             sql.NullFloat64
	AverageMessagesPerDay sql.NullFloat64
	FormatDiversity       []byte
	LastCalculated        sql.NullTime
}

func (r *healthRow) dest() []any {
	return []any{&r.NumberID, &r.ResponseRate, &r.BlockRate, &r.AverageMessagesPerDay, &r.FormatDiversity, &r.LastCalculated}
}

func (r *healthRow) toDomain(now time.Time) (*number.NumberHealth, error) {
	h := &number.NumberHealth{
		NumberID:              r.NumberID,
		ResponseRate:          float(r.ResponseRate),
		BlockRate:             float(r.BlockRate),
		AverageMessagesPerDay: float(r.AverageMessagesPerDay),
		LastCalculated:        timeOr(r.LastCalculated, now),
	}

	if len(r.FormatDiversity) > 0 && string(r.FormatDiversity) != "null" {
		if err := json.Unmarshal(r.FormatDiversity, &h.FormatDiversity); err != nil {
			return nil, fmt.Errorf("failed to unmarshal format diversity: %w", err)
		}
	}

	return h, nil
}

// SaveHealth upserts the single current health record. Omitted fields keep their
// stored value.
func (r *NumberRepository) SaveHealth(ctx context.Context, numberID string, req *number.SaveHealthRequest) (*number.NumberHealth, error) {
	query := fmt.Sprintf(`
		INSERT INTO number_health (
			number_id, response_rate, block_rate, average_messages_per_day, format_diversity, last_calculated
		) VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (number_id) DO UPDATE SET
			response_rate = COALESCE(EXCLUDED.response_rate, number_health.response_rate),
			block_rate = COALESCE(EXCLUDED.block_rate, number_health.block_rate),
			average_messages_per_day = COALESCE(EXCLUDED.average_messages_per_day, number_health.average_messages_per_day),
			format_diversity = COALESCE(EXCLUDED.format_diversity, number_health.format_diversity),
			last_calculated = NOW()
		RETURNING %s
	`, healthColumns)

	var diversityJSON []byte
	if req.FormatDiversity != nil {
		var err error
		diversityJSON, err = json.Marshal(req.FormatDiversity)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal format diversity: %w", err)
		}
	}

	var row healthRow
	err := r.db.QueryRow(
		ctx, query,
		numberID, req.ResponseRate, req.BlockRate, req.AverageMessagesPerDay, diversityJSON,
	).Scan(row.dest()...)
	if err != nil {
		return nil, fmt.Errorf("failed to save health: %w", err)
	}

	return row.toDomain(r.now())
}

// GetHealth reads the current health record of a number.
func (r *NumberRepository) GetHealth(ctx context.Context, numberID string) (*number.NumberHealth, error) {
	query := fmt.Sprintf(`SELECT %s FROM number_health WHERE number_id = $1`, healthColumns)

	var row healthRow
	err := r.db.QueryRow(ctx, query, numberID).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get health: %w", err)
	}

	return row.toDomain(r.now())
}
