// internal/repository/postgres/heating_plan_repo.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"warmup-service/internal/domain/number"
	xerrors "warmup-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// message_types crosses the wire as text so pq.StringArray always sees the array literal,
// whatever result format pgx negotiates.
const heatingPlanColumns = `id, number_id, daily_message_limit, weekly_message_limit, message_types::text,
		       interaction_requirements, created_at, updated_at`

type heatingPlanRow struct {
	ID                 string
	NumberID           string
	DailyMessageLimit  sql.NullInt64
	WeeklyMessageLimit sql.NullInt64
	MessageTypes       pq.StringArray
	Requirements       []byte
	CreatedAt          sql.NullTime
	UpdatedAt          sql.NullTime
}

func (r *heatingPlanRow) dest() []any {
	return []any{
		&r.ID, &r.NumberID, &r.DailyMessageLimit, &r.WeeklyMessageLimit, &r.MessageTypes,
		&r.Requirements, &r.CreatedAt, &r.UpdatedAt,
	}
}

func (r *heatingPlanRow) toDomain(now time.Time) (*number.HeatingPlan, error) {
	p := &number.HeatingPlan{
		ID:                 r.ID,
		NumberID:           r.NumberID,
		DailyMessageLimit:  integer(r.DailyMessageLimit),
		WeeklyMessageLimit: integer(r.WeeklyMessageLimit),
		MessageTypes:       toMessageTypes(r.MessageTypes),
		CreatedAt:          timeOr(r.CreatedAt, now),
		UpdatedAt:          timeOr(r.UpdatedAt, now),
	}

	if len(r.Requirements) > 0 && string(r.Requirements) != "null" {
		if err := json.Unmarshal(r.Requirements, &p.InteractionRequirements); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interaction requirements: %w", err)
		}
	}

	return p, nil
}

func toMessageTypes(arr pq.StringArray) []number.MessageType {
	types := make([]number.MessageType, 0, len(arr))
	for _, t := range arr {
		types = append(types, number.MessageType(t))
	}
	return types
}

func fromMessageTypes(types []number.MessageType) pq.StringArray {
	arr := make(pq.StringArray, 0, len(types))
	for _, t := range types {
		arr = append(arr, string(t))
	}
	return arr
}

// CreateHeatingPlan always appends a new plan record; older plans are kept.
func (r *NumberRepository) CreateHeatingPlan(ctx context.Context, numberID string, plan *number.HeatingPlan) (*number.HeatingPlan, error) {
	query := fmt.Sprintf(`
		INSERT INTO number_heating_plans (
			id, number_id, daily_message_limit, weekly_message_limit, message_types,
			interaction_requirements, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5::text::text[], $6, NOW(), NOW())
		RETURNING %s
	`, heatingPlanColumns)

	requirementsJSON, err := json.Marshal(plan.InteractionRequirements)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal interaction requirements: %w", err)
	}

	var row heatingPlanRow
	err = r.db.QueryRow(
		ctx, query,
		newID(), numberID, plan.DailyMessageLimit, plan.WeeklyMessageLimit,
		fromMessageTypes(plan.MessageTypes), requirementsJSON,
	).Scan(row.dest()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create heating plan: %w", err)
	}

	return row.toDomain(r.now())
}

// UpdateHeatingPlan changes one explicit plan record in place.
func (r *NumberRepository) UpdateHeatingPlan(ctx context.Context, numberID, planID string, req *number.UpdateHeatingPlanRequest) (*number.HeatingPlan, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if req.DailyMessageLimit != nil {
		sets = append(sets, fmt.Sprintf("daily_message_limit = $%d", argPos))
		args = append(args, *req.DailyMessageLimit)
		argPos++
	}
	if req.WeeklyMessageLimit != nil {
		sets = append(sets, fmt.Sprintf("weekly_message_limit = $%d", argPos))
		args = append(args, *req.WeeklyMessageLimit)
		argPos++
	}
	if req.MessageTypes != nil {
		sets = append(sets, fmt.Sprintf("message_types = $%d::text::text[]", argPos))
		args = append(args, fromMessageTypes(req.MessageTypes))
		argPos++
	}
	if req.InteractionRequirements != nil {
		requirementsJSON, err := json.Marshal(req.InteractionRequirements)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal interaction requirements: %w", err)
		}
		sets = append(sets, fmt.Sprintf("interaction_requirements = $%d", argPos))
		args = append(args, requirementsJSON)
		argPos++
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE number_heating_plans SET %s
		WHERE id = $%d AND number_id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, argPos+1, heatingPlanColumns)
	args = append(args, planID, numberID)

	var row heatingPlanRow
	err := r.db.QueryRow(ctx, query, args...).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update heating plan: %w", err)
	}

	return row.toDomain(r.now())
}

// CurrentHeatingPlan returns the most recently created plan of a number.
func (r *NumberRepository) CurrentHeatingPlan(ctx context.Context, numberID string) (*number.HeatingPlan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM number_heating_plans
		WHERE number_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, heatingPlanColumns)

	var row heatingPlanRow
	err := r.db.QueryRow(ctx, query, numberID).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get heating plan: %w", err)
	}

	return row.toDomain(r.now())
}

// FindHeatingPlan returns one plan record of a number, current or not.
func (r *NumberRepository) FindHeatingPlan(ctx context.Context, numberID, planID string) (*number.HeatingPlan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM number_heating_plans
		WHERE id = $1 AND number_id = $2
	`, heatingPlanColumns)

	var row heatingPlanRow
	err := r.db.QueryRow(ctx, query, planID, numberID).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get heating plan: %w", err)
	}

	return row.toDomain(r.now())
}
