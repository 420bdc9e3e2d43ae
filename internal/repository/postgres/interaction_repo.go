// internal/repository/postgres/interaction_repo.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"warmup-service/internal/domain/number"
	xerrors "warmup-service/internal/pkg/errors"
)

const interactionColumns = `id, number_id, type, description, metadata, created_by, "timestamp"`

type interactionRow struct {
	ID          string
	NumberID    string
	Type        sql.NullString
	Description sql.NullString
	Metadata    []byte
	CreatedBy   sql.NullString
	Timestamp   sql.NullTime
}

func (r *interactionRow) dest() []any {
	return []any{&r.ID, &r.NumberID, &r.Type, &r.Description, &r.Metadata, &r.CreatedBy, &r.Timestamp}
}

func (r *interactionRow) toDomain(now time.Time) (number.Interaction, error) {
	i := number.Interaction{
		ID:          r.ID,
		NumberID:    r.NumberID,
		Type:        number.InteractionType(str(r.Type)),
		Description: str(r.Description),
		CreatedBy:   str(r.CreatedBy),
		Timestamp:   timeOr(r.Timestamp, now),
	}

	if len(r.Metadata) > 0 && string(r.Metadata) != "null" {
		var md number.InteractionMetadata
		if err := json.Unmarshal(r.Metadata, &md); err != nil {
			return i, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		i.Metadata = &md
	}

	return i, nil
}

// CreateInteraction appends an interaction with a server-assigned timestamp.
func (r *NumberRepository) CreateInteraction(ctx context.Context, numberID string, req *number.RegisterInteractionRequest) (*number.Interaction, error) {
	query := fmt.Sprintf(`
		INSERT INTO number_interactions (id, number_id, type, description, metadata, created_by, "timestamp")
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING %s
	`, interactionColumns)

	var metadataJSON []byte
	var err error

	if req.Metadata != nil {
		metadataJSON, err = json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	var row interactionRow
	err = r.db.QueryRow(
		ctx, query,
		newID(), numberID, string(req.Type), req.Description, metadataJSON, nullString(req.CreatedBy),
	).Scan(row.dest()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create interaction: %w", err)
	}

	i, err := row.toDomain(r.now())
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// TouchActivity stamps last_activity and updated_at with server time.
func (r *NumberRepository) TouchActivity(ctx context.Context, numberID string) error {
	result, err := r.db.Exec(ctx, `UPDATE numbers SET last_activity = NOW(), updated_at = NOW() WHERE id = $1`, numberID)
	if err != nil {
		return fmt.Errorf("failed to update last activity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ListInteractions returns interactions newest first; limit <= 0 means all.
func (r *NumberRepository) ListInteractions(ctx context.Context, numberID string, limit int) ([]number.Interaction, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM number_interactions
		WHERE number_id = $1
		ORDER BY "timestamp" DESC, id DESC
	`, interactionColumns)
	args := []interface{}{numberID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	now := r.now()
	interactions := []number.Interaction{}
	for rows.Next() {
		var row interactionRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		i, err := row.toDomain(now)
		if err != nil {
			return nil, err
		}
		interactions = append(interactions, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}

	return interactions, nil
}
