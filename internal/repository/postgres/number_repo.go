// internal/repository/postgres/number_repo.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"warmup-service/internal/domain/number"
	xerrors "warmup-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const numberColumns = `id, number, display_name, profile_photo, company, client_id, status, operator,
		       heating_start_date, last_activity, progress_percent, created_at, updated_at`

// NumberRepository covers numbers and the child records they own
// (interactions, heating plans, health).
type NumberRepository struct {
	db  DBTX
	now func() time.Time
}

func NewNumberRepository(db DBTX) *NumberRepository {
	return &NumberRepository{db: db, now: time.Now}
}

type numberRow struct {
	ID               string
	Number           sql.NullString
	DisplayName      sql.NullString
	ProfilePhoto     sql.NullString
	Company          sql.NullString
	ClientID         sql.NullString
	Status           sql.NullString
	Operator         sql.NullString
	HeatingStartDate sql.NullTime
	LastActivity     sql.NullTime
	ProgressPercent  sql.NullInt64
	CreatedAt        sql.NullTime
	UpdatedAt        sql.NullTime
}

func (r *numberRow) dest() []any {
	return []any{
		&r.ID, &r.Number, &r.DisplayName, &r.ProfilePhoto, &r.Company, &r.ClientID, &r.Status, &r.Operator,
		&r.HeatingStartDate, &r.LastActivity, &r.ProgressPercent, &r.CreatedAt, &r.UpdatedAt,
	}
}

func (r *numberRow) toDomain(now time.Time) number.PhoneNumber {
	return number.PhoneNumber{
		ID:               r.ID,
		Number:           str(r.Number),
		DisplayName:      str(r.DisplayName),
		ProfilePhoto:     str(r.ProfilePhoto),
		Company:          str(r.Company),
		ClientID:         str(r.ClientID),
		Status:           number.Status(strOr(r.Status, string(number.DefaultStatus))),
		Operator:         str(r.Operator),
		HeatingStartDate: timeOr(r.HeatingStartDate, now),
		LastActivity:     timeOr(r.LastActivity, now),
		ProgressPercent:  integer(r.ProgressPercent),
		CreatedAt:        timeOr(r.CreatedAt, now),
		UpdatedAt:        timeOr(r.UpdatedAt, now),
	}
}

// Create inserts a paused number at 0% progress, returning the stored row.
func (r *NumberRepository) Create(ctx context.Context, req *number.CreateNumberRequest) (*number.PhoneNumber, error) {
	query := fmt.Sprintf(`
		INSERT INTO numbers (
			id, number, display_name, profile_photo, company, client_id, status, operator,
			progress_percent, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, NOW(), NOW())
		RETURNING %s
	`, numberColumns)

	var row numberRow
	err := r.db.QueryRow(
		ctx, query,
		newID(), req.Number, req.DisplayName, nullString(req.ProfilePhoto), req.Company,
		nullString(req.ClientID), string(number.StatusPaused), nullString(req.Operator),
	).Scan(row.dest()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create number: %w", err)
	}

	n := row.toDomain(r.now())
	return &n, nil
}

// FindByID retrieves a number by ID
func (r *NumberRepository) FindByID(ctx context.Context, id string) (*number.PhoneNumber, error) {
	query := fmt.Sprintf(`SELECT %s FROM numbers WHERE id = $1`, numberColumns)

	var row numberRow
	err := r.db.QueryRow(ctx, query, id).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find number: %w", err)
	}

	n := row.toDomain(r.now())
	return &n, nil
}

// Update writes only the provided fields and always stamps updated_at.
// Moving to heating records the first heating start.
func (r *NumberRepository) Update(ctx context.Context, id string, req *number.UpdateNumberRequest) (*number.PhoneNumber, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if req.DisplayName != nil {
		sets = append(sets, fmt.Sprintf("display_name = $%d", argPos))
		args = append(args, *req.DisplayName)
		argPos++
	}
	if req.ProfilePhoto != nil {
		sets = append(sets, fmt.Sprintf("profile_photo = $%d", argPos))
		args = append(args, *req.ProfilePhoto)
		argPos++
	}
	if req.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(*req.Status))
		argPos++
		if *req.Status == number.StatusHeating {
			sets = append(sets, "heating_start_date = COALESCE(heating_start_date, NOW())")
		}
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE numbers SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, numberColumns)
	args = append(args, id)

	var row numberRow
	err := r.db.QueryRow(ctx, query, args...).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update number: %w", err)
	}

	n := row.toDomain(r.now())
	return &n, nil
}

// Delete removes the number; interactions, plans and health cascade.
func (r *NumberRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM numbers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete number: %w", err)
	}
	return nil
}

// List retrieves every number, newest first
func (r *NumberRepository) List(ctx context.Context) ([]number.PhoneNumber, error) {
	query := fmt.Sprintf(`SELECT %s FROM numbers ORDER BY created_at DESC`, numberColumns)
	return r.query(ctx, query)
}

// ListByStatus retrieves numbers with the given status, newest first
func (r *NumberRepository) ListByStatus(ctx context.Context, status number.Status) ([]number.PhoneNumber, error) {
	query := fmt.Sprintf(`SELECT %s FROM numbers WHERE status = $1 ORDER BY created_at DESC`, numberColumns)
	return r.query(ctx, query, string(status))
}

// ListByCompany retrieves numbers whose company equals company exactly, newest first
func (r *NumberRepository) ListByCompany(ctx context.Context, company string) ([]number.PhoneNumber, error) {
	query := fmt.Sprintf(`SELECT %s FROM numbers WHERE company = $1 ORDER BY created_at DESC`, numberColumns)
	return r.query(ctx, query, company)
}

// ResolveClientID returns the id of the only client whose company matches exactly,
// or "" when there is none or more than one.
func (r *NumberRepository) ResolveClientID(ctx context.Context, company string) (string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM clients WHERE company = $1 LIMIT 2`, company)
	if err != nil {
		return "", fmt.Errorf("failed to resolve client: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan client id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to iterate client ids: %w", err)
	}

	if len(ids) != 1 {
		return "", nil
	}
	return ids[0], nil
}

func (r *NumberRepository) query(ctx context.Context, query string, args ...interface{}) ([]number.PhoneNumber, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list numbers: %w", err)
	}
	defer rows.Close()

	now := r.now()
	numbers := []number.PhoneNumber{}
	for rows.Next() {
		var row numberRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan number: %w", err)
		}
		numbers = append(numbers, row.toDomain(now))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate numbers: %w", err)
	}

	return numbers, nil
}
