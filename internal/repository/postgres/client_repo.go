// internal/repository/postgres/client_repo.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"warmup-service/internal/domain/client"
	xerrors "warmup-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const clientColumns = `id, name, email, phone, company, document, status, plan,
		       total_numbers, active_numbers, created_by, created_at, updated_at`

type ClientRepository struct {
	db  DBTX
	now func() time.Time
}

func NewClientRepository(db DBTX) *ClientRepository {
	return &ClientRepository{db: db, now: time.Now}
}

type clientRow struct {
	ID            string
	Name          sql.NullString
	Email         sql.NullString
	Phone         sql.NullString
	Company       sql.NullString
	Document      sql.NullString
	Status        sql.NullString
	Plan          sql.NullString
	TotalNumbers  sql.NullInt64
	ActiveNumbers sql.NullInt64
	CreatedBy     sql.NullString
	CreatedAt     sql.NullTime
	UpdatedAt     sql.NullTime
}

func (r *clientRow) dest() []any {
	return []any{
		&r.ID, &r.Name, &r.Email, &r.Phone, &r.Company, &r.Document, &r.Status, &r.Plan,
		&r.TotalNumbers, &r.ActiveNumbers, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
	}
}

func (r *clientRow) toDomain(now time.Time) client.Client {
	return client.Client{
		ID:            r.ID,
		Name:          str(r.Name),
		Email:         str(r.Email),
		Phone:         str(r.Phone),
		Company:       str(r.Company),
		Document:      str(r.Document),
		Status:        client.Status(strOr(r.Status, string(client.DefaultStatus))),
		Plan:          str(r.Plan),
		TotalNumbers:  integer(r.TotalNumbers),
		ActiveNumbers: integer(r.ActiveNumbers),
		CreatedBy:     str(r.CreatedBy),
		CreatedAt:     timeOr(r.CreatedAt, now),
		UpdatedAt:     timeOr(r.UpdatedAt, now),
	}
}

// Create inserts a client with status active and zeroed counters, returning the stored row.
func (r *ClientRepository) Create(ctx context.Context, req *client.CreateClientRequest) (*client.Client, error) {
	query := fmt.Sprintf(`
		INSERT INTO clients (
			id, name, email, phone, company, document, status, plan,
			total_numbers, active_numbers, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9, NOW(), NOW())
		RETURNING %s
	`, clientColumns)

	var row clientRow
	err := r.db.QueryRow(
		ctx, query,
		newID(), req.Name, req.Email, nullString(req.Phone), req.Company,
		nullString(req.Document), string(client.StatusActive), nullString(req.Plan), nullString(req.CreatedBy),
	).Scan(row.dest()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	c := row.toDomain(r.now())
	return &c, nil
}

// FindByID retrieves a client by ID
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*client.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE id = $1`, clientColumns)

	var row clientRow
	err := r.db.QueryRow(ctx, query, id).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	c := row.toDomain(r.now())
	return &c, nil
}

// Update writes only the provided fields and always stamps updated_at.
func (r *ClientRepository) Update(ctx context.Context, id string, req *client.UpdateClientRequest) (*client.Client, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.Phone != nil {
		set("phone", *req.Phone)
	}
	if req.Company != nil {
		set("company", *req.Company)
	}
	if req.Document != nil {
		set("document", *req.Document)
	}
	if req.Status != nil {
		set("status", string(*req.Status))
	}
	if req.Plan != nil {
		set("plan", *req.Plan)
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE clients SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, clientColumns)
	args = append(args, id)

	var row clientRow
	err := r.db.QueryRow(ctx, query, args...).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	c := row.toDomain(r.now())
	return &c, nil
}

// Delete removes the client row unconditionally. Numbers are left in place.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

// List retrieves every client, newest first
func (r *ClientRepository) List(ctx context.Context) ([]client.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients ORDER BY created_at DESC`, clientColumns)
	return r.query(ctx, query)
}

// ListByStatus retrieves clients with the given status, newest first
func (r *ClientRepository) ListByStatus(ctx context.Context, status client.Status) ([]client.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE status = $1 ORDER BY created_at DESC`, clientColumns)
	return r.query(ctx, query, string(status))
}

// SearchByCompany is a case-sensitive prefix match on company.
func (r *ClientRepository) SearchByCompany(ctx context.Context, prefix string) ([]client.Client, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM clients
		WHERE starts_with(company, $1)
		ORDER BY company ASC, created_at DESC
	`, clientColumns)
	return r.query(ctx, query, prefix)
}

func (r *ClientRepository) query(ctx context.Context, query string, args ...interface{}) ([]client.Client, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	now := r.now()
	clients := []client.Client{}
	for rows.Next() {
		var row clientRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, row.toDomain(now))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}

	return clients, nil
}

// ========== Detail enrichment ==========

// ListNumbers returns the numbers linked to c, either by client_id or, for numbers
// created without one, by exact company match.
func (r *ClientRepository) ListNumbers(ctx context.Context, c *client.Client) ([]client.NumberSummary, error) {
	query := `
		SELECT id, number, display_name, status
		FROM numbers
		WHERE client_id = $1 OR (client_id IS NULL AND company = $2)
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, c.ID, c.Company)
	if err != nil {
		return nil, fmt.Errorf("failed to list client numbers: %w", err)
	}
	defer rows.Close()

	numbers := []client.NumberSummary{}
	for rows.Next() {
		var (
			id                          string
			num, displayName, statusCol sql.NullString
		)
		if err := rows.Scan(&id, &num, &displayName, &statusCol); err != nil {
			return nil, fmt.Errorf("failed to scan client number: %w", err)
		}
		numbers = append(numbers, client.NumberSummary{
			ID:          id,
			Number:      str(num),
			DisplayName: str(displayName),
			Status:      strOr(statusCol, "paused"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate client numbers: %w", err)
	}

	return numbers, nil
}

// GetBilling reads the current billing record; plan falls back to the client's plan.
func (r *ClientRepository) GetBilling(ctx context.Context, c *client.Client) (*client.Billing, error) {
	query := `
		SELECT plan, monthly_value, next_billing, payment_method, updated_at
		FROM client_billing
		WHERE client_id = $1
	`

	var (
		plan, paymentMethod sql.NullString
		monthlyValue        sql.NullFloat64
		nextBilling         sql.NullTime
		updatedAt           sql.NullTime
	)
	err := r.db.QueryRow(ctx, query, c.ID).Scan(&plan, &monthlyValue, &nextBilling, &paymentMethod, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get billing: %w", err)
	}

	return toBilling(plan, monthlyValue, nextBilling, paymentMethod, updatedAt, c.Plan, r.now()), nil
}

// SetBilling upserts the current billing record of a client.
func (r *ClientRepository) SetBilling(ctx context.Context, clientID string, req *client.SetBillingRequest) (*client.Billing, error) {
	query := `
		INSERT INTO client_billing (client_id, plan, monthly_value, next_billing, payment_method, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (client_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			monthly_value = EXCLUDED.monthly_value,
			next_billing = EXCLUDED.next_billing,
			payment_method = EXCLUDED.payment_method,
			updated_at = NOW()
		RETURNING plan, monthly_value, next_billing, payment_method, updated_at
	`

	var nb sql.NullTime
	if req.NextBilling != nil {
		nb = sql.NullTime{Time: *req.NextBilling, Valid: true}
	}

	var (
		plan, paymentMethod sql.NullString
		monthlyValue        sql.NullFloat64
		nextBilling         sql.NullTime
		updatedAt           sql.NullTime
	)
	err := r.db.QueryRow(
		ctx, query,
		clientID, nullString(req.Plan), req.MonthlyValue, nb, nullString(req.PaymentMethod),
	).Scan(&plan, &monthlyValue, &nextBilling, &paymentMethod, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to set billing: %w", err)
	}

	return toBilling(plan, monthlyValue, nextBilling, paymentMethod, updatedAt, "", r.now()), nil
}

func toBilling(plan sql.NullString, monthlyValue sql.NullFloat64, nextBilling sql.NullTime,
	paymentMethod sql.NullString, updatedAt sql.NullTime, fallbackPlan string, now time.Time) *client.Billing {
	b := &client.Billing{
		Plan:          strOr(plan, fallbackPlan),
		MonthlyValue:  float(monthlyValue),
		PaymentMethod: str(paymentMethod),
		UpdatedAt:     timeOr(updatedAt, now),
	}
	if nextBilling.Valid {
		t := nextBilling.Time
		b.NextBilling = &t
	}
	return b
}
