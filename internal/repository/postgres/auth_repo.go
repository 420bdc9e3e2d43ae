// internal/repository/postgres/auth_repo.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"warmup-service/internal/domain/auth"
	xerrors "warmup-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `uid, email, name, role, created_at, updated_at`

type AuthRepository struct {
	db  DBTX
	now func() time.Time
}

func NewAuthRepository(db DBTX) *AuthRepository {
	return &AuthRepository{db: db, now: time.Now}
}

type userRow struct {
	UID       string
	Email     sql.NullString
	Name      sql.NullString
	Role      sql.NullString
	CreatedAt sql.NullTime
	UpdatedAt sql.NullTime
}

func (r *userRow) dest() []any {
	return []any{&r.UID, &r.Email, &r.Name, &r.Role, &r.CreatedAt, &r.UpdatedAt}
}

func (r *userRow) toDomain(now time.Time) *auth.User {
	return &auth.User{
		UID:       r.UID,
		Email:     str(r.Email),
		Name:      str(r.Name),
		Role:      strOr(r.Role, auth.RoleUser),
		CreatedAt: timeOr(r.CreatedAt, now),
		UpdatedAt: timeOr(r.UpdatedAt, now),
	}
}

// ========== Identity Methods ==========

// CreateAccount writes the credential and the profile in one transaction.
// A duplicate email surfaces as auth/email-already-in-use.
func (r *AuthRepository) CreateAccount(ctx context.Context, cred *auth.Credential, user *auth.User) (*auth.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO auth_credentials (uid, email, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
	`, cred.UID, cred.Email, cred.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, xerrors.NewAuth(xerrors.CodeEmailInUse, err)
		}
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO users (uid, email, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s
	`, userColumns)

	var row userRow
	err = tx.QueryRow(ctx, query, user.UID, user.Email, user.Name, user.Role).Scan(row.dest()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit account: %w", err)
	}

	return row.toDomain(r.now()), nil
}

// FindCredentialByEmail retrieves the login credential for an email
func (r *AuthRepository) FindCredentialByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	query := `
		SELECT uid, email, password_hash, created_at
		FROM auth_credentials
		WHERE LOWER(email) = LOWER($1)
	`

	var (
		cred      auth.Credential
		createdAt sql.NullTime
	)
	err := r.db.QueryRow(ctx, query, email).Scan(&cred.UID, &cred.Email, &cred.PasswordHash, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	cred.CreatedAt = timeOr(createdAt, r.now())

	return &cred, nil
}

// ExistsByEmail checks if a credential with the email exists
func (r *AuthRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM auth_credentials WHERE LOWER(email) = LOWER($1))`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	return exists, nil
}

// ========== Profile Methods ==========

// FindUser reads the profile; a missing role defaults to user.
func (r *AuthRepository) FindUser(ctx context.Context, uid string) (*auth.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE uid = $1`, userColumns)

	var row userRow
	err := r.db.QueryRow(ctx, query, uid).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return row.toDomain(r.now()), nil
}

// TouchUser stamps updated_at on login and returns the fresh profile.
func (r *AuthRepository) TouchUser(ctx context.Context, uid string) (*auth.User, error) {
	query := fmt.Sprintf(`UPDATE users SET updated_at = NOW() WHERE uid = $1 RETURNING %s`, userColumns)

	var row userRow
	err := r.db.QueryRow(ctx, query, uid).Scan(row.dest()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return row.toDomain(r.now()), nil
}
