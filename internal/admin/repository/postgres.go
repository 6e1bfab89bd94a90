package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"event-raffle/backend/internal/admin/domain"
)

const (
	pgUniqueViolation = "23505"

	constraintUsername   = "admin_users_username_key"
	constraintSuperadmin = "admin_users_single_superadmin"
)

const adminColumns = `id, username, password_hash, role, created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an admin repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the admin for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE id = $1`, id)
	return scanAdmin(row)
}

// GetByUsername returns the admin with the given username, or nil if not found.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE username = $1`, username)
	return scanAdmin(row)
}

// GetSuperadmin returns the superadmin, or nil if none has been bootstrapped.
func (r *PostgresRepository) GetSuperadmin(ctx context.Context) (*domain.Admin, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE role = 'superadmin' LIMIT 1`)
	return scanAdmin(row)
}

// List returns all admins, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Admin, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+adminColumns+` FROM admin_users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()
	var out []*domain.Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create persists the admin. The admin must have ID and PasswordHash set.
// Username uniqueness and the single-superadmin rule are enforced by table constraints.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.Admin) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_users (id, username, password_hash, role, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Username, a.PasswordHash, string(a.Role), a.CreatedAt, a.UpdatedAt,
	)
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case constraintSuperadmin:
			return domain.ErrSuperadminExists
		case constraintUsername:
			return domain.ErrDuplicateUsername
		}
		return domain.ErrDuplicateUsername
	}
	return fmt.Errorf("create admin: %w", err)
}

// UpdatePasswordHash replaces the password hash for the admin with the given id.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE admin_users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, passwordHash, at)
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	if n == 0 {
		return domain.ErrAdminNotFound
	}
	return nil
}

// Delete removes the admin with the given id unless it is the superadmin.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_users WHERE id = $1 AND role <> 'superadmin'`, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if n == 0 {
		return domain.ErrAdminNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdmin(row rowScanner) (*domain.Admin, error) {
	var (
		a    domain.Admin
		role string
	)
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	a.Role = domain.Role(role)
	return &a, nil
}
