package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"event-raffle/backend/internal/raffle/domain"
)

// singletonID is the primary key of the only settings row.
const singletonID = 1

const settingsColumns = `prize, description, is_active, draw_date, number_of_winners, created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a settings repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the settings row, or nil if it has not been created.
func (r *PostgresRepository) Get(ctx context.Context) (*domain.Settings, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM raffle_settings WHERE id = $1`, singletonID)
	return scanSettings(row)
}

// GetOrCreate inserts defaults if no row exists and returns the stored row.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, defaults *domain.Settings) (*domain.Settings, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO raffle_settings (id, `+settingsColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING`,
		singletonID, defaults.Prize, defaults.Description, defaults.IsActive, defaults.DrawDate,
		defaults.NumberOfWinners, defaults.CreatedAt, defaults.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create raffle settings: %w", err)
	}
	return r.Get(ctx)
}

// Save upserts the settings row. CreatedAt is kept from the first insert.
func (r *PostgresRepository) Save(ctx context.Context, s *domain.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO raffle_settings (id, `+settingsColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET prize = EXCLUDED.prize, description = EXCLUDED.description,
			is_active = EXCLUDED.is_active, draw_date = EXCLUDED.draw_date,
			number_of_winners = EXCLUDED.number_of_winners, updated_at = EXCLUDED.updated_at`,
		singletonID, s.Prize, s.Description, s.IsActive, s.DrawDate, s.NumberOfWinners, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save raffle settings: %w", err)
	}
	return nil
}

func scanSettings(row *sql.Row) (*domain.Settings, error) {
	var (
		s        domain.Settings
		drawDate sql.NullTime
	)
	err := row.Scan(&s.Prize, &s.Description, &s.IsActive, &drawDate, &s.NumberOfWinners, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan raffle settings: %w", err)
	}
	if drawDate.Valid {
		t := drawDate.Time
		s.DrawDate = &t
	}
	return &s, nil
}
