package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"event-raffle/backend/internal/form/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a form schema repository backed by the form_fields table.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListActive returns the active fields ordered by sort_order, then name.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*domain.Field, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, label, type, options, required, sort_order, active FROM form_fields WHERE active ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list form fields: %w", err)
	}
	defer rows.Close()
	var out []*domain.Field
	for rows.Next() {
		var (
			f       domain.Field
			typ     string
			options []byte
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Label, &typ, &options, &f.Required, &f.Order, &f.Active); err != nil {
			return nil, fmt.Errorf("scan form field: %w", err)
		}
		f.Type = domain.FieldType(typ)
		if len(options) > 0 {
			if err := json.Unmarshal(options, &f.Options); err != nil {
				return nil, fmt.Errorf("decode field options: %w", err)
			}
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
