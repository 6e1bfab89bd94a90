package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"event-raffle/backend/internal/participant/domain"
)

const participantColumns = `id, form_data, avatar, submitted_at, raffle_entry, has_won`

type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresRepository returns a participant repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create persists the participant. The participant must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Participant) error {
	form, err := json.Marshal(p.FormData)
	if err != nil {
		return fmt.Errorf("encode form data: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO participants (id, form_data, avatar, submitted_at, raffle_entry, has_won) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, form, p.Avatar, p.SubmittedAt, p.RaffleEntry, p.HasWon,
	)
	if err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

// List returns all participants, newest submission first.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Participant, error) {
	return r.query(ctx, `SELECT `+participantColumns+` FROM participants ORDER BY submitted_at DESC, id`)
}

// ListWinners returns participants marked as winners, most recent win first.
func (r *PostgresRepository) ListWinners(ctx context.Context) ([]*domain.Participant, error) {
	return r.query(ctx, `SELECT `+participantColumns+` FROM participants WHERE has_won ORDER BY won_at DESC NULLS LAST, id`)
}

// Count returns the number of participants.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM participants`)
}

// CountRaffleEntries returns the number of participants entered in the raffle.
func (r *PostgresRepository) CountRaffleEntries(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM participants WHERE raffle_entry`)
}

// DrawWinners runs the eligibility read, pick, and mark in one transaction. Eligible rows are
// locked with FOR UPDATE and the mark only touches rows still unmarked; if fewer rows change
// than were picked the transaction rolls back with domain.ErrConcurrentDraw.
func (r *PostgresRepository) DrawWinners(ctx context.Context, pick PickFunc) (winners []*domain.Participant, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin draw: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, `SELECT `+participantColumns+` FROM participants WHERE raffle_entry AND NOT has_won ORDER BY submitted_at, id FOR UPDATE`)
	if err != nil {
		return nil, fmt.Errorf("select eligible: %w", err)
	}
	eligible, err := scanParticipants(rows)
	if err != nil {
		return nil, err
	}

	winners, err = pick(eligible)
	if err != nil {
		return nil, err
	}
	if len(winners) == 0 {
		return nil, tx.Commit()
	}
	ids := make([]string, len(winners))
	for i, w := range winners {
		ids[i] = w.ID
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE participants SET has_won = true, won_at = $2 WHERE id = ANY($1) AND NOT has_won`, ids, r.now())
	if err != nil {
		return nil, fmt.Errorf("mark winners: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("mark winners: %w", err)
	}
	if int(n) != len(winners) {
		return nil, domain.ErrConcurrentDraw
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit draw: %w", err)
	}
	for _, w := range winners {
		w.HasWon = true
	}
	return winners, nil
}

func (r *PostgresRepository) query(ctx context.Context, q string) ([]*domain.Participant, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return scanParticipants(rows)
}

func (r *PostgresRepository) count(ctx context.Context, q string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}

func scanParticipants(rows *sql.Rows) ([]*domain.Participant, error) {
	defer rows.Close()
	var out []*domain.Participant
	for rows.Next() {
		var (
			p    domain.Participant
			form []byte
		)
		if err := rows.Scan(&p.ID, &form, &p.Avatar, &p.SubmittedAt, &p.RaffleEntry, &p.HasWon); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if len(form) > 0 {
			if err := json.Unmarshal(form, &p.FormData); err != nil {
				return nil, fmt.Errorf("decode form data: %w", err)
			}
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
