package repository

import (
	"context"

	"event-raffle/backend/internal/participant/domain"
)

// PickFunc selects winners from the eligible participants. It must return a subset of eligible.
// An error aborts the draw with nothing marked.
type PickFunc func(eligible []*domain.Participant) ([]*domain.Participant, error)

// Repository defines persistence for participants (the participant pool).
type Repository interface {
	Create(ctx context.Context, p *domain.Participant) error
	// List returns all participants, newest submission first.
	List(ctx context.Context) ([]*domain.Participant, error)
	Count(ctx context.Context) (int, error)
	// CountRaffleEntries counts participants entered in the raffle, won or not.
	CountRaffleEntries(ctx context.Context) (int, error)
	ListWinners(ctx context.Context) ([]*domain.Participant, error)
	// DrawWinners reads the eligible set, calls pick, and marks the picked participants as winners
	// as one unit of work. Concurrent DrawWinners calls never pick the same participant.
	DrawWinners(ctx context.Context, pick PickFunc) ([]*domain.Participant, error)
}
