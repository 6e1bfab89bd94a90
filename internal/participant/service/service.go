package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"event-raffle/backend/internal/participant/domain"
	"event-raffle/backend/internal/participant/repository"
	"event-raffle/backend/internal/telemetry"
	telemetrydomain "event-raffle/backend/internal/telemetry/domain"
)

// AvatarGenerator produces an avatar data URL. *avatar.Generator implements it.
type AvatarGenerator interface {
	Generate() string
}

// ParticipantService registers participants and exposes read views of the pool.
type ParticipantService struct {
	repo    repository.Repository
	avatars AvatarGenerator
	emitter telemetry.EventEmitter
	now     func() time.Time
}

// NewParticipantService returns a ParticipantService. emitter may be nil.
func NewParticipantService(repo repository.Repository, avatars AvatarGenerator, emitter telemetry.EventEmitter) *ParticipantService {
	return &ParticipantService{
		repo:    repo,
		avatars: avatars,
		emitter: emitter,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit registers a participant with a generated avatar, entered in the raffle.
func (s *ParticipantService) Submit(ctx context.Context, formData map[string]string) (*domain.Participant, error) {
	if err := domain.ValidateFormData(formData); err != nil {
		return nil, err
	}
	p := &domain.Participant{
		ID:          uuid.New().String(),
		FormData:    formData,
		Avatar:      s.avatars.Generate(),
		SubmittedAt: s.now(),
		RaffleEntry: true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	telemetry.EmitAsync(ctx, s.emitter, &telemetrydomain.Event{
		Type:       telemetrydomain.EventParticipantAdded,
		Source:     "participant",
		Attributes: map[string]string{"participant_id": p.ID},
	})
	return p, nil
}

// List returns all participants, newest first.
func (s *ParticipantService) List(ctx context.Context) ([]*domain.Participant, error) {
	return s.repo.List(ctx)
}

// Count returns the number of participants.
func (s *ParticipantService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// CountRaffleEntries returns the number of raffle entries.
func (s *ParticipantService) CountRaffleEntries(ctx context.Context) (int, error) {
	return s.repo.CountRaffleEntries(ctx)
}

// ListWinners returns participants who have won.
func (s *ParticipantService) ListWinners(ctx context.Context) ([]*domain.Participant, error) {
	return s.repo.ListWinners(ctx)
}
