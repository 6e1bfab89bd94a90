package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	admindomain "event-raffle/backend/internal/admin/domain"
	"event-raffle/backend/internal/raffle/domain"
	"event-raffle/backend/internal/telemetry"
	telemetrydomain "event-raffle/backend/internal/telemetry/domain"
)

// ErrInvalidSettings wraps validation failures of an UpdateSettingsRequest.
var ErrInvalidSettings = errors.New("invalid raffle settings")

// SettingsRepo persists the raffle configuration.
type SettingsRepo interface {
	Get(ctx context.Context) (*domain.Settings, error)
	GetOrCreate(ctx context.Context, defaults *domain.Settings) (*domain.Settings, error)
	Save(ctx context.Context, s *domain.Settings) error
}

// OptionalTime is a JSON time field that tells an absent value apart from an explicit null.
// Set is true when the field was present; Value is nil for null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// SetTime returns an OptionalTime holding t.
func SetTime(t time.Time) OptionalTime {
	return OptionalTime{Set: true, Value: &t}
}

// ClearTime returns an OptionalTime that clears the field.
func ClearTime() OptionalTime {
	return OptionalTime{Set: true}
}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

// UpdateSettingsRequest changes the fields that are non-nil. An explicit null drawDate clears it.
type UpdateSettingsRequest struct {
	Prize           *string      `json:"prize"`
	Description     *string      `json:"description"`
	IsActive        *bool        `json:"isActive"`
	DrawDate        OptionalTime `json:"drawDate"`
	NumberOfWinners *int         `json:"numberOfWinners"`
}

// Validate checks the bounds of the present fields.
func (r UpdateSettingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Prize, validation.NilOrNotEmpty, validation.RuneLength(1, domain.MaxPrizeLength)),
		validation.Field(&r.Description, validation.RuneLength(0, domain.MaxDescriptionLength)),
		// Min skips zero values, so a present 0 is caught by NilOrNotEmpty.
		validation.Field(&r.NumberOfWinners, validation.NilOrNotEmpty.Error("must be no less than 1"), validation.Min(1)),
	)
}

// SettingsService reads and updates the raffle configuration.
type SettingsService struct {
	repo    SettingsRepo
	emitter telemetry.EventEmitter
	now     func() time.Time
}

// NewSettingsService returns a SettingsService. emitter may be nil.
func NewSettingsService(repo SettingsRepo, emitter telemetry.EventEmitter) *SettingsService {
	return &SettingsService{
		repo:    repo,
		emitter: emitter,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the configuration, creating the defaults on first access.
func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	return s.repo.GetOrCreate(ctx, domain.NewDefaultSettings(s.now()))
}

// Peek returns the configuration without creating it. It returns nil, nil when none exists.
func (s *SettingsService) Peek(ctx context.Context) (*domain.Settings, error) {
	return s.repo.Get(ctx)
}

// Update applies req to the configuration, creating the defaults first if needed.
func (s *SettingsService) Update(ctx context.Context, actor *admindomain.Admin, req UpdateSettingsRequest) (*domain.Settings, error) {
	if req.Prize != nil {
		trimmed := strings.TrimSpace(*req.Prize)
		req.Prize = &trimmed
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	now := s.now()
	cur, err := s.repo.GetOrCreate(ctx, domain.NewDefaultSettings(now))
	if err != nil {
		return nil, err
	}
	if req.Prize != nil {
		cur.Prize = *req.Prize
	}
	if req.Description != nil {
		cur.Description = *req.Description
	}
	if req.IsActive != nil {
		cur.IsActive = *req.IsActive
	}
	if req.DrawDate.Set {
		cur.DrawDate = nil
		if req.DrawDate.Value != nil {
			d := req.DrawDate.Value.UTC()
			cur.DrawDate = &d
		}
	}
	if req.NumberOfWinners != nil {
		cur.NumberOfWinners = *req.NumberOfWinners
	}
	cur.UpdatedAt = now
	if err := s.repo.Save(ctx, cur); err != nil {
		return nil, err
	}
	ev := &telemetrydomain.Event{Type: telemetrydomain.EventSettingsUpdated, Source: "raffle"}
	if actor != nil {
		ev.ActorID = actor.ID
		ev.ActorRole = string(actor.Role)
	}
	telemetry.EmitAsync(ctx, s.emitter, ev)
	return cur, nil
}
