package repository

import (
	"context"

	"event-raffle/backend/internal/raffle/domain"
)

// Repository persists the singleton raffle settings.
type Repository interface {
	// Get returns the settings, or nil, nil when none have been saved.
	Get(ctx context.Context) (*domain.Settings, error)
	// GetOrCreate returns the settings, storing defaults first if none exist.
	GetOrCreate(ctx context.Context, defaults *domain.Settings) (*domain.Settings, error)
	// Save inserts or replaces the settings.
	Save(ctx context.Context, s *domain.Settings) error
}
