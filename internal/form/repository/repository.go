package repository

import (
	"context"

	"event-raffle/backend/internal/form/domain"
)

// Repository reads the registration form schema. Fields are managed outside this service.
type Repository interface {
	// ListActive returns the active fields ordered by Order, then Name.
	ListActive(ctx context.Context) ([]*domain.Field, error)
}
