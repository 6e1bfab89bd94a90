package repository

import (
	"context"
	"time"

	"event-raffle/backend/internal/admin/domain"
)

// Repository defines persistence for admin identities (the credential store).
// Getters return nil, nil when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	GetSuperadmin(ctx context.Context) (*domain.Admin, error)
	List(ctx context.Context) ([]*domain.Admin, error)
	// Create returns domain.ErrDuplicateUsername or domain.ErrSuperadminExists when a uniqueness rule is violated.
	Create(ctx context.Context, a *domain.Admin) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string, at time.Time) error
	// Delete removes a non-superadmin identity. Returns domain.ErrAdminNotFound if nothing was deleted.
	Delete(ctx context.Context, id string) error
}
