package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"event-raffle/backend/internal/admin/domain"
)

// MemoryRepository is an in-memory Repository. Uniqueness rules are checked and applied under one lock,
// so concurrent Create calls observe the same guarantees as the Postgres constraints.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.Admin
	byUsername map[string]string
}

// NewMemoryRepository returns an empty in-memory admin repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*domain.Admin),
		byUsername: make(map[string]string),
	}
}

// GetByID returns a copy of the admin for id, or nil if not found.
func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAdmin(r.byID[id]), nil
}

// GetByUsername returns a copy of the admin with username, or nil if not found.
func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	return cloneAdmin(r.byID[id]), nil
}

// GetSuperadmin returns a copy of the superadmin, or nil if none exists.
func (r *MemoryRepository) GetSuperadmin(ctx context.Context) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAdmin(r.superadminLocked()), nil
}

// List returns copies of all admins, newest first.
func (r *MemoryRepository) List(ctx context.Context) ([]*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Admin, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, cloneAdmin(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Create stores a copy of a.
func (r *MemoryRepository) Create(ctx context.Context, a *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byUsername[a.Username]; taken {
		return domain.ErrDuplicateUsername
	}
	if a.Role == domain.RoleSuperadmin && r.superadminLocked() != nil {
		return domain.ErrSuperadminExists
	}
	r.byID[a.ID] = cloneAdmin(a)
	r.byUsername[a.Username] = a.ID
	return nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *MemoryRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = at
	return nil
}

// Delete removes a non-superadmin identity.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok || a.Role == domain.RoleSuperadmin {
		return domain.ErrAdminNotFound
	}
	delete(r.byID, id)
	delete(r.byUsername, a.Username)
	return nil
}

func (r *MemoryRepository) superadminLocked() *domain.Admin {
	for _, a := range r.byID {
		if a.Role == domain.RoleSuperadmin {
			return a
		}
	}
	return nil
}

func cloneAdmin(a *domain.Admin) *domain.Admin {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
