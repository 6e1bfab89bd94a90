package repository

import (
	"context"
	"sync"

	"event-raffle/backend/internal/raffle/domain"
)

// MemoryRepository is an in-memory Repository.
type MemoryRepository struct {
	mu       sync.RWMutex
	settings *domain.Settings
}

// NewMemoryRepository returns a settings repository with nothing stored.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Get returns a copy of the stored settings, or nil.
func (r *MemoryRepository) Get(ctx context.Context) (*domain.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSettings(r.settings), nil
}

// GetOrCreate stores defaults when empty and returns a copy of the stored settings.
func (r *MemoryRepository) GetOrCreate(ctx context.Context, defaults *domain.Settings) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		r.settings = cloneSettings(defaults)
	}
	return cloneSettings(r.settings), nil
}

// Save replaces the stored settings, keeping the original CreatedAt.
func (r *MemoryRepository) Save(ctx context.Context, s *domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cloneSettings(s)
	if r.settings != nil {
		c.CreatedAt = r.settings.CreatedAt
	}
	r.settings = c
	return nil
}

func cloneSettings(s *domain.Settings) *domain.Settings {
	if s == nil {
		return nil
	}
	c := *s
	if s.DrawDate != nil {
		d := *s.DrawDate
		c.DrawDate = &d
	}
	return &c
}
