package repository

import (
	"context"
	"sort"

	"event-raffle/backend/internal/form/domain"
)

// MemoryRepository serves a fixed form schema.
type MemoryRepository struct {
	fields []*domain.Field
}

// NewMemoryRepository returns a repository holding copies of fields.
func NewMemoryRepository(fields []*domain.Field) *MemoryRepository {
	r := &MemoryRepository{}
	for _, f := range fields {
		r.fields = append(r.fields, cloneField(f))
	}
	return r
}

// ListActive returns copies of the active fields.
func (r *MemoryRepository) ListActive(ctx context.Context) ([]*domain.Field, error) {
	out := make([]*domain.Field, 0, len(r.fields))
	for _, f := range r.fields {
		if f.Active {
			out = append(out, cloneField(f))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func cloneField(f *domain.Field) *domain.Field {
	c := *f
	if f.Options != nil {
		c.Options = append([]string(nil), f.Options...)
	}
	return &c
}
