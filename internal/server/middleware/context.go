package middleware

import (
	"context"

	"event-raffle/backend/internal/admin/domain"
)

type contextKey struct{ name string }

var adminKey = contextKey{"admin"}

// WithAdmin returns a context carrying the authenticated admin.
func WithAdmin(ctx context.Context, a *domain.Admin) context.Context {
	return context.WithValue(ctx, adminKey, a)
}

// AdminFromContext returns the authenticated admin and true if set; otherwise nil, false.
func AdminFromContext(ctx context.Context) (*domain.Admin, bool) {
	a, ok := ctx.Value(adminKey).(*domain.Admin)
	return a, ok && a != nil
}
