package middleware

import (
	"context"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"event-raffle/backend/internal/admin/domain"
	"event-raffle/backend/internal/platform/rbac"
	"event-raffle/backend/internal/server/respond"
)

// Authenticator resolves the admin behind a request. *rbac.Guard implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*domain.Admin, error)
}

// RequireAuth rejects requests without a valid session with 401 and stores the admin in the context otherwise.
func RequireAuth(auth Authenticator, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			a, err := auth.Authenticate(ctx, r)
			if err != nil {
				if errors.Is(err, rbac.ErrUnauthenticated) {
					log.Debug().Str("request_id", chimw.GetReqID(ctx)).Msg("unauthenticated request")
					respond.Unauthorized(w)
					return
				}
				log.Error().Err(err).Str("request_id", chimw.GetReqID(ctx)).Msg("authenticate")
				respond.Internal(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdmin(ctx, a)))
		})
	}
}

// RequireRole rejects requests whose authenticated admin does not hold role exactly. It must run after RequireAuth.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, _ := AdminFromContext(r.Context())
			switch err := rbac.RequireRole(a, role); {
			case errors.Is(err, rbac.ErrUnauthenticated):
				respond.Unauthorized(w)
			case err != nil:
				respond.Forbidden(w)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
