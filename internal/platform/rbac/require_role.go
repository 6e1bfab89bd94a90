package rbac

import "event-raffle/backend/internal/admin/domain"

// RequireRole returns nil if identity holds exactly role, ErrUnauthenticated for a nil identity,
// and ErrForbidden otherwise. There is no role hierarchy.
func RequireRole(identity *domain.Admin, role domain.Role) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if identity.Role != role {
		return ErrForbidden
	}
	return nil
}
