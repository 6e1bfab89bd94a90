package rbac

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"event-raffle/backend/internal/admin/domain"
	"event-raffle/backend/internal/security"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

const bearerPrefix = "bearer "

var (
	// ErrUnauthenticated is returned when no valid session token identifies a live admin.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the authenticated admin lacks the required role.
	ErrForbidden = errors.New("access denied")
)

// TokenVerifier verifies session tokens. *security.TokenProvider implements it.
type TokenVerifier interface {
	Verify(token string) (*security.SessionClaims, error)
}

// AdminGetter loads an admin by id. Returns nil, nil when the admin does not exist.
type AdminGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
}

// Guard authenticates requests using a session token and the credential store.
type Guard struct {
	tokens TokenVerifier
	admins AdminGetter
}

// NewGuard returns a Guard that verifies tokens with tokens and re-loads identities from admins.
func NewGuard(tokens TokenVerifier, admins AdminGetter) *Guard {
	return &Guard{tokens: tokens, admins: admins}
}

// Authenticate resolves the admin behind the request's session token. The cookie is
// checked first, then the Authorization Bearer header. The identity is re-loaded by id,
// so tokens for deleted admins are rejected with ErrUnauthenticated.
func (g *Guard) Authenticate(ctx context.Context, r *http.Request) (*domain.Admin, error) {
	token := ExtractToken(r)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	a, err := g.admins.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if a == nil {
		return nil, ErrUnauthenticated
	}
	return a, nil
}

// ExtractToken returns the session token from the cookie, else from the Bearer header, else "".
func ExtractToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return extractBearer(r.Header.Get("Authorization"))
}

// extractBearer returns the Bearer token from an Authorization header value, or "" if missing or malformed.
func extractBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
