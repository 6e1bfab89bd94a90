package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"event-raffle/backend/internal/admin/domain"
	"event-raffle/backend/internal/security"
)

// mockAdminGetter implements AdminGetter for tests.
type mockAdminGetter struct {
	admins map[string]*domain.Admin
	err    error
}

func (m *mockAdminGetter) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.admins[id], nil
}

func newGuard(t *testing.T, admins ...*domain.Admin) (*Guard, *security.TokenProvider, *mockAdminGetter) {
	t.Helper()
	tokens := security.NewTestTokenProvider()
	getter := &mockAdminGetter{admins: make(map[string]*domain.Admin)}
	for _, a := range admins {
		getter.admins[a.ID] = a
	}
	return NewGuard(tokens, getter), tokens, getter
}

func issue(t *testing.T, p *security.TokenProvider, a *domain.Admin) string {
	t.Helper()
	tok, _, err := p.Issue(a.ID, a.Username, string(a.Role))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func TestGuard_Authenticate_Cookie(t *testing.T) {
	alice := &domain.Admin{ID: "a1", Username: "alice", Role: domain.RoleAdmin}
	g, tokens, _ := newGuard(t, alice)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: issue(t, tokens, alice)})

	got, err := g.Authenticate(context.Background(), r)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != "a1" || got.Role != domain.RoleAdmin {
		t.Errorf("got %+v", got)
	}
}

func TestGuard_Authenticate_Bearer(t *testing.T) {
	alice := &domain.Admin{ID: "a1", Username: "alice", Role: domain.RoleAdmin}
	g, tokens, _ := newGuard(t, alice)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+issue(t, tokens, alice))

	got, err := g.Authenticate(context.Background(), r)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != "a1" {
		t.Errorf("ID = %q, want a1", got.ID)
	}
}

func TestGuard_Authenticate_CookieWinsOverBearer(t *testing.T) {
	alice := &domain.Admin{ID: "a1", Username: "alice", Role: domain.RoleAdmin}
	bob := &domain.Admin{ID: "b1", Username: "bob", Role: domain.RoleSuperadmin}
	g, tokens, _ := newGuard(t, alice, bob)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: issue(t, tokens, alice)})
	r.Header.Set("Authorization", "Bearer "+issue(t, tokens, bob))

	got, err := g.Authenticate(context.Background(), r)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != "a1" {
		t.Errorf("cookie should win: got %q", got.ID)
	}
}

func TestGuard_Authenticate_MissingToken(t *testing.T) {
	g, _, _ := newGuard(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := g.Authenticate(context.Background(), r); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
}

func TestGuard_Authenticate_InvalidToken(t *testing.T) {
	g, _, _ := newGuard(t)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	if _, err := g.Authenticate(context.Background(), r); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
}

func TestGuard_Authenticate_ExpiredToken(t *testing.T) {
	alice := &domain.Admin{ID: "a1", Username: "alice", Role: domain.RoleAdmin}
	old := security.NewTestTokenProvider(security.WithClock(security.FixedClock(time.Now().Add(-13 * time.Hour))))
	g, _, _ := newGuard(t, alice)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+issue(t, old, alice))
	if _, err := g.Authenticate(context.Background(), r); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
}

func TestGuard_Authenticate_DeletedIdentity(t *testing.T) {
	alice := &domain.Admin{ID: "a1", Username: "alice", Role: domain.RoleAdmin}
	g, tokens, getter := newGuard(t, alice)
	tok := issue(t, tokens, alice)
	delete(getter.admins, "a1")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	if _, err := g.Authenticate(context.Background(), r); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("deleted identity: want ErrUnauthenticated, got %v", err)
	}
}

func TestGuard_Authenticate_StoreError(t *testing.T) {
	alice := &domain.Admin{ID: "a1", Username: "alice", Role: domain.RoleAdmin}
	g, tokens, getter := newGuard(t, alice)
	getter.err = errors.New("db down")
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+issue(t, tokens, alice))
	_, err := g.Authenticate(context.Background(), r)
	if err == nil || errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("store error should surface as internal, got %v", err)
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc ", "abc"},
		{"BEARER  abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extractBearer(tt.in); got != tt.want {
			t.Errorf("extractBearer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
