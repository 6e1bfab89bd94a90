package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"event-raffle/backend/internal/admin/domain"
	"event-raffle/backend/internal/security"
)

// memAdminLookup is an in-memory AdminLookup for tests.
type memAdminLookup struct {
	mu     sync.Mutex
	byName map[string]*domain.Admin
	err    error
}

func (m *memAdminLookup) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.byName[username], nil
}

// countingRecorder counts outcomes.
type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingRecorder) ObserveLogin(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[outcome]++
}

func newTestAuthService(t *testing.T) (*AuthService, *memAdminLookup, *countingRecorder, *security.TokenProvider) {
	t.Helper()
	hasher := security.NewHasher(4)
	hash, err := hasher.Hash("alicepass")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	lookup := &memAdminLookup{byName: map[string]*domain.Admin{
		"alice": {ID: "a1", Username: "alice", PasswordHash: hash, Role: domain.RoleAdmin},
	}}
	rec := &countingRecorder{}
	tokens := security.NewTestTokenProvider()
	return NewAuthService(lookup, hasher, tokens, nil, rec), lookup, rec, tokens
}

func TestAuthService_Login(t *testing.T) {
	svc, _, rec, tokens := newTestAuthService(t)
	res, err := svc.Login(context.Background(), "  alice ", "alicepass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Admin.ID != "a1" {
		t.Errorf("admin id = %q", res.Admin.ID)
	}
	claims, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify issued token: %v", err)
	}
	if claims.Subject != "a1" || claims.Username != "alice" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
	if d := time.Until(res.ExpiresAt); d < 11*time.Hour || d > 12*time.Hour+time.Minute {
		t.Errorf("expires in %v, want about 12h", d)
	}
	if rec.counts[OutcomeSuccess] != 1 {
		t.Errorf("success count = %d", rec.counts[OutcomeSuccess])
	}
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	svc, _, rec, _ := newTestAuthService(t)
	tests := []struct{ name, username, password string }{
		{"wrong password", "alice", "wrongpass"},
		{"unknown user", "mallory", "alicepass"},
		{"case sensitive", "Alice", "alicepass"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), tt.username, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("want ErrInvalidCredentials, got %v", err)
			}
		})
	}
	if rec.counts[OutcomeFailure] != len(tests) {
		t.Errorf("failure count = %d, want %d", rec.counts[OutcomeFailure], len(tests))
	}
}

func TestAuthService_LoginStoreError(t *testing.T) {
	svc, lookup, rec, _ := newTestAuthService(t)
	lookup.err = errors.New("db down")
	_, err := svc.Login(context.Background(), "alice", "alicepass")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("store error should propagate, got %v", err)
	}
	if rec.counts[OutcomeError] != 1 {
		t.Errorf("error count = %d", rec.counts[OutcomeError])
	}
}
