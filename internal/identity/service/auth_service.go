package service

import (
	"context"
	"errors"
	"time"

	"event-raffle/backend/internal/admin/domain"
	"event-raffle/backend/internal/security"
	"event-raffle/backend/internal/telemetry"
	telemetrydomain "event-raffle/backend/internal/telemetry/domain"
)

// ErrInvalidCredentials is returned by Login for an unknown username or a wrong password.
// The two cases are indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid username or password")

// LoginResult holds the session token and the identity it was issued for.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Admin     *domain.Admin
}

// AdminLookup is the minimal credential store needed by the auth service.
type AdminLookup interface {
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
}

// PasswordVerifier verifies passwords. *security.Hasher implements it.
type PasswordVerifier interface {
	Compare(hash, password string) error
	CompareDummy(password string)
}

// TokenIssuer mints session tokens. *security.TokenProvider implements it.
type TokenIssuer interface {
	Issue(subjectID, username, role string) (string, time.Time, error)
}

// LoginRecorder records login outcomes. *metrics.Metrics implements it; nil disables recording.
type LoginRecorder interface {
	ObserveLogin(outcome string)
}

// Login outcomes reported to the LoginRecorder.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "invalid_credentials"
	OutcomeError   = "error"
)

// AuthService implements password login for admin identities.
type AuthService struct {
	admins  AdminLookup
	hasher  PasswordVerifier
	tokens  TokenIssuer
	emitter telemetry.EventEmitter
	metrics LoginRecorder
}

// NewAuthService returns an AuthService with the given dependencies. emitter and metrics may be nil.
func NewAuthService(admins AdminLookup, hasher PasswordVerifier, tokens TokenIssuer, emitter telemetry.EventEmitter, metrics LoginRecorder) *AuthService {
	return &AuthService{
		admins:  admins,
		hasher:  hasher,
		tokens:  tokens,
		emitter: emitter,
		metrics: metrics,
	}
}

// Login verifies username and password and issues a session token.
// The username is trimmed before lookup.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = domain.NormalizeUsername(username)
	if username == "" || password == "" {
		s.fail(ctx, username)
		return nil, ErrInvalidCredentials
	}
	a, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		s.observe(OutcomeError)
		return nil, err
	}
	if a == nil {
		s.hasher.CompareDummy(password)
		s.fail(ctx, username)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(a.PasswordHash, password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			s.fail(ctx, username)
			return nil, ErrInvalidCredentials
		}
		s.observe(OutcomeError)
		return nil, err
	}
	token, exp, err := s.tokens.Issue(a.ID, a.Username, string(a.Role))
	if err != nil {
		s.observe(OutcomeError)
		return nil, err
	}
	s.observe(OutcomeSuccess)
	telemetry.EmitAsync(ctx, s.emitter, &telemetrydomain.Event{
		Type:      telemetrydomain.EventLoginSucceeded,
		ActorID:   a.ID,
		ActorRole: string(a.Role),
		Source:    "auth",
	})
	return &LoginResult{Token: token, ExpiresAt: exp, Admin: a}, nil
}

func (s *AuthService) fail(ctx context.Context, username string) {
	s.observe(OutcomeFailure)
	telemetry.EmitAsync(ctx, s.emitter, &telemetrydomain.Event{
		Type:       telemetrydomain.EventLoginFailed,
		Source:     "auth",
		Attributes: map[string]string{"username": username},
	})
}

func (s *AuthService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveLogin(outcome)
	}
}
