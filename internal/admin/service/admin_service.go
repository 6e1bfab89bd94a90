package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"event-raffle/backend/internal/admin/domain"
	"event-raffle/backend/internal/platform/rbac"
	"event-raffle/backend/internal/security"
	"event-raffle/backend/internal/telemetry"
	telemetrydomain "event-raffle/backend/internal/telemetry/domain"
)

// Sentinel errors for the admin service; handlers map them to HTTP statuses.
var (
	ErrAlreadyBootstrapped = errors.New("a superadmin already exists")
	ErrWeakPassword        = fmt.Errorf("password must be at least %d characters", domain.MinPasswordLength)
	ErrPasswordTooLong     = fmt.Errorf("password must be at most %d bytes", domain.MaxPasswordBytes)
	ErrSelfDeletion        = errors.New("cannot delete your own account")
	ErrNotFound            = errors.New("admin not found")
	ErrProtectedRole       = errors.New("cannot delete a superadmin")
	ErrInvalidCredentials  = errors.New("invalid username or password")
)

// AdminRepo is the credential store used by the admin service.
type AdminRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	GetSuperadmin(ctx context.Context) (*domain.Admin, error)
	List(ctx context.Context) ([]*domain.Admin, error)
	Create(ctx context.Context, a *domain.Admin) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// PasswordHasher hashes and verifies passwords. *security.Hasher implements it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AdminService manages the lifecycle of admin identities.
type AdminService struct {
	repo    AdminRepo
	hasher  PasswordHasher
	emitter telemetry.EventEmitter
	now     func() time.Time
}

// NewAdminService returns an AdminService. emitter may be nil.
func NewAdminService(repo AdminRepo, hasher PasswordHasher, emitter telemetry.EventEmitter) *AdminService {
	return &AdminService{
		repo:    repo,
		hasher:  hasher,
		emitter: emitter,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// BootstrapSuperadmin creates the one superadmin. Once a superadmin exists every call
// returns ErrAlreadyBootstrapped, whatever the arguments.
func (s *AdminService) BootstrapSuperadmin(ctx context.Context, username, password string) (*domain.Admin, error) {
	existing, err := s.repo.GetSuperadmin(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyBootstrapped
	}
	a, err := s.create(ctx, username, password, domain.RoleSuperadmin)
	if errors.Is(err, domain.ErrSuperadminExists) {
		return nil, ErrAlreadyBootstrapped
	}
	if err != nil {
		return nil, err
	}
	s.emit(ctx, telemetrydomain.EventSuperadminBoot, a, map[string]string{"admin_id": a.ID})
	return a, nil
}

// CreateSubordinate creates an admin with role RoleAdmin. Only a superadmin may call it.
func (s *AdminService) CreateSubordinate(ctx context.Context, requester *domain.Admin, username, password string) (*domain.Admin, error) {
	if err := rbac.RequireRole(requester, domain.RoleSuperadmin); err != nil {
		return nil, err
	}
	a, err := s.create(ctx, username, password, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, telemetrydomain.EventAdminCreated, requester, map[string]string{"admin_id": a.ID, "username": a.Username})
	return a, nil
}

// DeleteIdentity removes a non-superadmin identity. Checks run in order: requester role,
// self-deletion, target existence, target role.
func (s *AdminService) DeleteIdentity(ctx context.Context, requester *domain.Admin, targetID string) error {
	if err := rbac.RequireRole(requester, domain.RoleSuperadmin); err != nil {
		return err
	}
	if requester.ID == targetID {
		return ErrSelfDeletion
	}
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotFound
	}
	if target.Role == domain.RoleSuperadmin {
		return ErrProtectedRole
	}
	if err := s.repo.Delete(ctx, targetID); err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.emit(ctx, telemetrydomain.EventAdminDeleted, requester, map[string]string{"admin_id": targetID})
	return nil
}

// ListIdentities returns every admin identity, newest first. Only a superadmin may call it.
func (s *AdminService) ListIdentities(ctx context.Context, requester *domain.Admin) ([]*domain.Admin, error) {
	if err := rbac.RequireRole(requester, domain.RoleSuperadmin); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// ChangePassword rotates the requester's password hash after verifying the current password.
func (s *AdminService) ChangePassword(ctx context.Context, requester *domain.Admin, current, next string) error {
	if requester == nil {
		return rbac.ErrUnauthenticated
	}
	a, err := s.repo.GetByID(ctx, requester.ID)
	if err != nil {
		return err
	}
	if a == nil {
		return rbac.ErrUnauthenticated
	}
	if err := s.hasher.Compare(a.PasswordHash, current); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePasswordHash(ctx, a.ID, hash, s.now()); err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return rbac.ErrUnauthenticated
		}
		return err
	}
	s.emit(ctx, telemetrydomain.EventPasswordChanged, a, nil)
	return nil
}

// create validates input, hashes the password, then persists the fully built record once.
func (s *AdminService) create(ctx context.Context, username, password string, role domain.Role) (*domain.Admin, error) {
	username = domain.NormalizeUsername(username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateUsername
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	a := &domain.Admin{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AdminService) emit(ctx context.Context, typ telemetrydomain.EventType, actor *domain.Admin, attrs map[string]string) {
	ev := &telemetrydomain.Event{Type: typ, Source: "admin", Attributes: attrs}
	if actor != nil {
		ev.ActorID = actor.ID
		ev.ActorRole = string(actor.Role)
	}
	telemetry.EmitAsync(ctx, s.emitter, ev)
}

func validatePassword(password string) error {
	if len([]rune(password)) < domain.MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > domain.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
