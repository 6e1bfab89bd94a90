package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Username and password bounds for admin identities.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 8
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

var (
	// ErrDuplicateUsername is returned by the credential store when the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrSuperadminExists is returned by the credential store when a second superadmin would be stored.
	ErrSuperadminExists = errors.New("a superadmin already exists")
	// ErrAdminNotFound is returned by Delete when no deletable row matched.
	ErrAdminNotFound = errors.New("admin user not found")
	// ErrInvalidUsername is returned when a username is empty or outside the allowed length.
	ErrInvalidUsername = errors.New("username must be between 3 and 50 characters")
)

// Admin is an administrator identity. PasswordHash is a bcrypt hash and is never empty for a persisted admin.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role is the privilege level of an admin identity.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleSuperadmin || r == RoleAdmin
}

// NormalizeUsername trims surrounding whitespace. Usernames are otherwise case-sensitive.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// ValidateUsername checks the length bounds of an already normalized username.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength || n > MaxUsernameLength {
		return ErrInvalidUsername
	}
	return nil
}

// Validate validates the admin for persistence. Returns an error describing the first validation failure.
func (a *Admin) Validate() error {
	if a.ID == "" {
		return errors.New("id is required")
	}
	if err := ValidateUsername(a.Username); err != nil {
		return err
	}
	if a.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if !a.Role.Valid() {
		return errors.New("role must be superadmin or admin")
	}
	return nil
}
