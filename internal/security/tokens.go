package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenTTL is the lifetime of an issued session token.
const SessionTokenTTL = 12 * time.Hour

var (
	// ErrInvalidToken is returned when a token is malformed, expired, or signed with a different secret or algorithm.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSecret is returned by NewTokenProvider when no signing secret is configured.
	ErrMissingSecret = errors.New("token signing secret is not configured")
)

// SessionClaims holds JWT claims for an admin session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// TokenProvider issues and verifies HS256 session tokens with a process-wide shared secret.
// Verification is stateless: it never consults the credential store.
type TokenProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption configures a TokenProvider.
type TokenOption func(*TokenProvider)

// WithClock overrides the clock used for iat/exp on issue and expiry checks on verify.
func WithClock(now func() time.Time) TokenOption {
	return func(p *TokenProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewTokenProvider returns a TokenProvider signing with secret. A non-positive ttl selects SessionTokenTTL.
func NewTokenProvider(secret string, ttl time.Duration, opts ...TokenOption) (*TokenProvider, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = SessionTokenTTL
	}
	p := &TokenProvider{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// TTL returns the lifetime of issued tokens.
func (p *TokenProvider) TTL() time.Duration { return p.ttl }

// Issue mints a signed session token for the given identity.
// Returns the token string and its expiration time.
func (p *TokenProvider) Issue(subjectID, username, role string) (token string, expiresAt time.Time, err error) {
	now := p.now().UTC()
	expiresAt = now.Add(p.ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: username,
		Role:     role,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks the signature, algorithm, and expiry of tokenString and returns its claims.
// Every failure maps to ErrInvalidToken.
func (p *TokenProvider) Verify(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
