package security

import "time"

// testSecret signs tokens in unit tests only.
const testSecret = "test-secret-do-not-use-in-production"

// NewTestTokenProvider returns a TokenProvider using a fixed test secret and the default TTL.
// For unit tests only. Callers must not use in production.
func NewTestTokenProvider(opts ...TokenOption) *TokenProvider {
	p, err := NewTokenProvider(testSecret, SessionTokenTTL, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// FixedClock returns a clock function that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
