package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Form data bounds for a submission.
const (
	MaxFormFields     = 50
	MaxFieldKeyLength = 100
	MaxFieldValueLen  = 2000
)

var (
	// ErrEmptyFormData is returned when a submission carries no fields.
	ErrEmptyFormData = errors.New("form data is required")
	// ErrInvalidFormData is returned when a field key or value is out of bounds.
	ErrInvalidFormData = errors.New("invalid form data")
)

// Participant is a registered attendee. Only entries with RaffleEntry set and HasWon unset are eligible to win.
type Participant struct {
	ID          string
	FormData    map[string]string
	Avatar      string
	SubmittedAt time.Time
	RaffleEntry bool
	HasWon      bool
}

// Eligible reports whether p may be picked in a draw.
func (p *Participant) Eligible() bool {
	return p.RaffleEntry && !p.HasWon
}

// ValidateFormData checks the number of fields and the length of every key and value.
// NUL characters are rejected because Postgres jsonb cannot store them.
func ValidateFormData(data map[string]string) error {
	if len(data) == 0 {
		return ErrEmptyFormData
	}
	if len(data) > MaxFormFields {
		return fmt.Errorf("%w: at most %d fields", ErrInvalidFormData, MaxFormFields)
	}
	for k, v := range data {
		if n := utf8.RuneCountInString(k); n == 0 || n > MaxFieldKeyLength {
			return fmt.Errorf("%w: field names must be 1-%d characters", ErrInvalidFormData, MaxFieldKeyLength)
		}
		if utf8.RuneCountInString(v) > MaxFieldValueLen {
			return fmt.Errorf("%w: field %q exceeds %d characters", ErrInvalidFormData, k, MaxFieldValueLen)
		}
		if strings.ContainsRune(k, 0) || strings.ContainsRune(v, 0) {
			return fmt.Errorf("%w: field names and values must not contain NUL characters", ErrInvalidFormData)
		}
	}
	return nil
}

// ErrConcurrentDraw is returned when winners picked in a draw could not all be marked,
// because another writer changed them first. Nothing is marked in that case.
var ErrConcurrentDraw = errors.New("participants changed during draw")
