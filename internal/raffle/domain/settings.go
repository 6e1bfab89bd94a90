package domain

import (
	"errors"
	"time"
)

// Defaults for a newly created raffle configuration.
const (
	DefaultPrize           = "Grand Prize"
	DefaultNumberOfWinners = 1
	MaxPrizeLength         = 200
	MaxDescriptionLength   = 2000
)

// ErrNoConfiguration is returned when the raffle has not been configured yet.
var ErrNoConfiguration = errors.New("raffle settings not found")

// Settings is the singleton raffle configuration.
type Settings struct {
	Prize           string
	Description     string
	IsActive        bool
	DrawDate        *time.Time
	NumberOfWinners int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewDefaultSettings returns the configuration created on first access.
func NewDefaultSettings(now time.Time) *Settings {
	return &Settings{
		Prize:           DefaultPrize,
		IsActive:        true,
		NumberOfWinners: DefaultNumberOfWinners,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// WinnersToDraw returns the number of winners a draw selects. Values below 1 count as 1.
func (s *Settings) WinnersToDraw() int {
	if s.NumberOfWinners < 1 {
		return 1
	}
	return s.NumberOfWinners
}
