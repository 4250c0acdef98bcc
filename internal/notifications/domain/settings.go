package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Frequency controls how often a user wants to be nudged.
type Frequency string

const (
	FrequencyLow    Frequency = "low"
	FrequencyMedium Frequency = "medium"
	FrequencyHigh   Frequency = "high"
)

var (
	ErrInvalidFrequency  = errors.New("notification frequency must be low, medium, or high")
	ErrInvalidFocusHours = errors.New("focus window hours must satisfy 0 <= start < end <= 24")
)

// FocusWindow is one span of the day during which the user prefers to
// receive notifications, on a 24-hour clock.
type FocusWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

func (w FocusWindow) Validate() error {
	if w.StartHour < 0 || w.EndHour > 24 || w.StartHour >= w.EndHour {
		return ErrInvalidFocusHours
	}
	return nil
}

// Settings is the per-user notification configuration. One row per
// user, created lazily with defaults on first access.
type Settings struct {
	UserID     uuid.UUID
	EnablePush bool
	FocusHours []FocusWindow
	Frequency  Frequency
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DefaultSettings returns the settings a user gets before ever
// configuring anything.
func DefaultSettings(userID uuid.UUID, now time.Time) *Settings {
	return &Settings{
		UserID:     userID,
		EnablePush: true,
		FocusHours: []FocusWindow{},
		Frequency:  FrequencyMedium,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
}

// ValidateFrequency checks a frequency value supplied by a client.
func ValidateFrequency(f Frequency) error {
	switch f {
	case FrequencyLow, FrequencyMedium, FrequencyHigh:
		return nil
	default:
		return ErrInvalidFrequency
	}
}
