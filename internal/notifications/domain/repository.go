package domain

import (
	"context"

	"github.com/google/uuid"
)

// SettingsRepository stores per-user notification settings.
type SettingsRepository interface {
	// Find returns the user's settings, or (nil, nil) when the user
	// has never touched them.
	Find(ctx context.Context, userID uuid.UUID) (*Settings, error)

	// Save inserts or replaces the user's settings row.
	Save(ctx context.Context, settings *Settings) error
}
