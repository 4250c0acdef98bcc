package activity

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists activity log entries.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error

	// FindRecent returns up to limit entries for the user, newest first.
	FindRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*Entry, error)
}
