package task

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists tasks.
type Repository interface {
	Save(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByUserAndStatus returns a user's tasks in one lifecycle state,
	// ordered by due date with undated tasks first.
	FindByUserAndStatus(ctx context.Context, userID uuid.UUID, status Status) ([]*Task, error)

	// FindByUser returns all of a user's tasks, ordered by due date
	// with undated tasks first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Task, error)

	// ListActiveUsers returns the distinct owners of all stored tasks.
	// The insight refresh loop iterates over this set.
	ListActiveUsers(ctx context.Context) ([]uuid.UUID, error)
}
