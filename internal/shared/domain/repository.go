package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the base contract all aggregate repositories satisfy.
type Repository[T AggregateRoot] interface {
	Save(ctx context.Context, aggregate T) error
	FindByID(ctx context.Context, id uuid.UUID) (T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
