package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists insights.
type Repository interface {
	// SaveBatch appends all insights of one generation run atomically.
	// Either every insight persists or none do.
	SaveBatch(ctx context.Context, insights []*Insight) error

	// FindRecent returns up to limit insights for the user, newest
	// first.
	FindRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*Insight, error)

	// FindLatestByType returns the most recent insight of one type, or
	// nil when the user has none.
	FindLatestByType(ctx context.Context, userID uuid.UUID, t Type) (*Insight, error)
}
