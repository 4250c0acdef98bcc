package commands

import (
	"context"

	"github.com/google/uuid"
)

// InsightRefresher requests an insight regeneration for a user after a
// task mutation. Implementations may debounce redundant requests; the
// command handlers fire and forget.
type InsightRefresher interface {
	RequestRefresh(ctx context.Context, userID uuid.UUID)
}

// NoopRefresher ignores refresh requests.
type NoopRefresher struct{}

func (NoopRefresher) RequestRefresh(ctx context.Context, userID uuid.UUID) {}
