package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages.
type Repository interface {
	// Save stores a single message.
	Save(ctx context.Context, msg *Message) error

	// SaveBatch stores several messages in the caller's transaction.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns pending messages ordered by creation time,
	// skipping messages whose retry time has not arrived.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	// MarkPublished records a successful publish.
	MarkPublished(ctx context.Context, id int64) error

	// MarkFailed records a publish failure and schedules a retry.
	MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error

	// DeleteOld removes published messages older than the retention window.
	DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error)
}
