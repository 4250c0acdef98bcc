package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskSnapshot is the read-only view of a task the analyzers consume.
// The analytics never mutate tasks; they work on copies handed in by
// the orchestration layer.
type TaskSnapshot struct {
	ID          uuid.UUID
	Title       string
	Category    string
	Priority    int
	DueDate     *time.Time
	CompletedAt *time.Time
}

// ActivitySnapshot is the read-only view of an activity log entry.
// Accepted by the productive-time analysis for future use.
type ActivitySnapshot struct {
	Action     string
	OccurredAt time.Time
}
