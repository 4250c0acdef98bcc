package activity

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies what happened to a task.
type Action string

const (
	ActionTaskCreated   Action = "task_created"
	ActionTaskUpdated   Action = "task_updated"
	ActionTaskCompleted Action = "task_completed"
	ActionTaskDeleted   Action = "task_deleted"
)

// Metadata carries the action-specific detail of a log entry.
type Metadata struct {
	Title    string   `json:"title,omitempty"`
	Priority int      `json:"priority,omitempty"`
	Fields   []string `json:"fields,omitempty"`
}

// Entry is one append-only activity log record. Entries are never
// mutated or deleted.
type Entry struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	TaskID     *uuid.UUID
	Action     Action
	Metadata   Metadata
	OccurredAt time.Time
}

// NewEntry records an action against a task at the current instant.
func NewEntry(userID uuid.UUID, taskID *uuid.UUID, action Action, metadata Metadata) *Entry {
	return &Entry{
		ID:         uuid.New(),
		UserID:     userID,
		TaskID:     taskID,
		Action:     action,
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	}
}
