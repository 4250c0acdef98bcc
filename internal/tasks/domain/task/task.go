package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/shared/domain"
)

var (
	ErrEmptyTitle          = errors.New("task title cannot be empty")
	ErrTaskAlreadyComplete = errors.New("task is already completed")
	ErrTaskNotFound        = errors.New("task not found")
)

// DefaultPriority is applied when a task is created without an explicit
// priority. Priorities run 1 (most urgent) to 5 (least urgent) but
// out-of-range values are stored as given.
const DefaultPriority = 3

// Status is the task lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Task is a unit of work owned by a single user.
type Task struct {
	domain.BaseAggregateRoot
	userID       uuid.UUID
	title        string
	description  string
	category     string
	priority     int
	status       Status
	dueDate      *time.Time
	completedAt  *time.Time
	recurrence   string
	parentTaskID *uuid.UUID
}

// NewTask creates a pending task. A zero priority falls back to
// DefaultPriority.
func NewTask(userID uuid.UUID, title string, priority int) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if priority == 0 {
		priority = DefaultPriority
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		userID:            userID,
		title:             title,
		priority:          priority,
		status:            StatusPending,
	}

	t.Record(NewTaskCreated(t.ID(), userID, title, priority))

	return t, nil
}

func (t *Task) UserID() uuid.UUID         { return t.userID }
func (t *Task) Title() string             { return t.title }
func (t *Task) Description() string       { return t.description }
func (t *Task) Category() string          { return t.category }
func (t *Task) Priority() int             { return t.priority }
func (t *Task) Status() Status            { return t.status }
func (t *Task) DueDate() *time.Time       { return t.dueDate }
func (t *Task) CompletedAt() *time.Time   { return t.completedAt }
func (t *Task) Recurrence() string        { return t.recurrence }
func (t *Task) ParentTaskID() *uuid.UUID  { return t.parentTaskID }
func (t *Task) IsCompleted() bool         { return t.status == StatusCompleted }

func (t *Task) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.Touch()
	return nil
}

func (t *Task) SetDescription(description string) {
	t.description = strings.TrimSpace(description)
	t.Touch()
}

func (t *Task) SetCategory(category string) {
	t.category = strings.TrimSpace(category)
	t.Touch()
}

func (t *Task) SetPriority(priority int) {
	if priority == 0 {
		priority = DefaultPriority
	}
	t.priority = priority
	t.Touch()
}

func (t *Task) SetDueDate(dueDate *time.Time) {
	t.dueDate = dueDate
	t.Touch()
}

func (t *Task) SetRecurrence(recurrence string) {
	t.recurrence = strings.TrimSpace(recurrence)
	t.Touch()
}

func (t *Task) SetParentTaskID(parentID *uuid.UUID) {
	t.parentTaskID = parentID
	t.Touch()
}

// RecordUpdated emits a single update event naming the changed fields.
func (t *Task) RecordUpdated(fields []string) {
	t.Record(NewTaskUpdated(t.ID(), t.userID, fields))
}

// Complete transitions the task to completed and stamps completedAt.
func (t *Task) Complete(at time.Time) error {
	if t.IsCompleted() {
		return ErrTaskAlreadyComplete
	}
	t.status = StatusCompleted
	completedAt := at.UTC()
	t.completedAt = &completedAt
	t.Touch()
	t.Record(NewTaskCompleted(t.ID(), t.userID))
	return nil
}

// RecordDeleted emits the deletion event before the row is removed.
func (t *Task) RecordDeleted() {
	t.Record(NewTaskDeleted(t.ID(), t.userID))
}

// Rehydrate rebuilds a task from persisted state without emitting events.
func Rehydrate(
	id uuid.UUID,
	userID uuid.UUID,
	title, description, category string,
	priority int,
	status Status,
	dueDate, completedAt *time.Time,
	recurrence string,
	parentTaskID *uuid.UUID,
	createdAt, updatedAt time.Time,
	version int,
) *Task {
	entity := domain.RehydrateBaseEntity(id, createdAt, updatedAt)
	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(entity, version),
		userID:            userID,
		title:             title,
		description:       description,
		category:          category,
		priority:          priority,
		status:            status,
		dueDate:           dueDate,
		completedAt:       completedAt,
		recurrence:        recurrence,
		parentTaskID:      parentTaskID,
	}
}
