package task

import (
	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated   = "tasks.task.created"
	RoutingKeyUpdated   = "tasks.task.updated"
	RoutingKeyCompleted = "tasks.task.completed"
	RoutingKeyDeleted   = "tasks.task.deleted"
)

// TaskCreated is emitted when a new task is created.
type TaskCreated struct {
	domain.BaseEvent
	UserID   uuid.UUID `json:"user_id"`
	Title    string    `json:"title"`
	Priority int       `json:"priority"`
}

func NewTaskCreated(taskID, userID uuid.UUID, title string, priority int) TaskCreated {
	return TaskCreated{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCreated),
		UserID:    userID,
		Title:     title,
		Priority:  priority,
	}
}

// TaskUpdated is emitted when task fields change.
type TaskUpdated struct {
	domain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
	Fields []string  `json:"fields"`
}

func NewTaskUpdated(taskID, userID uuid.UUID, fields []string) TaskUpdated {
	return TaskUpdated{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyUpdated),
		UserID:    userID,
		Fields:    fields,
	}
}

// TaskCompleted is emitted when a task transitions to completed.
type TaskCompleted struct {
	domain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
}

func NewTaskCompleted(taskID, userID uuid.UUID) TaskCompleted {
	return TaskCompleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCompleted),
		UserID:    userID,
	}
}

// TaskDeleted is emitted when a task is removed.
type TaskDeleted struct {
	domain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
}

func NewTaskDeleted(taskID, userID uuid.UUID) TaskDeleted {
	return TaskDeleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyDeleted),
		UserID:    userID,
	}
}
