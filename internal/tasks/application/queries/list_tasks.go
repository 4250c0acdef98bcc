package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskwise/internal/tasks/domain/task"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Priority     int        `json:"priority"`
	Status       string     `json:"status"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Recurrence   string     `json:"recurrence,omitempty"`
	ParentTaskID *uuid.UUID `json:"parent_task_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	UserID   uuid.UUID
	Status   string // "", "all", "pending", "completed"
	Category string
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo task.Repository
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo}
}

// Handle executes the ListTasksQuery.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	var (
		tasks []*task.Task
		err   error
	)

	switch query.Status {
	case "", "all":
		tasks, err = h.taskRepo.FindByUser(ctx, query.UserID)
	default:
		tasks, err = h.taskRepo.FindByUserAndStatus(ctx, query.UserID, task.Status(query.Status))
	}
	if err != nil {
		return nil, err
	}

	if query.Category != "" {
		var filtered []*task.Task
		for _, t := range tasks {
			if t.Category() == query.Category {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	return ToTaskDTOs(tasks), nil
}

// ToTaskDTO converts a task aggregate into its transfer representation.
func ToTaskDTO(t *task.Task) TaskDTO {
	return TaskDTO{
		ID:           t.ID(),
		UserID:       t.UserID(),
		Title:        t.Title(),
		Description:  t.Description(),
		Category:     t.Category(),
		Priority:     t.Priority(),
		Status:       string(t.Status()),
		DueDate:      t.DueDate(),
		CompletedAt:  t.CompletedAt(),
		Recurrence:   t.Recurrence(),
		ParentTaskID: t.ParentTaskID(),
		CreatedAt:    t.CreatedAt(),
	}
}

// ToTaskDTOs converts a slice of tasks preserving order.
func ToTaskDTOs(tasks []*task.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = ToTaskDTO(t)
	}
	return dtos
}
